package folioval

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected Date
		err      bool
	}{
		{"2025-01-15", NewDate(2025, time.January, 15), false},
		{"2025-7-1", NewDate(2025, time.July, 1), false},
		{"invalid-date", Date{}, true},
		{"2025-13-01", Date{}, true},
		{"", Date{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if (err != nil) != tt.err {
				t.Fatalf("ParseDate(%q) error = %v, want err=%v", tt.input, err, tt.err)
			}
			if got != tt.expected {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDateNormalization(t *testing.T) {
	// Day 0 is the last day of the previous month, overflow carries over.
	if got := NewDate(2025, time.March, 0); got != NewDate(2025, time.February, 28) {
		t.Errorf("NewDate day 0 = %v, want 2025-02-28", got)
	}
	if got := NewDate(2024, time.March, 0); got != NewDate(2024, time.February, 29) {
		t.Errorf("NewDate day 0 leap = %v, want 2024-02-29", got)
	}
	if got := NewDate(2025, time.December, 32); got != NewDate(2026, time.January, 1) {
		t.Errorf("NewDate overflow = %v, want 2026-01-01", got)
	}
}

func TestMonthNavigation(t *testing.T) {
	dec := NewMonth(2024, time.December)
	if got := dec.Next(); got != NewMonth(2025, time.January) {
		t.Errorf("Next() across year = %v, want 2025-01", got)
	}
	jan := NewMonth(2025, time.January)
	if got := jan.Prev(); got != dec {
		t.Errorf("Prev() across year = %v, want 2024-12", got)
	}
	if got := NewMonth(2024, time.February).End(); got != NewDate(2024, time.February, 29) {
		t.Errorf("End() = %v, want 2024-02-29", got)
	}
	if got := NewMonth(2024, time.February).Start(); got != NewDate(2024, time.February, 1) {
		t.Errorf("Start() = %v, want 2024-02-01", got)
	}
	if !NewMonth(2024, time.February).Contains(NewDate(2024, time.February, 15)) {
		t.Error("Contains() = false for a day inside the month")
	}
	if NewMonth(2024, time.February).Contains(NewDate(2024, time.March, 1)) {
		t.Error("Contains() = true for a day outside the month")
	}
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name     string
		from, to Month
		want     int
	}{
		{"same month", NewMonth(2025, time.March), NewMonth(2025, time.March), 1},
		{"across year", NewMonth(2024, time.November), NewMonth(2025, time.February), 4},
		{"from after to", NewMonth(2025, time.March), NewMonth(2025, time.February), 0},
		{"full year", NewMonth(2024, time.January), NewMonth(2024, time.December), 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			months := MonthsBetween(tt.from, tt.to)
			if len(months) != tt.want {
				t.Fatalf("MonthsBetween() returned %d months, want %d", len(months), tt.want)
			}
			for i := 1; i < len(months); i++ {
				if months[i] != months[i-1].Next() {
					t.Errorf("gap in months at index %d: %v after %v", i, months[i], months[i-1])
				}
			}
		})
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, time.June, 30)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"2025-06-30"` {
		t.Errorf("Marshal() = %s, want \"2025-06-30\"", data)
	}
	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}
}

func TestMonthJSON(t *testing.T) {
	p := NewMonth(2025, time.June)
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"2025-06"` {
		t.Errorf("Marshal() = %s, want \"2025-06\"", data)
	}
	var back Month
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back != p {
		t.Errorf("round trip = %v, want %v", back, p)
	}
}
