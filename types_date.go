package folioval

import (
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 layout used to persist dates.
const DateFormat = "2006-01-02"

// readDateFormat is permissive on read (allows single-digit month/day).
const readDateFormat = "2006-1-2"

// MonthFormat is the layout used for month period keys (YYYY-MM).
const MonthFormat = "2006-01"

// Date represents a calendar date with day-level granularity.
// Transactions happen on a Date; intraday ordering is out of scope.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(readDateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDate(t.Date()), nil
}

// MustParseDate is ParseDate that panics on error, for tests and constants.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Today returns the current date.
func Today() Date { return NewDate(time.Now().Date()) }

// time returns the canonical time.Time for that day (midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) Year() int         { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }

// String formats the date as YYYY-MM-DD.
func (d Date) String() string { return d.time().Format(DateFormat) }

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// Before reports whether d is strictly before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is strictly after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(days int) Date { return NewDate(d.y, d.m, d.d+days) }

// MonthKey returns the month period this date belongs to.
func (d Date) MonthKey() Month { return Month{y: d.y, m: d.m} }

// MarshalJSON implements json.Marshaler, persisting the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Month identifies one calendar month, the engine's valuation granularity.
// The zero Month is invalid and used as "no month".
type Month struct {
	y int
	m time.Month
}

// NewMonth returns the Month for a given year and month.
func NewMonth(year int, month time.Month) Month {
	d := NewDate(year, month, 1)
	return Month{y: d.y, m: d.m}
}

// ParseMonth parses a month key in YYYY-MM form.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthFormat, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{y: t.Year(), m: t.Month()}, nil
}

// ThisMonth returns the current calendar month.
func ThisMonth() Month { return Today().MonthKey() }

// String formats the month as YYYY-MM. This is the period key used
// throughout the valuation series.
func (p Month) String() string {
	return time.Date(p.y, p.m, 1, 0, 0, 0, 0, time.UTC).Format(MonthFormat)
}

// IsZero reports whether the month is the zero value.
func (p Month) IsZero() bool { return p.y == 0 && p.m == 0 }

// Year returns the calendar year of the month.
func (p Month) Year() int { return p.y }

// Next returns the following calendar month.
func (p Month) Next() Month { return NewMonth(p.y, p.m+1) }

// Prev returns the preceding calendar month.
func (p Month) Prev() Month { return NewMonth(p.y, p.m-1) }

// Before reports whether p is strictly before x.
func (p Month) Before(x Month) bool {
	return p.y < x.y || (p.y == x.y && p.m < x.m)
}

// After reports whether p is strictly after x.
func (p Month) After(x Month) bool { return x.Before(p) }

// Start returns the first day of the month.
func (p Month) Start() Date { return NewDate(p.y, p.m, 1) }

// End returns the last day of the month.
func (p Month) End() Date { return NewDate(p.y, p.m+1, 0) }

// Contains reports whether the date falls within the month.
func (p Month) Contains(d Date) bool { return d.MonthKey() == p }

// MarshalJSON implements json.Marshaler, persisting the month as "YYYY-MM".
func (p Month) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Month) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid month %s", s)
	}
	parsed, err := ParseMonth(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MonthsBetween returns every month from 'from' to 'to' inclusive, in
// chronological order. It returns nil when from is after to.
func MonthsBetween(from, to Month) []Month {
	if from.After(to) {
		return nil
	}
	var months []Month
	for p := from; !p.After(to); p = p.Next() {
		months = append(months, p)
	}
	return months
}
