package folioval

import "fmt"

// Percent is a percentage value (5.0 means 5%).
type Percent float64

// Ratio converts the percentage back to a plain ratio (5% -> 0.05).
func (p Percent) Ratio() float64 { return float64(p) / 100 }

// Equal compares two percentages with a fixed precision.
func (p Percent) Equal(q Percent) bool {
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

// SignedString renders the percentage with an explicit sign, and "-" for zero.
func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", float64(p))
	if res == "+0.00%" {
		return "-"
	}
	return res
}
