package geo

import "fmt"

// Unit is the distance unit system used for ranking and display.
type Unit string

// Supported unit systems.
const (
	Metric   Unit = "metric"
	Imperial Unit = "imperial"
)

// ParseUnit validates a unit system name.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case Metric, Imperial:
		return Unit(s), nil
	default:
		return "", fmt.Errorf("unknown unit system %q", s)
	}
}

// Label returns the short distance label for the unit.
func (u Unit) Label() string {
	if u == Imperial {
		return "mi"
	}
	return "km"
}

// Convert expresses km in the given unit.
func Convert(km float64, u Unit) float64 {
	if u == Imperial {
		return km / KmPerMile
	}
	return km
}

// ToKm expresses a distance given in unit u back in kilometers.
func ToKm(d float64, u Unit) float64 {
	if u == Imperial {
		return d * KmPerMile
	}
	return d
}

// FormatDistance renders d (already in unit u) with one decimal and the unit label.
func FormatDistance(d float64, u Unit) string {
	return fmt.Sprintf("%.1f %s", d, u.Label())
}
