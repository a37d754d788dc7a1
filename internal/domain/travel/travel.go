package travel

import "fmt"

// Mode is the travel mode passed to the precise distance provider.
type Mode string

// Supported travel modes.
const (
	Driving   Mode = "driving"
	Walking   Mode = "walking"
	Bicycling Mode = "bicycling"
	Transit   Mode = "transit"
)

// ParseMode validates a travel mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Driving, Walking, Bicycling, Transit:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown travel mode %q", s)
	}
}

// Label is appended to provider duration texts.
func (m Mode) Label() string {
	switch m {
	case Walking:
		return "on foot"
	case Bicycling:
		return "by bike"
	case Transit:
		return "by transit"
	default:
		return "by car"
	}
}
