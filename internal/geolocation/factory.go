package geolocation

import (
	"log/slog"
	"time"
)

// Modes accepted by New besides a literal "lon,lat" pair.
const (
	ModeOff   = "off"
	ModeIPAPI = "ipapi"
)

// New creates a locator from a mode string: "off", "ipapi" or a fixed "lon,lat".
func New(mode string, timeout time.Duration, log *slog.Logger) (Locator, error) {
	switch mode {
	case "", ModeOff:
		return Disabled{}, nil
	case ModeIPAPI:
		return NewIPAPILocator(timeout, log), nil
	default:
		point, err := ParsePoint(mode)
		if err != nil {
			return nil, err
		}

		return Static{Point: point}, nil
	}
}
