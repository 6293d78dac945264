package scout

import (
	"fmt"

	"github.com/gigpilot/gigpilot/internal/transactions"
)

// DefaultHourly is the baseline hourly earning, in the user's currency.
const DefaultHourly = 120.0

// Blend of the baseline and the user's own rate.
const (
	baselineShare = 0.7
	personalShare = 0.3

	// ShiftHours is the reference shift length for the expected boost.
	ShiftHours = 3
)

// Evening window bounds, in local hours.
const (
	eveningStart = 17
	eveningEnd   = 22

	fallbackStart = 18
	fallbackEnd   = 21
)

// HourlyRate is total income over total hours for records with positive hours.
// ok is false when no such record exists.
func HourlyRate(records []transactions.Record) (rate float64, ok bool) {
	var income, hours float64
	for _, r := range records {
		if r.HoursWorked > 0 {
			income += r.Income
			hours += r.HoursWorked
		}
	}
	if hours <= 0 {
		return 0, false
	}
	return income / hours, true
}

// FinalHourly blends the user's rate into DefaultHourly, or returns
// DefaultHourly exactly when the user has no usable history.
func FinalHourly(userRate *float64) float64 {
	if userRate == nil {
		return DefaultHourly
	}
	return baselineShare*DefaultHourly + personalShare*(*userRate)
}

// ExpectedBoost is the extra earning over a reference shift, never negative,
// truncated to an integer.
func ExpectedBoost(finalHourly, multiplier float64) int {
	return int(max(0, finalHourly*(multiplier-1)) * ShiftHours)
}

// Window is a suggested working slot in local hours.
type Window struct {
	StartHour int    `json:"start"`
	EndHour   int    `json:"end"`
	Label     string `json:"label"`
}

// SuggestWindow starts now when hour is in the evening peak, capped at the end
// of the peak, and otherwise suggests the default evening slot.
func SuggestWindow(hour int) Window {
	if hour >= eveningStart && hour <= eveningEnd {
		return newWindow(hour, min(hour+ShiftHours, eveningEnd))
	}
	return newWindow(fallbackStart, fallbackEnd)
}

// FallbackWindow is the default evening slot.
func FallbackWindow() Window {
	return newWindow(fallbackStart, fallbackEnd)
}

func newWindow(start, end int) Window {
	return Window{
		StartHour: start,
		EndHour:   end,
		Label:     fmt.Sprintf("%d-%d PM", start-12, end-12),
	}
}
