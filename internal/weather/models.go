package weather

import "strings"

// Condition is the coarse current-conditions category reported by the provider.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionSnow         Condition = "Snow"
	ConditionMist         Condition = "Mist"
	ConditionFog          Condition = "Fog"
	ConditionHaze         Condition = "Haze"
	ConditionUnknown      Condition = "Unknown"
)

// Signal is the weather input to surge estimation.
type Signal struct {
	Condition    Condition `json:"condition"`
	TemperatureC *float64  `json:"temp"`
}

// DefaultSignal is returned whenever the provider cannot answer.
func DefaultSignal() Signal {
	return Signal{Condition: ConditionUnknown}
}

// IsWet reports whether the condition is rain, drizzle or a thunderstorm,
// compared case-insensitively.
func (s Signal) IsWet() bool {
	switch strings.ToLower(string(s.Condition)) {
	case "rain", "drizzle", "thunderstorm":
		return true
	default:
		return false
	}
}
