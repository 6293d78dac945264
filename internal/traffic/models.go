package traffic

// Level is the coarse congestion category at a point.
type Level string

const (
	LevelLight    Level = "Light"
	LevelModerate Level = "Moderate"
	LevelHeavy    Level = "Heavy"
	LevelUnknown  Level = "Unknown"
)

// Classification thresholds on current/free-flow speed.
const (
	heavyBelow    = 0.4
	moderateBelow = 0.7
)

// Flow is the speed pair reported for the road segment nearest a point.
type Flow struct {
	CurrentSpeed  float64 `json:"currentSpeed"`
	FreeFlowSpeed float64 `json:"freeFlowSpeed"`
}

// Level classifies the flow.
func (f Flow) Level() Level {
	return Classify(f.CurrentSpeed, f.FreeFlowSpeed)
}

// Classify derives a Level from current and free-flow speed.
// Missing or non-positive inputs yield LevelUnknown.
func Classify(current, freeFlow float64) Level {
	if current <= 0 || freeFlow <= 0 {
		return LevelUnknown
	}

	ratio := current / freeFlow
	switch {
	case ratio < heavyBelow:
		return LevelHeavy
	case ratio < moderateBelow:
		return LevelModerate
	default:
		return LevelLight
	}
}
