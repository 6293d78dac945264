package scout

import (
	"fmt"

	"github.com/gigpilot/gigpilot/internal/traffic"
	"github.com/gigpilot/gigpilot/internal/weather"
)

// Surge contributions and bounds.
const (
	rainBoost       = 0.30
	weekendBoost    = 0.18
	hotspotWeight   = 0.35
	lightTrafficAdj = 0.12
	heavyTrafficAdj = -0.12

	MinSurgeScore = -0.30
	MaxSurgeScore = 1.00
)

// Surge reasons.
const (
	ReasonRain         = "Rain increases orders"
	ReasonWeekend      = "Weekend demand"
	ReasonLightTraffic = "Light traffic speeds up delivery"
	ReasonHeavyTraffic = "Heavy traffic reduces earnings"
)

// Surge is the clamped demand estimate with the reasons that produced it,
// in evaluation order: weather, weekend, hotspot, traffic.
type Surge struct {
	Score      float64
	Multiplier float64
	Reasons    []string
}

// EstimateSurge combines the demand signals into a Surge.
func EstimateSurge(w weather.Signal, isWeekend bool, top *Hotspot, trafficAtOrigin traffic.Level) Surge {
	score := 0.0
	reasons := make([]string, 0, 4)

	if w.IsWet() {
		score += rainBoost
		reasons = append(reasons, ReasonRain)
	}

	if isWeekend {
		score += weekendBoost
		reasons = append(reasons, ReasonWeekend)
	}

	if top != nil {
		score += top.Score * hotspotWeight
		reasons = append(reasons, fmt.Sprintf("High demand near %s", top.AreaName))
	}

	switch trafficAtOrigin {
	case traffic.LevelLight:
		score += lightTrafficAdj
		reasons = append(reasons, ReasonLightTraffic)
	case traffic.LevelHeavy:
		score += heavyTrafficAdj
		reasons = append(reasons, ReasonHeavyTraffic)
	}

	score = clamp(score, MinSurgeScore, MaxSurgeScore)
	return Surge{
		Score:      score,
		Multiplier: 1 + score,
		Reasons:    reasons,
	}
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
