package scout

import (
	"encoding/json"
	"math"

	"github.com/gigpilot/gigpilot/internal/geo"
	"github.com/gigpilot/gigpilot/internal/traffic"
)

// Score weights.
const (
	poiWeight      = 0.60
	trafficWeight  = 0.25
	distanceWeight = 0.15

	// unknownTrafficScore applies to LevelUnknown and anything unrecognised.
	unknownTrafficScore = 0.8
)

var trafficScores = map[traffic.Level]float64{
	traffic.LevelLight:    1.0,
	traffic.LevelModerate: 0.7,
	traffic.LevelHeavy:    0.4,
}

// EnrichedPoint is one sampled location with every signal gathered for it.
type EnrichedPoint struct {
	Point      geo.Coordinate
	POICount   int
	Traffic    traffic.Level
	AreaName   string
	DistanceKm float64
}

// Hotspot is an EnrichedPoint with its demand-attractiveness score.
type Hotspot struct {
	EnrichedPoint
	Score float64
}

// MarshalJSON rounds distance to 2 and score to 3 decimal places.
func (h Hotspot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lat        float64       `json:"lat"`
		Lon        float64       `json:"lon"`
		POICount   int           `json:"poi_count"`
		Traffic    traffic.Level `json:"traffic"`
		Area       string        `json:"area"`
		DistanceKm float64       `json:"distance_km"`
		Score      float64       `json:"score"`
	}{
		Lat:        h.Point.Lat,
		Lon:        h.Point.Lon,
		POICount:   h.POICount,
		Traffic:    h.Traffic,
		Area:       h.AreaName,
		DistanceKm: round(h.DistanceKm, 2),
		Score:      round(h.Score, 3),
	})
}

// TrafficScore maps a traffic level to its score component.
func TrafficScore(level traffic.Level) float64 {
	if s, ok := trafficScores[level]; ok {
		return s
	}
	return unknownTrafficScore
}

// DistanceFactor favours closer points: 1 at the origin, falling towards 0.
func DistanceFactor(distanceKm float64) float64 {
	return 1 / (1 + distanceKm)
}

// ScorePoints scores points relative to the busiest one. The result keeps
// the input order; use Rank to order it.
func ScorePoints(points []EnrichedPoint) []Hotspot {
	maxPOI := 1
	for _, p := range points {
		if p.POICount > maxPOI {
			maxPOI = p.POICount
		}
	}

	hotspots := make([]Hotspot, len(points))
	for i, p := range points {
		poiNorm := float64(p.POICount) / float64(maxPOI)
		hotspots[i] = Hotspot{
			EnrichedPoint: p,
			Score: poiWeight*poiNorm +
				trafficWeight*TrafficScore(p.Traffic) +
				distanceWeight*DistanceFactor(p.DistanceKm),
		}
	}
	return hotspots
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
