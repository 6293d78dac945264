package scout

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/gigpilot/gigpilot/internal/geo"
)

// SampleOffsetDeg is the ring radius in degrees (about 500 m).
const SampleOffsetDeg = 0.005

// sampleOffsets are centre, north, south, east, west. Their order is the
// tie-break order for equal scores.
var sampleOffsets = [...][2]float64{
	{0, 0},
	{SampleOffsetDeg, 0},
	{-SampleOffsetDeg, 0},
	{0, SampleOffsetDeg},
	{0, -SampleOffsetDeg},
}

// SampleSize is the number of points sampled around an origin.
const SampleSize = len(sampleOffsets)

// PointEnricher is satisfied by *Enricher.
type PointEnricher interface {
	Enrich(ctx context.Context, point, origin geo.Coordinate) EnrichedPoint
}

// Sampler scores a fixed ring of points around an origin.
type Sampler struct {
	enricher PointEnricher
}

// NewSampler creates a hotspot sampler.
func NewSampler(enricher PointEnricher) *Sampler {
	return &Sampler{enricher: enricher}
}

// SamplePoints returns the ring of coordinates around origin in sample order.
func SamplePoints(origin geo.Coordinate) []geo.Coordinate {
	pts := make([]geo.Coordinate, len(sampleOffsets))
	for i, off := range sampleOffsets {
		pts[i] = origin.Offset(off[0], off[1])
	}
	return pts
}

// Sample enriches every ring point concurrently and returns them ranked by
// descending score. Completion order never affects the ranking.
func (s *Sampler) Sample(ctx context.Context, origin geo.Coordinate) []Hotspot {
	pts := SamplePoints(origin)
	enriched := make([]EnrichedPoint, len(pts))

	var g errgroup.Group
	g.SetLimit(SampleSize)
	for i, p := range pts {
		g.Go(func() error {
			enriched[i] = s.enricher.Enrich(ctx, p, origin)
			return nil
		})
	}
	_ = g.Wait()

	return Rank(ScorePoints(enriched))
}

// Rank sorts hotspots by descending score, keeping input order for ties.
func Rank(hotspots []Hotspot) []Hotspot {
	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].Score > hotspots[j].Score
	})
	return hotspots
}
