// Package worker runs background jobs for gigpilot: pre-warming the shared
// area-name cache for busy zones and reporting provider health.
package worker

import (
	"time"

	"github.com/gigpilot/gigpilot/internal/geo"
)

// Zone is a delivery zone whose hotspot ring is pre-warmed.
type Zone struct {
	Name string

	// Centres are sampled one ring each.
	Centres []geo.Coordinate

	// Priority orders zones, lower first.
	Priority int
}

// PrewarmConfig holds configuration for the pre-warm job.
type PrewarmConfig struct {
	// Zones to warm. Empty means DefaultZones.
	Zones []Zone

	// Concurrency is the number of zone centres sampled at once. Default 3.
	Concurrency int

	// Timeout bounds one centre's sampling. Default 30s.
	Timeout time.Duration
}

// DefaultPrewarmConfig returns the default pre-warm configuration.
func DefaultPrewarmConfig() PrewarmConfig {
	return PrewarmConfig{
		Zones:       DefaultZones(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

// DefaultZones returns the metro zones with the densest delivery demand.
func DefaultZones() []Zone {
	return []Zone{
		{
			Name:     "Mumbai",
			Priority: 1,
			Centres: []geo.Coordinate{
				{Lat: 19.0760, Lon: 72.8777}, // Kurla
				{Lat: 19.0596, Lon: 72.8295}, // Bandra West
				{Lat: 19.1136, Lon: 72.8697}, // Andheri East
				{Lat: 18.9986, Lon: 72.8302}, // Lower Parel
			},
		},
		{
			Name:     "Bengaluru",
			Priority: 1,
			Centres: []geo.Coordinate{
				{Lat: 12.9716, Lon: 77.5946}, // MG Road
				{Lat: 12.9352, Lon: 77.6245}, // Koramangala
				{Lat: 12.9698, Lon: 77.7500}, // Whitefield
			},
		},
		{
			Name:     "Delhi",
			Priority: 1,
			Centres: []geo.Coordinate{
				{Lat: 28.6315, Lon: 77.2167}, // Connaught Place
				{Lat: 28.5672, Lon: 77.2100}, // South Extension
				{Lat: 28.4595, Lon: 77.0266}, // Gurugram
			},
		},
		{
			Name:     "Hyderabad",
			Priority: 2,
			Centres: []geo.Coordinate{
				{Lat: 17.4435, Lon: 78.3772}, // HITEC City
				{Lat: 17.4156, Lon: 78.4347}, // Banjara Hills
			},
		},
		{
			Name:     "Pune",
			Priority: 2,
			Centres: []geo.Coordinate{
				{Lat: 18.5362, Lon: 73.8940}, // Koregaon Park
				{Lat: 18.5913, Lon: 73.7389}, // Hinjewadi
			},
		},
		{
			Name:     "Chennai",
			Priority: 2,
			Centres: []geo.Coordinate{
				{Lat: 13.0418, Lon: 80.2341}, // T. Nagar
				{Lat: 12.9716, Lon: 80.2214}, // Velachery
			},
		},
	}
}

// AllCentres returns every zone centre in zone order.
func (c PrewarmConfig) AllCentres() []geo.Coordinate {
	var centres []geo.Coordinate
	for _, zone := range c.Zones {
		centres = append(centres, zone.Centres...)
	}
	return centres
}

// TotalCentres returns the number of centres to warm.
func (c PrewarmConfig) TotalCentres() int {
	total := 0
	for _, zone := range c.Zones {
		total += len(zone.Centres)
	}
	return total
}
