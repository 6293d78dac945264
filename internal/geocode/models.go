package geocode

import "strings"

// Sentinel area names.
const (
	// UnknownArea is used when the lookup failed.
	UnknownArea = "Unknown Area"
	// NearbyArea is used when the lookup succeeded without any address.
	NearbyArea = "Nearby Area"
)

// Address is the subset of a reverse-geocode address breakdown used for naming.
type Address struct {
	MunicipalitySubdivision string `json:"municipalitySubdivision"`
	Neighbourhood           string `json:"neighbourhood"`
	StreetName              string `json:"streetName"`
	Municipality            string `json:"municipality"`
	FreeformAddress         string `json:"freeformAddress"`
}

// AreaName picks the most specific name: sub-district or neighbourhood, then
// street, then city or free-form address, then UnknownArea.
func (a Address) AreaName() string {
	for _, candidate := range []string{
		a.MunicipalitySubdivision,
		a.Neighbourhood,
		a.StreetName,
		a.Municipality,
		a.FreeformAddress,
	} {
		if name := strings.TrimSpace(candidate); name != "" {
			return name
		}
	}
	return UnknownArea
}
