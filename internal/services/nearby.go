package services

import (
	"sort"

	"github.com/localnerve/crmdb/internal/models"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Nearby is a property with its distance from the search point
type Nearby struct {
	Property       models.Property `json:"property"`
	DistanceMeters float64         `json:"distanceMeters"`
}

// point converts a coordinate to orb's lng, lat order
func point(g models.GeoPoint) orb.Point {
	return orb.Point{g.Lng, g.Lat}
}

// NearbyProperties returns the properties with coordinates within radius
// meters of center, closest first. limit <= 0 means no limit.
func NearbyProperties(s *store.Store, center models.GeoPoint, radius float64, limit int) []Nearby {
	origin := point(center)
	out := []Nearby{}
	for _, p := range store.Properties.List(s) {
		if p.Coordinates == nil {
			continue
		}
		d := geo.Distance(origin, point(*p.Coordinates))
		if d <= radius {
			out = append(out, Nearby{Property: p, DistanceMeters: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ValidPoint reports whether g is a WGS84 coordinate
func ValidPoint(g models.GeoPoint) bool {
	return g.Lat >= -90 && g.Lat <= 90 && g.Lng >= -180 && g.Lng <= 180
}
