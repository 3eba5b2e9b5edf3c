// Package geo holds the spatial predicates used by the library listings.
//
// Radius queries are planar: distances are measured in coordinate degrees,
// matching the store's flat 2d index and its $center operator. Route
// proximity is measured in kilometres.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
	"go.mongodb.org/mongo-driver/bson"
)

const CoordinatesField = "geometry.coordinates"

// RadiusFilter selects documents whose field lies within radius of center
// on a flat plane. The field needs a 2d index.
func RadiusFilter(field string, center orb.Point, radius float64) bson.M {
	return bson.M{
		field: bson.M{
			"$geoWithin": bson.M{
				"$center": bson.A{bson.A{center.Lon(), center.Lat()}, radius},
			},
		},
	}
}

// WithinRadius is the in-process form of RadiusFilter.
func WithinRadius(center, p orb.Point, radius float64) bool {
	return planar.Distance(center, p) <= radius
}

// Contains reports whether p lies inside poly, holes excluded.
func Contains(poly orb.Polygon, p orb.Point) bool {
	return planar.PolygonContains(poly, p)
}

// DistanceToRouteKm approximates the ground distance in kilometres from p
// to the nearest point of route. Both are projected to Web Mercator and
// the planar distance is scaled back by the cosine of p's latitude, which
// is accurate for the short distances a route filter deals with.
func DistanceToRouteKm(route orb.LineString, p orb.Point) float64 {
	projected := project.LineString(route.Clone(), project.WGS84.ToMercator)
	meters := planar.DistanceFrom(projected, project.Point(p, project.WGS84.ToMercator))
	return meters * math.Cos(p.Lat()*math.Pi/180) / 1000
}

// PointFromCoordinates reads a [longitude, latitude] pair.
func PointFromCoordinates(coords []float64) (orb.Point, bool) {
	if len(coords) < 2 {
		return orb.Point{}, false
	}
	return orb.Point{coords[0], coords[1]}, true
}

// Route builds a line from [longitude, latitude] pairs, skipping
// malformed pairs.
func Route(pairs [][]float64) orb.LineString {
	ls := make(orb.LineString, 0, len(pairs))
	for _, pair := range pairs {
		if p, ok := PointFromCoordinates(pair); ok {
			ls = append(ls, p)
		}
	}
	return ls
}
