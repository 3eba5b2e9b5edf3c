package geo_test

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Leomister1233/Backend/internal/geo"
)

func TestRadiusFilter(t *testing.T) {
	f := geo.RadiusFilter(geo.CoordinatesField, orb.Point{-9.1, 38.7}, 0.5)

	assert.Equal(t, bson.M{
		"geometry.coordinates": bson.M{
			"$geoWithin": bson.M{"$center": bson.A{bson.A{-9.1, 38.7}, 0.5}},
		},
	}, f)
}

func TestWithinRadius_CenterAlwaysIncluded(t *testing.T) {
	center := orb.Point{geo.DefaultLongitude, geo.DefaultLatitude}

	for _, r := range []float64{0, 0.0001, 1, 100} {
		assert.True(t, geo.WithinRadius(center, center, r), "radius %v", r)
	}
}

func TestWithinRadius_OutsideExcluded(t *testing.T) {
	center := orb.Point{0, 0}

	assert.True(t, geo.WithinRadius(center, orb.Point{3, 4}, 5))
	assert.False(t, geo.WithinRadius(center, orb.Point{3, 4}, 4.999))
	assert.False(t, geo.WithinRadius(center, orb.Point{-0.2, 0}, 0.1))
}

func TestWithinRadius_Monotonic(t *testing.T) {
	center := orb.Point{-9.14, 38.71}
	var points []orb.Point
	for i := -10; i <= 10; i++ {
		for j := -10; j <= 10; j++ {
			points = append(points, orb.Point{center[0] + float64(i)*0.013, center[1] + float64(j)*0.007})
		}
	}

	radii := []float64{0, 0.01, 0.02, 0.05, 0.1, 0.2}
	for k := 1; k < len(radii); k++ {
		for _, p := range points {
			if geo.WithinRadius(center, p, radii[k-1]) {
				require.True(t, geo.WithinRadius(center, p, radii[k]),
					"point %v in radius %v but not in %v", p, radii[k-1], radii[k])
			}
		}
	}
}

func TestContains(t *testing.T) {
	assert.True(t, geo.Contains(geo.RouteArea, geo.CheckPoint))
	assert.True(t, geo.Contains(geo.RouteArea, orb.Point{-9.1450, 38.7150}))
	assert.False(t, geo.Contains(geo.RouteArea, orb.Point{-9.2100, 38.6970}), "Belém")
	assert.False(t, geo.Contains(geo.RouteArea, orb.Point{-8.6110, 41.1496}), "Porto")
}

func TestDistanceToRouteKm(t *testing.T) {
	route := orb.LineString{{-9.20, 38.70}, {-9.10, 38.70}}

	onRoute := geo.DistanceToRouteKm(route, orb.Point{-9.15, 38.70})
	assert.InDelta(t, 0, onRoute, 1e-6)

	// 0.01 degrees of latitude is about 1.11 km.
	north := geo.DistanceToRouteKm(route, orb.Point{-9.15, 38.71})
	assert.InDelta(t, 1.11, north, 0.02)

	// Past the end of the segment the nearest point is the endpoint.
	east := geo.DistanceToRouteKm(route, orb.Point{-9.09, 38.70})
	assert.InDelta(t, 0.01*111.32*math.Cos(38.70*math.Pi/180), east, 0.02)

	assert.Equal(t, orb.LineString{{-9.20, 38.70}, {-9.10, 38.70}}, route, "route is not modified")
}

func TestPointFromCoordinatesAndRoute(t *testing.T) {
	p, ok := geo.PointFromCoordinates([]float64{-9.1, 38.7})
	require.True(t, ok)
	assert.Equal(t, orb.Point{-9.1, 38.7}, p)

	_, ok = geo.PointFromCoordinates([]float64{-9.1})
	assert.False(t, ok)

	route := geo.Route([][]float64{{-9.1, 38.7}, {1}, {-9.2, 38.8, 12}})
	assert.Equal(t, orb.LineString{{-9.1, 38.7}, {-9.2, 38.8}}, route)
}
