package geo

import "github.com/paulmach/orb"

// Defaults for the radius search, a point in Baixa-Chiado.
const (
	DefaultLongitude = -9.14421890064127
	DefaultLatitude  = 38.7105419551935
	DefaultRadius    = 100.0
)

// RouteArea is the fixed area the "libraries on route" listing searches:
// a ring around central Lisbon from Alcântara to Santa Apolónia and north
// to Saldanha.
var RouteArea = orb.Polygon{
	orb.Ring{
		{-9.1780, 38.7030},
		{-9.1220, 38.7080},
		{-9.1150, 38.7150},
		{-9.1350, 38.7360},
		{-9.1470, 38.7370},
		{-9.1600, 38.7250},
		{-9.1780, 38.7030},
	},
}

// CheckPoint is the fixed point tested against RouteArea, Praça do Comércio.
var CheckPoint = orb.Point{-9.1366, 38.7075}
