package gazetteer

import (
	"fmt"
	"math"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"
)

// s2CellLevel is the S2 level of the cell token stored with a point. Level 10
// cells are roughly 10km across, enough to tell neighbouring villages apart
// in a dump without implying surveyed precision.
const s2CellLevel = 10

// Coordinates is a WGS84 point reported for a place by an external source.
type Coordinates struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Geohash string  `json:"geohash"`
	S2Cell  string  `json:"s2_cell"`
}

// NewCoordinates validates lat/lon (degrees) and derives the geohash and S2
// cell token.
func NewCoordinates(lat, lon float64) (Coordinates, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return Coordinates{}, fmt.Errorf("invalid coordinates %v,%v", lat, lon)
	}
	ll := s2.LatLngFromDegrees(lat, lon)
	if !ll.IsValid() {
		return Coordinates{}, fmt.Errorf("coordinates out of range: %v,%v", lat, lon)
	}
	return Coordinates{
		Lat:     lat,
		Lon:     lon,
		Geohash: geohash.Encode(lat, lon),
		S2Cell:  s2.CellIDFromLatLng(ll).Parent(s2CellLevel).ToToken(),
	}, nil
}

// Equal compares positions only; derived fields follow from them.
func (c Coordinates) Equal(o Coordinates) bool {
	return c.Lat == o.Lat && c.Lon == o.Lon
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}
