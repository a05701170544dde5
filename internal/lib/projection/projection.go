// Package projection converts survey coordinates between a geographic and a
// projected reference system.
package projection

import (
	"errors"
	"fmt"

	"github.com/im7mortal/UTM"

	"github.com/riverxs/xsection/internal/lib/geo"
)

// EPSG codes understood by New
const (
	WGS84         = 4326
	utmNorthFirst = 32601
	utmNorthLast  = 32660
	utmSouthFirst = 32701
	utmSouthLast  = 32760
)

// ErrUnsupportedCRS is returned for EPSG codes outside WGS84 and the WGS84
// UTM zones.
var ErrUnsupportedCRS = errors.New("unsupported coordinate reference system")

// Projector converts geographic coordinates to the target system and back
type Projector interface {
	// Project converts a geographic coordinate to a projected point
	Project(c geo.Coordinate) (geo.Point, error)

	// Inverse converts a projected point back to a geographic coordinate
	Inverse(p geo.Point) (geo.Coordinate, error)
}

// New returns a projector from srcEPSG to tarEPSG. Only WGS84 is accepted as
// the source; the target is WGS84 (identity) or a WGS84 UTM zone.
func New(srcEPSG, tarEPSG int) (Projector, error) {
	if srcEPSG != WGS84 {
		return nil, fmt.Errorf("source EPSG:%d: %w", srcEPSG, ErrUnsupportedCRS)
	}

	switch {
	case tarEPSG == WGS84:
		return Identity{}, nil
	case tarEPSG >= utmNorthFirst && tarEPSG <= utmNorthLast:
		return &UTMZone{Zone: tarEPSG - utmNorthFirst + 1, Northern: true}, nil
	case tarEPSG >= utmSouthFirst && tarEPSG <= utmSouthLast:
		return &UTMZone{Zone: tarEPSG - utmSouthFirst + 1, Northern: false}, nil
	default:
		return nil, fmt.Errorf("target EPSG:%d: %w", tarEPSG, ErrUnsupportedCRS)
	}
}

// Identity keeps geographic coordinates, with X as longitude and Y as latitude
type Identity struct{}

// Project maps longitude to X and latitude to Y
func (Identity) Project(c geo.Coordinate) (geo.Point, error) {
	if _, err := geo.NewCoordinate(c.Latitude, c.Longitude); err != nil {
		return geo.Point{}, err
	}
	return geo.NewPoint(c.Longitude, c.Latitude), nil
}

// Inverse maps X to longitude and Y to latitude
func (Identity) Inverse(p geo.Point) (geo.Coordinate, error) {
	return geo.NewCoordinate(p.Y, p.X)
}

// UTMZone projects to one fixed UTM zone of the WGS84 datum
type UTMZone struct {
	Zone     int
	Northern bool
}

// EPSG returns the EPSG code of the zone
func (u *UTMZone) EPSG() int {
	if u.Northern {
		return utmNorthFirst + u.Zone - 1
	}
	return utmSouthFirst + u.Zone - 1
}

// Project converts c to easting/northing. A coordinate whose natural zone is
// not the projector's zone is rejected rather than silently shifted.
func (u *UTMZone) Project(c geo.Coordinate) (geo.Point, error) {
	if _, err := geo.NewCoordinate(c.Latitude, c.Longitude); err != nil {
		return geo.Point{}, err
	}

	easting, northing, zone, _, err := UTM.FromLatLon(c.Latitude, c.Longitude, u.Northern)
	if err != nil {
		return geo.Point{}, fmt.Errorf("project (%f, %f): %w", c.Latitude, c.Longitude, err)
	}
	if zone != u.Zone {
		return geo.Point{}, fmt.Errorf("coordinate (%f, %f) lies in UTM zone %d, not zone %d", c.Latitude, c.Longitude, zone, u.Zone)
	}

	return geo.NewPoint(easting, northing), nil
}

// Inverse converts easting/northing back to latitude/longitude
func (u *UTMZone) Inverse(p geo.Point) (geo.Coordinate, error) {
	lat, lon, err := UTM.ToLatLon(p.X, p.Y, u.Zone, "", u.Northern)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("unproject (%f, %f): %w", p.X, p.Y, err)
	}
	return geo.Coordinate{Latitude: lat, Longitude: lon}, nil
}
