package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
	"github.com/twpayne/go-polyline"
)

// profileCodec encodes x, y and attribute with centimetre precision. The
// default Google codec (1e5, two dimensions) is tuned for degrees, not meters.
var profileCodec = polyline.Codec{Dim: 3, Scale: 1e2}

// Polyline is a named sequence of points
type Polyline struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// LineString converts the polyline to an orb.LineString
func (pl Polyline) LineString() orb.LineString {
	ls := make(orb.LineString, len(pl.Points))
	for i, p := range pl.Points {
		ls[i] = p.Orb()
	}
	return ls
}

// Length returns the summed segment length
func (pl Polyline) Length() float64 {
	return planar.Length(pl.LineString())
}

// Encode returns the polyline as an encoded polyline string, attributes
// included.
func (pl Polyline) Encode() string {
	coords := make([][]float64, len(pl.Points))
	for i, p := range pl.Points {
		coords[i] = []float64{p.X, p.Y, p.Attr}
	}
	return string(profileCodec.EncodeCoords(nil, coords))
}

// DecodePolyline decodes a string produced by Polyline.Encode
func DecodePolyline(name, encoded string) (Polyline, error) {
	if encoded == "" {
		return Polyline{}, errors.New("encoded polyline string is empty")
	}

	coords, _, err := profileCodec.DecodeCoords([]byte(encoded))
	if err != nil {
		return Polyline{}, fmt.Errorf("failed to decode polyline: %w", err)
	}

	points := make([]Point, len(coords))
	for i, c := range coords {
		points[i] = Point{X: c[0], Y: c[1], Attr: c[2]}
	}
	return Polyline{Name: name, Points: points}, nil
}

// SimplifyTrack drops vertices closer than tolerance to the Douglas-Peucker
// baseline. Attributes of the surviving vertices are kept.
func SimplifyTrack(pl Polyline, tolerance float64) Polyline {
	if len(pl.Points) < 3 {
		return pl
	}

	ls := pl.LineString()
	simplified := simplify.DouglasPeucker(tolerance).LineString(ls.Clone())

	// orb returns a subset of the original vertices in order; walk both to
	// recover the attributes.
	points := make([]Point, 0, len(simplified))
	j := 0
	for _, op := range simplified {
		for j < len(pl.Points) && pl.Points[j].Orb() != op {
			j++
		}
		if j == len(pl.Points) {
			break
		}
		points = append(points, pl.Points[j])
		j++
	}

	return Polyline{Name: pl.Name, Points: points}
}
