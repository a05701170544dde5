package xsection

import (
	"fmt"

	"github.com/riverxs/xsection/internal/lib/geo"
)

// Area returns the cross-sectional area under the profile using the
// trapezoidal rule.
func Area(p Profile) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, fmt.Errorf("area: %w", err)
	}

	var area float64
	for i := 0; i < p.Len()-1; i++ {
		width := p.Stations[i+1] - p.Stations[i]
		area += (p.Depths[i] + p.Depths[i+1]) / 2 * width
	}
	return area, nil
}

// CorrectElevations clamps every step between consecutive values to at most
// maxUp upwards and maxDown downwards. The first value is kept.
func CorrectElevations(values []float64, maxUp, maxDown float64) []float64 {
	if len(values) == 0 {
		return nil
	}

	out := make([]float64, len(values))
	out[0] = values[0]
	last := values[0]
	for i, v := range values[1:] {
		if v > last+maxUp {
			v = last + maxUp
		}
		if v < last-maxDown {
			v = last - maxDown
		}
		out[i+1] = v
		last = v
	}
	return out
}

// InterpolateX returns the x at which the straight line through (x1, y1) and
// (x2, y2) reaches yi. Equal y values leave x undefined.
func InterpolateX(x1, y1, x2, y2, yi float64) (float64, error) {
	if y1 == y2 {
		return 0, fmt.Errorf("interpolate x between equal y values: %w", geo.ErrDegenerateGeometry)
	}
	slope := (x2 - x1) / (y2 - y1)
	return (yi-y1)*slope + x1, nil
}
