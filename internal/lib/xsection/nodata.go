package xsection

import (
	"fmt"

	"github.com/riverxs/xsection/internal/lib/geo"
)

// InterpolateNoData returns a copy of values in which every run of nodata
// values is replaced by a linear ramp between the valid values on either
// side. A run at the start or end of values has only one bound and yields
// ErrInteriorAssumption.
func InterpolateNoData(values []float64, nodata float64) ([]float64, error) {
	return interpolateRuns(values, func(i int) bool {
		return geo.AlmostEqual(values[i], nodata)
	})
}

// InterpolateNoDataInterior is InterpolateNoData for a mapped profile: the
// first and last values are the banks and always bound the interior runs,
// even when they happen to equal nodata.
func InterpolateNoDataInterior(values []float64, nodata float64) ([]float64, error) {
	last := len(values) - 1
	return interpolateRuns(values, func(i int) bool {
		return i > 0 && i < last && geo.AlmostEqual(values[i], nodata)
	})
}

func interpolateRuns(values []float64, missing func(i int) bool) ([]float64, error) {
	out := append([]float64(nil), values...)
	n := len(out)

	for i := 0; i < n; {
		if !missing(i) {
			i++
			continue
		}

		start := i
		for i < n && missing(i) {
			i++
		}
		if start == 0 || i == n {
			return nil, fmt.Errorf("no-data run [%d, %d) of %d values: %w", start, i, n, ErrInteriorAssumption)
		}

		// ramp covers the bounds too: out[start-1] .. out[i]
		ramp := InterpolationSteps(out[start-1], out[i], i-start)
		copy(out[start-1:], ramp)
	}

	return out, nil
}

// InterpolationSteps returns [v1, ..., v2] with steps evenly spaced values
// strictly between v1 and v2.
func InterpolationSteps(v1, v2 float64, steps int) []float64 {
	if steps < 0 {
		steps = 0
	}

	delta := (v2 - v1) / float64(steps+1)
	out := make([]float64, 0, steps+2)
	out = append(out, v1)
	for k := 1; k <= steps; k++ {
		out = append(out, v1+delta*float64(k))
	}
	return append(out, v2)
}
