package xsection

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Aggregation collapses the depths of grouped stations into one value
type Aggregation string

const (
	AggMin  Aggregation = "min"
	AggMax  Aggregation = "max"
	AggMean Aggregation = "mean"
)

// ParseAggregation parses "min", "max" or "mean", ignoring case
func ParseAggregation(s string) (Aggregation, error) {
	agg := Aggregation(strings.ToLower(strings.TrimSpace(s)))
	switch agg {
	case AggMin, AggMax, AggMean:
		return agg, nil
	default:
		return "", fmt.Errorf("unknown aggregation %q (want min, max or mean)", s)
	}
}

// Apply aggregates values. values must not be empty.
func (a Aggregation) Apply(values []float64) float64 {
	switch a {
	case AggMin:
		return floats.Min(values)
	case AggMax:
		return floats.Max(values)
	default:
		return stat.Mean(values, nil)
	}
}

// Simplify thins a profile. The first two and last two points are kept as
// they are. Interior depths are buffered until the station has moved at
// least distThreshPct percent of the largest station past the previously
// kept station; the buffer is then emitted at that station as one value
// aggregated with agg. A partial buffer left before the last two points is
// dropped.
//
// Profiles with fewer than four points have no interior and are returned
// unchanged. Running Simplify on its own output with the same arguments
// returns the same profile.
//
// Use agg=max for sonar surveys, where vegetation can block the beam at
// random points and the deepest reading is the river bed.
func Simplify(p Profile, distThreshPct float64, agg Aggregation) (Profile, error) {
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("simplify: %w", err)
	}
	if _, err := ParseAggregation(string(agg)); err != nil {
		return Profile{}, fmt.Errorf("simplify: %w", err)
	}
	if distThreshPct < 0 {
		return Profile{}, fmt.Errorf("simplify: negative distance threshold %v: %w", distThreshPct, ErrMalformedInput)
	}

	n := p.Len()
	if n < 4 {
		return p.Clone(), nil
	}

	threshold := distThreshPct / 100 * floats.Max(p.Stations)

	stations := []float64{p.Stations[0], p.Stations[1]}
	depths := []float64{p.Depths[0], p.Depths[1]}

	prev := p.Stations[1]
	var buffer []float64
	for i := 2; i < n-2; i++ {
		buffer = append(buffer, p.Depths[i])
		if p.Stations[i]-prev >= threshold {
			stations = append(stations, p.Stations[i])
			depths = append(depths, agg.Apply(buffer))
			prev = p.Stations[i]
			buffer = buffer[:0]
		}
	}

	stations = append(stations, p.Stations[n-2], p.Stations[n-1])
	depths = append(depths, p.Depths[n-2], p.Depths[n-1])

	return Profile{Stations: stations, Depths: depths}, nil
}
