package xsection

import (
	"errors"
	"fmt"

	"github.com/riverxs/xsection/internal/lib/geo"
)

var (
	// ErrMalformedInput is returned for missing survey metadata, short data
	// rows and inconsistent profiles.
	ErrMalformedInput = errors.New("malformed input")

	// ErrInteriorAssumption is returned when a no-data run touches the start
	// or end of a sequence and therefore has no bounding value on one side.
	ErrInteriorAssumption = errors.New("no-data run touches sequence boundary")
)

// Survey is one raw cross-section: the surveyed points (projected, with
// depth as attribute) and the bank metadata that anchors them.
type Survey struct {
	ID            string      `json:"id" yaml:"id"`
	LeftBankDist  float64     `json:"left_bank_dist" yaml:"left_bank_dist"`
	RightBankDist float64     `json:"right_bank_dist" yaml:"right_bank_dist"`
	BankHeight    float64     `json:"bank_height" yaml:"bank_height"`
	Points        []geo.Point `json:"points" yaml:"-"`
}

// Profile is a cross-section as parallel station/depth series. Stations are
// distances from the left bank along the reference line.
type Profile struct {
	Stations []float64 `json:"stations" yaml:"stations"`
	Depths   []float64 `json:"depths" yaml:"depths"`
}

// Len returns the number of profile points
func (p Profile) Len() int {
	return len(p.Stations)
}

// Validate checks that stations and depths are parallel
func (p Profile) Validate() error {
	if len(p.Stations) != len(p.Depths) {
		return fmt.Errorf("%d stations but %d depths: %w", len(p.Stations), len(p.Depths), ErrMalformedInput)
	}
	return nil
}

// Clone returns a deep copy
func (p Profile) Clone() Profile {
	return Profile{
		Stations: append([]float64(nil), p.Stations...),
		Depths:   append([]float64(nil), p.Depths...),
	}
}

// Georeference places every station on the reference line, starting at its
// first vertex. Depths become point attributes.
func (p Profile) Georeference(name string, ref geo.Line) (geo.Polyline, error) {
	if err := p.Validate(); err != nil {
		return geo.Polyline{}, err
	}
	dir, err := ref.Direction().Unit()
	if err != nil {
		return geo.Polyline{}, fmt.Errorf("georeference %s: %w", name, err)
	}

	points := make([]geo.Point, p.Len())
	for i, station := range p.Stations {
		points[i] = ref.A.Add(dir.Scale(station)).WithAttr(p.Depths[i])
	}
	return geo.Polyline{Name: name, Points: points}, nil
}
