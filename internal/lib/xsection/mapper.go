// Package xsection turns raw river cross-section surveys into station/depth
// profiles along a reference line and post-processes those profiles.
package xsection

import (
	"fmt"

	"github.com/riverxs/xsection/internal/lib/geo"
)

// MapToLine snaps every survey point onto the infinite reference line, orders
// the snapped points from the end nearest ref.A, and rescales their spacing
// (bank distances included) so that the profile spans exactly |ref|.
//
// The first profile point is the left bank at station 0 with depth
// BankHeight; the last is the right bank at station |ref| with depth 0.
// Every surveyed depth is offset by BankHeight.
func MapToLine(s Survey, ref geo.Line) (Profile, error) {
	if len(s.Points) == 0 {
		return Profile{}, fmt.Errorf("map %q: survey has no points: %w", s.ID, ErrMalformedInput)
	}
	if s.LeftBankDist < 0 || s.RightBankDist < 0 {
		return Profile{}, fmt.Errorf("map %q: negative bank distance: %w", s.ID, ErrMalformedInput)
	}

	// Unit line perpendicular to ref at its first vertex; its direction is
	// the direction along which points travel onto ref.
	perp, err := geo.PerpLine(ref.A, ref.B, 1)
	if err != nil {
		return Profile{}, fmt.Errorf("map %q: reference line: %w", s.ID, err)
	}
	projection := perp.Direction()

	moved := make([]geo.Point, len(s.Points))
	for i, p := range s.Points {
		moved[i], err = snapToLine(p, projection, ref)
		if err != nil {
			return Profile{}, fmt.Errorf("map %q: point %d: %w", s.ID, i, err)
		}
	}

	lo, hi := extremes(moved, ref.Direction())
	_, nearest := geo.ClosestPoint(ref.A, []geo.Point{moved[lo], moved[hi]})
	anchor := lo
	if nearest == 1 {
		anchor = hi
	}

	ordered := geo.OrderByNearestNeighbor(moved, anchor)
	profile, err := rescale(ordered, s, ref.Length())
	if err != nil {
		return Profile{}, fmt.Errorf("map %q: %w", s.ID, err)
	}
	return profile, nil
}

// snapToLine moves p onto ref along the projection direction
func snapToLine(p geo.Point, projection geo.Vector, ref geo.Line) (geo.Point, error) {
	dist, err := geo.PointToLineDistance(p, ref)
	if err != nil {
		return geo.Point{}, err
	}
	if dist < geo.Epsilon {
		return p, nil
	}

	aux := geo.NewLine(p, p.Add(projection))
	hit, err := geo.IntersectInfiniteLines(aux, ref)
	if err != nil {
		return geo.Point{}, err
	}

	return geo.MoveAlong(p, geo.NewVector(p, hit), dist)
}

// extremes returns the indices of the points with the smallest and largest
// position along dir. The first occurrence wins on ties.
func extremes(points []geo.Point, dir geo.Vector) (lo, hi int) {
	origin := points[0]
	minPos, maxPos := 0.0, 0.0
	for i, p := range points {
		pos := dir.Dot(geo.NewVector(origin, p))
		if pos < minPos {
			minPos, lo = pos, i
		}
		if pos > maxPos {
			maxPos, hi = pos, i
		}
	}
	return lo, hi
}

func rescale(ordered []geo.Point, s Survey, target float64) (Profile, error) {
	first := ordered[0]
	spread := geo.Distance(first, ordered[len(ordered)-1])
	source := s.LeftBankDist + spread + s.RightBankDist
	if source == 0 {
		return Profile{}, fmt.Errorf("survey collapses to a single point without bank distances: %w", geo.ErrDegenerateGeometry)
	}
	scale := target / source

	n := len(ordered) + 2
	stations := make([]float64, 0, n)
	depths := make([]float64, 0, n)

	stations = append(stations, 0, s.LeftBankDist*scale)
	depths = append(depths, s.BankHeight, first.Attr+s.BankHeight)

	for _, p := range ordered[1:] {
		stations = append(stations, stations[1]+geo.Distance(first, p)*scale)
		depths = append(depths, p.Attr+s.BankHeight)
	}

	stations = append(stations, stations[len(stations)-1]+s.RightBankDist*scale)
	depths = append(depths, 0)

	return Profile{Stations: stations, Depths: depths}, nil
}
