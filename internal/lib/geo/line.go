package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb/planar"
)

// Distance returns the planar distance between two points
func Distance(p1, p2 Point) float64 {
	return planar.Distance(p1.Orb(), p2.Orb())
}

// PerpLine creates a line of the given total length centred on p1 and
// perpendicular to the direction p1->p2.
func PerpLine(p1, p2 Point, length float64) (Line, error) {
	unit, err := NewVector(p1, p2).Unit()
	if err != nil {
		return Line{}, fmt.Errorf("perpendicular line: %w", err)
	}

	half := length / 2
	left := unit.Rotate(90).Scale(half)
	right := unit.Rotate(270).Scale(half)

	return Line{
		A: NewPoint(p1.X+left.X, p1.Y+left.Y),
		B: NewPoint(p1.X+right.X, p1.Y+right.Y),
	}, nil
}

// PointToLineDistance returns the perpendicular distance from p to the
// infinite line through l.A and l.B.
func PointToLineDistance(p Point, l Line) (float64, error) {
	x1, y1, x2, y2 := l.A.X, l.A.Y, l.B.X, l.B.Y
	norm := math.Hypot(y2-y1, x2-x1)
	if norm == 0 {
		return 0, fmt.Errorf("distance to line through coincident points: %w", ErrDegenerateGeometry)
	}
	return math.Abs((y2-y1)*p.X-(x2-x1)*p.Y+x2*y1-y2*x1) / norm, nil
}

// IntersectInfiniteLines returns the intersection of the infinite lines
// through l1 and l2. Parallel and coincident lines return ErrParallelLines.
func IntersectInfiniteLines(l1, l2 Line) (Point, error) {
	x1, y1, x2, y2 := l1.A.X, l1.A.Y, l1.B.X, l1.B.Y
	x3, y3, x4, y4 := l2.A.X, l2.A.Y, l2.B.X, l2.B.Y

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if denom == 0 {
		return Point{}, ErrParallelLines
	}

	a := x1*y2 - y1*x2
	b := x3*y4 - y3*x4
	xi := (a*(x3-x4) - (x1-x2)*b) / denom
	yi := (a*(y3-y4) - (y1-y2)*b) / denom
	if math.IsInf(xi, 0) || math.IsInf(yi, 0) || math.IsNaN(xi) || math.IsNaN(yi) {
		return Point{}, ErrParallelLines
	}

	return NewPoint(xi, yi), nil
}

// MoveAlong moves p by dist in the direction of v, keeping its attribute
func MoveAlong(p Point, v Vector, dist float64) (Point, error) {
	unit, err := v.Unit()
	if err != nil {
		return Point{}, fmt.Errorf("move point: %w", err)
	}
	return p.Add(unit.Scale(dist)), nil
}
