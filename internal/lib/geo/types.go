package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var (
	// ErrDegenerateGeometry is returned when an operation needs two distinct
	// points (a direction, a line) and receives coincident ones.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrParallelLines is returned when two infinite lines have no single
	// intersection point.
	ErrParallelLines = fmt.Errorf("lines are parallel: %w", ErrDegenerateGeometry)
)

// Point is a projected 2D coordinate carrying a scalar attribute (depth,
// elevation). Operations never modify a Point; they return new ones with the
// attribute preserved.
type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Attr float64 `json:"attr"`
}

// NewPoint creates a Point without an attribute
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// WithAttr returns a copy of p carrying attr
func (p Point) WithAttr(attr float64) Point {
	p.Attr = attr
	return p
}

// Add translates p by v
func (p Point) Add(v Vector) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y, Attr: p.Attr}
}

// Orb converts p to an orb.Point, dropping the attribute
func (p Point) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// Line is defined by two points. It is treated as infinite for intersection
// and distance calculations and as a finite segment for Length.
type Line struct {
	A Point `json:"a"`
	B Point `json:"b"`
}

// NewLine creates a Line through a and b
func NewLine(a, b Point) Line {
	return Line{A: a, B: b}
}

// Length returns the length of the segment A-B
func (l Line) Length() float64 {
	return Distance(l.A, l.B)
}

// Direction returns the vector from A to B
func (l Line) Direction() Vector {
	return NewVector(l.A, l.B)
}

// Vector is the difference of two points
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Coordinate is a geographic position in decimal degrees
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}
