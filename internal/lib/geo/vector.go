package geo

import (
	"fmt"
	"math"
)

// NewVector returns the vector from p1 to p2. Only the spatial components
// take part; attributes are not a dimension.
func NewVector(p1, p2 Point) Vector {
	return Vector{X: p2.X - p1.X, Y: p2.Y - p1.Y}
}

// Len returns the Euclidean length of v
func (v Vector) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Unit returns v scaled to length 1. A zero vector has no direction and
// yields ErrDegenerateGeometry.
func (v Vector) Unit() (Vector, error) {
	length := v.Len()
	if length == 0 {
		return Vector{}, fmt.Errorf("unit vector of coincident points: %w", ErrDegenerateGeometry)
	}
	return Vector{X: v.X / length, Y: v.Y / length}, nil
}

// Scale multiplies every component of v by k
func (v Vector) Scale(k float64) Vector {
	return Vector{X: v.X * k, Y: v.Y * k}
}

// Dot returns the dot product of v and o
func (v Vector) Dot(o Vector) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Rotate rotates v by phi degrees; positive angles turn counter-clockwise
func (v Vector) Rotate(phi float64) Vector {
	rad := DegToRad(phi)
	sin, cos := math.Sincos(rad)
	return Vector{
		X: cos*v.X - sin*v.Y,
		Y: sin*v.X + cos*v.Y,
	}
}

// DegToRad converts degrees to radians
func DegToRad(phi float64) float64 {
	return phi * math.Pi / 180
}
