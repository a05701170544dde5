package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector_UnitHasMagnitudeOne(t *testing.T) {
	pairs := [][2]Point{
		{NewPoint(0, 0), NewPoint(3, 4)},
		{NewPoint(1035462.70, 340802.35), NewPoint(1035788.82, 340768.10)},
		{NewPoint(-5, 2), NewPoint(-5.000001, 2)},
		{NewPoint(10, 10), NewPoint(-10, -30)},
	}

	for _, pair := range pairs {
		unit, err := NewVector(pair[0], pair[1]).Unit()
		require.NoError(t, err)
		assert.InDelta(t, 1.0, unit.Len(), 1e-9)
	}
}

func TestVector_UnitOfCoincidentPoints(t *testing.T) {
	p := NewPoint(12.5, -3)

	_, err := NewVector(p, p).Unit()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestVector_NewVectorIgnoresAttribute(t *testing.T) {
	v := NewVector(Point{X: 1, Y: 1, Attr: 5}, Point{X: 4, Y: 5, Attr: 9})
	assert.Equal(t, Vector{X: 3, Y: 4}, v)
	assert.Equal(t, 5.0, v.Len())
	assert.Equal(t, Vector{X: 6, Y: 8}, v.Scale(2))
}

func TestVector_Rotate(t *testing.T) {
	v := Vector{X: 1, Y: 0}

	left := v.Rotate(90)
	assert.InDelta(t, 0, left.X, 1e-12)
	assert.InDelta(t, 1, left.Y, 1e-12)

	right := v.Rotate(-90)
	assert.InDelta(t, 0, right.X, 1e-12)
	assert.InDelta(t, -1, right.Y, 1e-12)

	full := Vector{X: 2, Y: 3}.Rotate(360)
	assert.InDelta(t, 2, full.X, 1e-12)
	assert.InDelta(t, 3, full.Y, 1e-12)
}

func TestPerpLine(t *testing.T) {
	line, err := PerpLine(NewPoint(0, 0), NewPoint(10, 0), 2)
	require.NoError(t, err)

	assert.InDelta(t, 0, line.A.X, 1e-12)
	assert.InDelta(t, 1, line.A.Y, 1e-12)
	assert.InDelta(t, 0, line.B.X, 1e-12)
	assert.InDelta(t, -1, line.B.Y, 1e-12)
	assert.InDelta(t, 2, line.Length(), 1e-12)

	_, err = PerpLine(NewPoint(1, 1), NewPoint(1, 1), 2)
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestPointToLineDistance(t *testing.T) {
	line := NewLine(NewPoint(0, 0), NewPoint(100, 0))

	d, err := PointToLineDistance(NewPoint(42, 5), line)
	require.NoError(t, err)
	assert.InDelta(t, 5, d, 1e-12)

	// Infinite line: a point beyond the segment end still measures perpendicular
	d, err = PointToLineDistance(NewPoint(250, -7), line)
	require.NoError(t, err)
	assert.InDelta(t, 7, d, 1e-12)

	_, err = PointToLineDistance(NewPoint(1, 1), NewLine(NewPoint(3, 3), NewPoint(3, 3)))
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestPointToLineDistance_SymmetricInLinePoints(t *testing.T) {
	a := NewPoint(3, -2)
	b := NewPoint(-7, 11)
	points := []Point{NewPoint(0, 0), NewPoint(15, 4), NewPoint(-3.3, 8.1), a}

	for _, p := range points {
		d1, err := PointToLineDistance(p, NewLine(a, b))
		require.NoError(t, err)
		d2, err := PointToLineDistance(p, NewLine(b, a))
		require.NoError(t, err)
		assert.InDelta(t, d1, d2, 1e-12)
	}
}

func TestIntersectInfiniteLines(t *testing.T) {
	p, err := IntersectInfiniteLines(
		NewLine(NewPoint(0, 0), NewPoint(10, 0)),
		NewLine(NewPoint(5, -5), NewPoint(5, 5)),
	)
	require.NoError(t, err)
	assert.InDelta(t, 5, p.X, 1e-12)
	assert.InDelta(t, 0, p.Y, 1e-12)

	// Intersection outside both segments
	p, err = IntersectInfiniteLines(
		NewLine(NewPoint(0, 0), NewPoint(1, 1)),
		NewLine(NewPoint(10, 0), NewPoint(11, -1)),
	)
	require.NoError(t, err)
	assert.InDelta(t, 5, p.X, 1e-9)
	assert.InDelta(t, 5, p.Y, 1e-9)
}

func TestIntersectInfiniteLines_Parallel(t *testing.T) {
	_, err := IntersectInfiniteLines(
		NewLine(NewPoint(0, 0), NewPoint(10, 0)),
		NewLine(NewPoint(0, 5), NewPoint(10, 5)),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParallelLines)
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestMoveAlong_KeepsAttribute(t *testing.T) {
	moved, err := MoveAlong(Point{X: 1, Y: 1, Attr: 2.5}, Vector{X: 0, Y: -10}, 3)
	require.NoError(t, err)

	assert.InDelta(t, 1, moved.X, 1e-12)
	assert.InDelta(t, -2, moved.Y, 1e-12)
	assert.Equal(t, 2.5, moved.Attr)

	_, err = MoveAlong(Point{}, Vector{}, 1)
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestClosestPoint(t *testing.T) {
	candidates := []Point{NewPoint(5, 0), NewPoint(-5, 0), NewPoint(0, 2)}

	p, idx := ClosestPoint(NewPoint(0, 0), candidates)
	assert.Equal(t, 2, idx)
	assert.Equal(t, candidates[2], p)

	// Equidistant candidates: the first one wins
	p, idx = ClosestPoint(NewPoint(0, 0), candidates[:2])
	assert.Equal(t, 0, idx)
	assert.Equal(t, candidates[0], p)

	_, idx = ClosestPoint(NewPoint(0, 0), nil)
	assert.Equal(t, -1, idx)
}

func TestOrderByNearestNeighbor(t *testing.T) {
	points := []Point{
		{X: 50, Y: 0, Attr: 2},
		{X: 90, Y: 0, Attr: 3},
		{X: 10, Y: 0, Attr: 1},
		{X: 70, Y: 0, Attr: 2.5},
	}

	ordered := OrderByNearestNeighbor(points, 2)
	require.Len(t, ordered, 4)
	assert.Equal(t, []float64{10, 50, 70, 90}, []float64{ordered[0].X, ordered[1].X, ordered[2].X, ordered[3].X})
	assert.Equal(t, []float64{1, 2, 2.5, 3}, []float64{ordered[0].Attr, ordered[1].Attr, ordered[2].Attr, ordered[3].Attr})

	// The input slice is untouched
	assert.Equal(t, 50.0, points[0].X)

	assert.Nil(t, OrderByNearestNeighbor(nil, 0))
	assert.Nil(t, OrderByNearestNeighbor(points, 7))
}

func TestOrderByNearestNeighbor_TieBreak(t *testing.T) {
	// From the origin both neighbours are 1 away; the earlier one comes first
	points := []Point{NewPoint(0, 0), NewPoint(0, 1), NewPoint(1, 0)}

	ordered := OrderByNearestNeighbor(points, 0)
	require.Len(t, ordered, 3)
	assert.Equal(t, NewPoint(0, 1), ordered[1])
	assert.Equal(t, NewPoint(1, 0), ordered[2])
}

func TestMiddlePoint(t *testing.T) {
	mp, err := MiddlePoint([]Point{NewPoint(0, 0), NewPoint(4, 0), NewPoint(4, 6), NewPoint(0, 6)})
	require.NoError(t, err)
	assert.Equal(t, NewPoint(2, 3), mp)

	_, err = MiddlePoint(nil)
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	assert.True(t, AlmostEqual(1.0, 1.00000001))
	assert.False(t, AlmostEqual(1.0, 1.001))
}

func TestGreatCircleDistance(t *testing.T) {
	angelsCamp := Coordinate{Latitude: 38.0675, Longitude: -120.5436}
	murphys := Coordinate{Latitude: 38.1391, Longitude: -120.4561}

	distance, err := GreatCircleDistance(angelsCamp, murphys)
	require.NoError(t, err)
	assert.InDelta(t, 11046, distance, 100)

	distance, err = GreatCircleDistance(murphys, murphys)
	require.NoError(t, err)
	assert.Equal(t, 0.0, distance)

	_, err = GreatCircleDistance(angelsCamp, Coordinate{Latitude: 200, Longitude: -300})
	assert.Error(t, err)

	_, err = NewCoordinate(91, 0)
	assert.Error(t, err)
}

func TestExtent(t *testing.T) {
	coords := []Coordinate{
		{Latitude: 8.40, Longitude: 33.20},
		{Latitude: 8.40, Longitude: 33.201},
		{Latitude: 8.40, Longitude: 33.203},
	}

	extent, err := Extent(coords)
	require.NoError(t, err)
	// 0.003° of longitude at 8.4°N
	expected := EarthRadius * DegToRad(0.003) * math.Cos(DegToRad(8.4))
	assert.InDelta(t, expected, extent, 0.5)
}

func TestPolyline_EncodeDecode(t *testing.T) {
	pl := Polyline{
		Name: "xs-001",
		Points: []Point{
			{X: 1035462.71, Y: 340802.35, Attr: 0},
			{X: 1035500.00, Y: 340799.12, Attr: 3.25},
			{X: 1035788.82, Y: 340768.10, Attr: 0},
		},
	}

	decoded, err := DecodePolyline(pl.Name, pl.Encode())
	require.NoError(t, err)
	require.Len(t, decoded.Points, 3)
	for i := range pl.Points {
		assert.InDelta(t, pl.Points[i].X, decoded.Points[i].X, 0.005)
		assert.InDelta(t, pl.Points[i].Y, decoded.Points[i].Y, 0.005)
		assert.InDelta(t, pl.Points[i].Attr, decoded.Points[i].Attr, 0.005)
	}

	_, err = DecodePolyline("empty", "")
	assert.Error(t, err)
}

func TestPolyline_Length(t *testing.T) {
	pl := Polyline{Points: []Point{NewPoint(0, 0), NewPoint(3, 4), NewPoint(3, 10)}}
	assert.InDelta(t, 11, pl.Length(), 1e-12)
}

func TestSimplifyTrack(t *testing.T) {
	pl := Polyline{
		Name: "track",
		Points: []Point{
			{X: 0, Y: 0, Attr: 1},
			{X: 1, Y: 0.01, Attr: 2},
			{X: 2, Y: -0.01, Attr: 3},
			{X: 3, Y: 5, Attr: 4},
			{X: 4, Y: 10, Attr: 5},
		},
	}

	simplified := SimplifyTrack(pl, 0.1)
	require.GreaterOrEqual(t, len(simplified.Points), 2)
	assert.Less(t, len(simplified.Points), len(pl.Points))
	assert.Equal(t, pl.Points[0], simplified.Points[0])
	assert.Equal(t, pl.Points[4], simplified.Points[len(simplified.Points)-1])
	assert.Equal(t, "track", simplified.Name)
}

func TestPolygon_Contains(t *testing.T) {
	outer := []Point{NewPoint(0, 0), NewPoint(10, 0), NewPoint(10, 10), NewPoint(0, 10)}
	hole := []Point{NewPoint(4, 4), NewPoint(6, 4), NewPoint(6, 6), NewPoint(4, 6)}
	poly := NewPolygon(outer, hole)

	assert.True(t, poly.Contains(NewPoint(2, 2)))
	assert.False(t, poly.Contains(NewPoint(5, 5)), "point inside the hole")
	assert.False(t, poly.Contains(NewPoint(12, 5)))
	assert.False(t, Polygon{}.Contains(NewPoint(1, 1)))

	masked := poly.Mask([]Point{NewPoint(1, 1), NewPoint(5, 5), NewPoint(9, 9), NewPoint(-1, 0)})
	assert.Equal(t, []Point{NewPoint(1, 1), NewPoint(9, 9)}, masked)
}
