package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Polygon is an outer ring followed by optional holes
type Polygon struct {
	Rings [][]Point
}

// NewPolygon creates a polygon from its outer ring and holes
func NewPolygon(outer []Point, holes ...[]Point) Polygon {
	return Polygon{Rings: append([][]Point{outer}, holes...)}
}

// Orb converts the polygon to an orb.Polygon, closing rings as needed
func (pg Polygon) Orb() orb.Polygon {
	poly := make(orb.Polygon, 0, len(pg.Rings))
	for _, r := range pg.Rings {
		ring := make(orb.Ring, 0, len(r)+1)
		for _, p := range r {
			ring = append(ring, p.Orb())
		}
		if len(ring) > 0 && !ring.Closed() {
			ring = append(ring, ring[0])
		}
		poly = append(poly, ring)
	}
	return poly
}

// Contains reports whether p lies inside the outer ring and outside every hole
func (pg Polygon) Contains(p Point) bool {
	if len(pg.Rings) == 0 {
		return false
	}
	return planar.PolygonContains(pg.Orb(), p.Orb())
}

// Mask returns the points that fall inside the polygon
func (pg Polygon) Mask(points []Point) []Point {
	var inside []Point
	for _, p := range points {
		if pg.Contains(p) {
			inside = append(inside, p)
		}
	}
	return inside
}
