package geo

import (
	"errors"
	"math"
)

// ClosestPoint returns the candidate nearest to p and its index. Ties go to
// the first candidate. An empty candidate list returns index -1.
func ClosestPoint(p Point, candidates []Point) (Point, int) {
	if len(candidates) == 0 {
		return Point{}, -1
	}

	location := 0
	minDist := Distance(p, candidates[0])
	for i := 1; i < len(candidates); i++ {
		if dist := Distance(p, candidates[i]); dist < minDist {
			minDist = dist
			location = i
		}
	}
	return candidates[location], location
}

// OrderByNearestNeighbor chains points greedily, starting at points[start]
// and repeatedly appending the unused point nearest to the last one.
//
// This is O(n²). It is meant for a single cross-section survey (tens to a few
// hundred roughly collinear points), where greedy chaining reproduces the
// along-line order. Do not reuse it for large point clouds.
func OrderByNearestNeighbor(points []Point, start int) []Point {
	if len(points) == 0 || start < 0 || start >= len(points) {
		return nil
	}

	used := make([]bool, len(points))
	ordered := make([]Point, 0, len(points))

	current := start
	for len(ordered) < len(points) {
		used[current] = true
		ordered = append(ordered, points[current])

		last := points[current]
		next := -1
		minDist := math.Inf(1)
		for i, p := range points {
			if used[i] {
				continue
			}
			if dist := Distance(last, p); dist < minDist {
				minDist = dist
				next = i
			}
		}
		if next < 0 {
			break
		}
		current = next
	}

	return ordered
}

// MiddlePoint returns the mean position of points
func MiddlePoint(points []Point) (Point, error) {
	if len(points) == 0 {
		return Point{}, errors.New("middle point of empty point set")
	}

	var accX, accY float64
	for _, p := range points {
		accX += p.X
		accY += p.Y
	}
	n := float64(len(points))
	return NewPoint(accX/n, accY/n), nil
}
