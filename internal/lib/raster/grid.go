// Package raster reads ESRI ASCII grids (DEMs) and samples them at
// projected points.
package raster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/riverxs/xsection/internal/lib/geo"
)

var (
	// ErrOutOfBounds is returned when a point falls outside the grid extent
	ErrOutOfBounds = errors.New("point outside grid")

	// ErrNoData is returned when every sampled cell holds the no-data value
	ErrNoData = errors.New("no valid cells at point")
)

// Stat reduces the cells of a neighbourhood to one value
type Stat string

const (
	StatMin  Stat = "min"
	StatMax  Stat = "max"
	StatMean Stat = "mean"
)

// ParseStat parses "min", "max" or "mean", ignoring case
func ParseStat(s string) (Stat, error) {
	st := Stat(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatMin, StatMax, StatMean:
		return st, nil
	default:
		return "", fmt.Errorf("unknown raster statistic %q", s)
	}
}

// Grid is a north-up raster. Values are stored row-major with row 0 at the
// top (northern) edge, as in the file.
type Grid struct {
	NCols    int
	NRows    int
	XLL      float64 // x of the lower-left corner
	YLL      float64 // y of the lower-left corner
	CellSize float64
	NoData   float64
	Values   []float64
}

// Open reads an ESRI ASCII grid from path
func Open(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open grid: %w", err)
	}
	defer f.Close()

	g, err := ReadASCII(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ReadASCII parses an ESRI ASCII grid. Both the corner (xllcorner) and the
// centre (xllcenter) header forms are accepted; NODATA_value defaults to
// -9999.
func ReadASCII(r io.Reader) (*Grid, error) {
	g := &Grid{NoData: -9999}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	scanner.Split(bufio.ScanWords)

	var centred bool

	// Header keys are words; the first numeric word starts the data block.
	var pending *float64
	for scanner.Scan() {
		key := strings.ToLower(scanner.Text())
		if v, err := strconv.ParseFloat(key, 64); err == nil {
			pending = &v
			break
		}
		if !scanner.Scan() {
			return nil, fmt.Errorf("header %q has no value", key)
		}
		value, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("header %q: %w", key, err)
		}

		switch key {
		case "ncols":
			g.NCols = int(value)
		case "nrows":
			g.NRows = int(value)
		case "xllcorner":
			g.XLL = value
		case "yllcorner":
			g.YLL = value
		case "xllcenter":
			g.XLL, centred = value, true
		case "yllcenter":
			g.YLL, centred = value, true
		case "cellsize":
			g.CellSize = value
		case "nodata_value":
			g.NoData = value
		default:
			return nil, fmt.Errorf("unknown header %q", key)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read grid: %w", err)
	}

	if g.NCols <= 0 || g.NRows <= 0 || g.CellSize <= 0 {
		return nil, fmt.Errorf("invalid grid header: ncols=%d nrows=%d cellsize=%v", g.NCols, g.NRows, g.CellSize)
	}
	if centred {
		g.XLL -= g.CellSize / 2
		g.YLL -= g.CellSize / 2
	}

	n := g.NCols * g.NRows
	g.Values = make([]float64, 0, n)
	if pending != nil {
		g.Values = append(g.Values, *pending)
	}
	for len(g.Values) < n && scanner.Scan() {
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", len(g.Values), err)
		}
		g.Values = append(g.Values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read grid: %w", err)
	}
	if len(g.Values) != n {
		return nil, fmt.Errorf("grid has %d values, header declares %d", len(g.Values), n)
	}

	return g, nil
}

// Cell returns the row and column containing p
func (g *Grid) Cell(p geo.Point) (row, col int, err error) {
	col = int(math.Floor((p.X - g.XLL) / g.CellSize))
	fromBottom := int(math.Floor((p.Y - g.YLL) / g.CellSize))
	row = g.NRows - 1 - fromBottom
	if col < 0 || col >= g.NCols || row < 0 || row >= g.NRows {
		return 0, 0, fmt.Errorf("(%f, %f): %w", p.X, p.Y, ErrOutOfBounds)
	}
	return row, col, nil
}

// At returns the value at row, col. ok is false for no-data cells and
// indices outside the grid.
func (g *Grid) At(row, col int) (float64, bool) {
	if col < 0 || col >= g.NCols || row < 0 || row >= g.NRows {
		return 0, false
	}
	v := g.Values[row*g.NCols+col]
	if geo.AlmostEqual(v, g.NoData) {
		return 0, false
	}
	return v, true
}

// Sample returns the value of the cell containing p. With neighbours set the
// 3x3 block around that cell is reduced with stat instead; cells outside the
// grid and no-data cells are skipped.
func (g *Grid) Sample(p geo.Point, neighbours bool, st Stat) (float64, error) {
	row, col, err := g.Cell(p)
	if err != nil {
		return 0, err
	}

	if !neighbours {
		v, ok := g.At(row, col)
		if !ok {
			return 0, fmt.Errorf("cell (%d, %d): %w", row, col, ErrNoData)
		}
		return v, nil
	}

	values := make([]float64, 0, 9)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if v, ok := g.At(row+dr, col+dc); ok {
				values = append(values, v)
			}
		}
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("neighbourhood of (%d, %d): %w", row, col, ErrNoData)
	}

	switch st {
	case StatMin:
		return floats.Min(values), nil
	case StatMax:
		return floats.Max(values), nil
	case StatMean:
		return stat.Mean(values, nil), nil
	default:
		return 0, fmt.Errorf("unknown raster statistic %q", st)
	}
}
