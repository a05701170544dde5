// Package survey reads raw cross-section survey files and reads and writes
// station/depth profile CSVs.
package survey

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/riverxs/xsection/internal/lib/geo"
	"github.com/riverxs/xsection/internal/lib/projection"
	"github.com/riverxs/xsection/internal/lib/xsection"
)

// ErrMalformedInput is returned for missing bank metadata and short or
// unparsable rows.
var ErrMalformedInput = xsection.ErrMalformedInput

const (
	keyLeftBank   = "Dist left bank"
	keyRightBank  = "Dist right bank"
	keyBankHeight = "Min bank height"
	keyColumns    = "lat"

	// spreadsheet exports on Windows start with one
	byteOrderMark = "\ufeff"
)

// Read parses a raw survey:
//
//	Dist left bank,<float>
//	Dist right bank,<float>
//	Min bank height,<float>
//	lat,lon
//	<lat>,<lon>,<depth>
//	...
//
// Every data row is projected with proj; depth becomes the point attribute.
// The header lines may come in any order but must all be present.
func Read(r io.Reader, proj projection.Projector) (xsection.Survey, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var (
		s     xsection.Survey
		seen  = map[string]bool{}
		first = true
	)

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return xsection.Survey{}, fmt.Errorf("failed to read survey: %w", err)
		}
		if first {
			record[0] = strings.TrimPrefix(record[0], byteOrderMark)
			first = false
		}
		line, _ := cr.FieldPos(0)
		key := strings.TrimSpace(record[0])

		switch key {
		case keyLeftBank, keyRightBank, keyBankHeight:
			v, err := headerValue(record, line)
			if err != nil {
				return xsection.Survey{}, err
			}
			switch key {
			case keyLeftBank:
				s.LeftBankDist = v
			case keyRightBank:
				s.RightBankDist = v
			default:
				s.BankHeight = v
			}
			seen[key] = true
		case keyColumns:
			continue
		default:
			p, err := dataRow(record, line, proj)
			if err != nil {
				return xsection.Survey{}, err
			}
			s.Points = append(s.Points, p)
		}
	}

	for _, key := range []string{keyLeftBank, keyRightBank, keyBankHeight} {
		if !seen[key] {
			return xsection.Survey{}, fmt.Errorf("missing %q header: %w", key, ErrMalformedInput)
		}
	}
	if len(s.Points) == 0 {
		return xsection.Survey{}, fmt.Errorf("survey has no data rows: %w", ErrMalformedInput)
	}

	return s, nil
}

// ReadFile reads the survey at path. The survey ID is the file name without
// its extension.
func ReadFile(path string, proj projection.Projector) (xsection.Survey, error) {
	f, err := os.Open(path)
	if err != nil {
		return xsection.Survey{}, fmt.Errorf("failed to open survey: %w", err)
	}
	defer f.Close()

	s, err := Read(f, proj)
	if err != nil {
		return xsection.Survey{}, fmt.Errorf("%s: %w", path, err)
	}
	s.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return s, nil
}

func headerValue(record []string, line int) (float64, error) {
	if len(record) < 2 {
		return 0, fmt.Errorf("line %d: %q has no value: %w", line, record[0], ErrMalformedInput)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: %q value %q: %w", line, record[0], record[1], ErrMalformedInput)
	}
	return v, nil
}

func dataRow(record []string, line int, proj projection.Projector) (geo.Point, error) {
	if len(record) < 3 {
		return geo.Point{}, fmt.Errorf("line %d: want lat,lon,depth, got %d fields: %w", line, len(record), ErrMalformedInput)
	}

	var values [3]float64
	for i, name := range []string{"lat", "lon", "depth"} {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
		if err != nil {
			return geo.Point{}, fmt.Errorf("line %d: %s %q: %w", line, name, record[i], ErrMalformedInput)
		}
		values[i] = v
	}

	p, err := proj.Project(geo.Coordinate{Latitude: values[0], Longitude: values[1]})
	if err != nil {
		return geo.Point{}, fmt.Errorf("line %d: %w", line, err)
	}
	return p.WithAttr(values[2]), nil
}
