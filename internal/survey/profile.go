package survey

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/riverxs/xsection/internal/lib/xsection"
)

var profileHeader = []string{"station", "depth"}

// WriteProfile writes p as a station,depth CSV with a header row
func WriteProfile(w io.Writer, p xsection.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(profileHeader); err != nil {
		return err
	}
	for i := range p.Stations {
		row := []string{
			strconv.FormatFloat(p.Stations[i], 'f', -1, 64),
			strconv.FormatFloat(p.Depths[i], 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProfileFile writes p to path, replacing any existing file
func WriteProfileFile(path string, p xsection.Profile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	if err := WriteProfile(f, p); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// ReadProfile reads a station,depth CSV as written by WriteProfile. The
// header row is optional.
func ReadProfile(r io.Reader) (xsection.Profile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var p xsection.Profile
	for row := 0; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return xsection.Profile{}, fmt.Errorf("failed to read profile: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if row == 0 && strings.EqualFold(strings.TrimSpace(record[0]), profileHeader[0]) {
			continue
		}
		if len(record) < 2 {
			return xsection.Profile{}, fmt.Errorf("line %d: want station,depth: %w", line, ErrMalformedInput)
		}

		station, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			return xsection.Profile{}, fmt.Errorf("line %d: station %q: %w", line, record[0], ErrMalformedInput)
		}
		depth, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return xsection.Profile{}, fmt.Errorf("line %d: depth %q: %w", line, record[1], ErrMalformedInput)
		}
		p.Stations = append(p.Stations, station)
		p.Depths = append(p.Depths, depth)
	}
	return p, nil
}

// ReadProfileFile reads the profile CSV at path
func ReadProfileFile(path string) (xsection.Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return xsection.Profile{}, fmt.Errorf("failed to open profile: %w", err)
	}
	defer f.Close()

	p, err := ReadProfile(f)
	if err != nil {
		return xsection.Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
