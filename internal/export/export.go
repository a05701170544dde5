// Package export writes georeferenced cross-section polylines to KML or
// GeoJSON and reads reference lines back from GeoJSON.
package export

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-kml"

	"github.com/riverxs/xsection/internal/lib/geo"
	"github.com/riverxs/xsection/internal/lib/projection"
)

// Format is an output file format
type Format string

const (
	FormatKML     Format = "kml"
	FormatGeoJSON Format = "geojson"
)

// ErrUnsupportedFormat is returned for file extensions other than .kml,
// .geojson and .json
var ErrUnsupportedFormat = errors.New("unsupported polyline format")

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kml":
		return FormatKML, nil
	case ".geojson", ".json":
		return FormatGeoJSON, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// ParseFormat parses "kml" or "geojson", ignoring case
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatKML, FormatGeoJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnsupportedFormat)
	}
}

// Extension returns the file extension for f, dot included
func (f Format) Extension() string {
	if f == FormatKML {
		return ".kml"
	}
	return ".geojson"
}

// WritePolylines writes lines to path in the format given by its extension.
// Points are in projected coordinates and are converted back to latitude and
// longitude with proj; depths are stored as attributes.
func WritePolylines(path string, lines []geo.Polyline, proj projection.Projector) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch format {
	case FormatKML:
		err = WriteKML(f, name, lines, proj)
	default:
		err = WriteGeoJSON(f, lines, proj)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// WriteKML writes lines as one KML document with a placemark per polyline
func WriteKML(w io.Writer, name string, lines []geo.Polyline, proj projection.Projector) error {
	doc := kml.Document(kml.Name(name))

	for _, pl := range lines {
		coords, err := geographic(pl, proj)
		if err != nil {
			return err
		}

		kcoords := make([]kml.Coordinate, len(coords))
		for i, c := range coords {
			kcoords[i] = kml.Coordinate{Lon: c.Longitude, Lat: c.Latitude}
		}

		doc.Add(kml.Placemark(
			kml.Name(pl.Name),
			kml.ExtendedData(
				kmlData("length_m", strconv.FormatFloat(pl.Length(), 'f', 2, 64)),
				kmlData("depths", joinFloats(attrs(pl))),
				kmlData("encoded", pl.Encode()),
			),
			kml.LineString(
				kml.Tessellate(true),
				kml.Coordinates(kcoords...),
			),
		))
	}

	return kml.KML(doc).WriteIndent(w, "", "  ")
}

// WriteGeoJSON writes lines as a FeatureCollection of LineStrings
func WriteGeoJSON(w io.Writer, lines []geo.Polyline, proj projection.Projector) error {
	fc := geojson.NewFeatureCollection()

	for _, pl := range lines {
		coords, err := geographic(pl, proj)
		if err != nil {
			return err
		}

		ls := make(orb.LineString, len(coords))
		for i, c := range coords {
			ls[i] = orb.Point{c.Longitude, c.Latitude}
		}

		feature := geojson.NewFeature(ls)
		feature.Properties["name"] = pl.Name
		feature.Properties["length_m"] = pl.Length()
		feature.Properties["depths"] = attrs(pl)
		fc.Append(feature)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal feature collection: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ReadLine reads a reference line from a GeoJSON file. The first LineString
// feature is used; its first and last vertices are projected with proj.
func ReadLine(path string, proj projection.Projector) (geo.Line, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return geo.Line{}, fmt.Errorf("failed to read reference line: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return geo.Line{}, fmt.Errorf("%s: %w", path, err)
	}

	for _, feature := range fc.Features {
		ls, ok := feature.Geometry.(orb.LineString)
		if !ok || len(ls) < 2 {
			continue
		}

		a, err := proj.Project(geo.Coordinate{Latitude: ls[0].Lat(), Longitude: ls[0].Lon()})
		if err != nil {
			return geo.Line{}, fmt.Errorf("%s: %w", path, err)
		}
		last := ls[len(ls)-1]
		b, err := proj.Project(geo.Coordinate{Latitude: last.Lat(), Longitude: last.Lon()})
		if err != nil {
			return geo.Line{}, fmt.Errorf("%s: %w", path, err)
		}
		return geo.NewLine(a, b), nil
	}

	return geo.Line{}, fmt.Errorf("%s: no LineString feature with two or more vertices", path)
}

func geographic(pl geo.Polyline, proj projection.Projector) ([]geo.Coordinate, error) {
	coords := make([]geo.Coordinate, len(pl.Points))
	for i, p := range pl.Points {
		c, err := proj.Inverse(p)
		if err != nil {
			return nil, fmt.Errorf("polyline %s point %d: %w", pl.Name, i, err)
		}
		coords[i] = c
	}
	return coords, nil
}

func kmlData(name, value string) *kml.CompoundElement {
	d := kml.Data(kml.Value(value))
	d.Attr = append(d.Attr, xml.Attr{Name: xml.Name{Local: "name"}, Value: name})
	return d
}

func attrs(pl geo.Polyline) []float64 {
	out := make([]float64, len(pl.Points))
	for i, p := range pl.Points {
		out[i] = p.Attr
	}
	return out
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}
