package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/riverxs/xsection/internal/lib/geo"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore, e.g. XSECTION_SIMPLIFY__DIST_THRESH_PCT=10.
const EnvPrefix = "XSECTION_"

// Config represents the complete tool configuration
type Config struct {
	Projection    ProjectionConfig `yaml:"projection"`
	Mapping       MappingConfig    `yaml:"mapping"`
	Simplify      SimplifyConfig   `yaml:"simplify"`
	NoData        NoDataConfig     `yaml:"nodata"`
	Output        OutputConfig     `yaml:"output"`
	DEM           DEMConfig        `yaml:"dem"`
	CrossSections []CrossSection   `yaml:"cross_sections"`
	Log           LogConfig        `yaml:"log"`
}

// ProjectionConfig holds the source and target EPSG codes
type ProjectionConfig struct {
	SourceEPSG int `yaml:"source_epsg"`
	TargetEPSG int `yaml:"target_epsg"`
}

// MappingConfig holds point-to-line mapping settings
type MappingConfig struct {
	// BankHeightOffset is added to every survey's own bank height
	BankHeightOffset float64 `yaml:"bank_height_offset"`

	// MaxStepUp and MaxStepDown limit the depth change between consecutive
	// profile points. Zero leaves that direction unlimited.
	MaxStepUp   float64 `yaml:"max_step_up"`
	MaxStepDown float64 `yaml:"max_step_down"`
}

// SimplifyConfig holds simplifier settings
type SimplifyConfig struct {
	Enabled       bool    `yaml:"enabled"`
	DistThreshPct float64 `yaml:"dist_thresh_pct"`
	Stats         string  `yaml:"stats"`
}

// NoDataConfig holds the no-data sentinel
type NoDataConfig struct {
	Value float64 `yaml:"value"`
}

// OutputConfig holds output locations and formats
type OutputConfig struct {
	Dir            string `yaml:"dir"`
	PolylineFormat string `yaml:"polyline_format"`
	WritePolyline  bool   `yaml:"write_polyline"`
}

// DEMConfig points at an optional ESRI ASCII DEM used for bank elevations
type DEMConfig struct {
	Path       string `yaml:"path"`
	Neighbours bool   `yaml:"neighbours"`
	Stats      string `yaml:"stats"`
}

// CrossSection is one survey to process. The reference line is given either
// inline in target CRS coordinates or as a GeoJSON file in WGS84. Mask is an
// optional polygon ring in target CRS coordinates; survey points outside it
// are dropped.
type CrossSection struct {
	ID       string      `yaml:"id"`
	Input    string      `yaml:"input"`
	Line     [][]float64 `yaml:"line"`
	LineFile string      `yaml:"line_file"`
	Mask     [][]float64 `yaml:"mask"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Debug bool `yaml:"debug"`
}

// ReferenceLine converts the inline line to a geo.Line
func (cs CrossSection) ReferenceLine() (geo.Line, error) {
	if len(cs.Line) != 2 || len(cs.Line[0]) != 2 || len(cs.Line[1]) != 2 {
		return geo.Line{}, fmt.Errorf("cross section %q: line must be [[x, y], [x, y]]", cs.ID)
	}
	return geo.NewLine(
		geo.NewPoint(cs.Line[0][0], cs.Line[0][1]),
		geo.NewPoint(cs.Line[1][0], cs.Line[1][1]),
	), nil
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Projection: ProjectionConfig{
			SourceEPSG: 4326,
			TargetEPSG: 32636,
		},
		Simplify: SimplifyConfig{
			Enabled:       true,
			DistThreshPct: 5,
			Stats:         "max", // sonar readings: deepest value is the bed
		},
		NoData: NoDataConfig{
			Value: -9999,
		},
		Output: OutputConfig{
			Dir:            ".",
			PolylineFormat: "kml",
			WritePolyline:  true,
		},
		DEM: DEMConfig{
			Neighbours: true,
			Stats:      "min",
		},
	}
}

// Load builds the configuration from the defaults, then the YAML file at
// path (skipped when empty), then XSECTION_ environment variables, then
// overrides keyed by dotted path (e.g. "simplify.enabled").
func Load(path string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to apply overrides: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be caught by decoding
func (c *Config) Validate() error {
	if c.Simplify.DistThreshPct < 0 {
		return fmt.Errorf("simplify.dist_thresh_pct must not be negative, got %v", c.Simplify.DistThreshPct)
	}
	if c.Mapping.MaxStepUp < 0 || c.Mapping.MaxStepDown < 0 {
		return fmt.Errorf("mapping.max_step_up and max_step_down must not be negative")
	}
	switch strings.ToLower(c.Output.PolylineFormat) {
	case "kml", "geojson":
	default:
		return fmt.Errorf("output.polyline_format must be kml or geojson, got %q", c.Output.PolylineFormat)
	}
	seen := make(map[string]bool, len(c.CrossSections))
	for i, cs := range c.CrossSections {
		if cs.Input == "" {
			return fmt.Errorf("cross_sections[%d]: input is required", i)
		}
		if len(cs.Line) == 0 && cs.LineFile == "" {
			return fmt.Errorf("cross_sections[%d]: line or line_file is required", i)
		}
		if cs.ID != "" {
			if seen[cs.ID] {
				return fmt.Errorf("cross_sections[%d]: duplicate id %q", i, cs.ID)
			}
			seen[cs.ID] = true
		}
	}
	return nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
