package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/riverxs/xsection/internal/cache"
	"github.com/riverxs/xsection/internal/config"
	"github.com/riverxs/xsection/internal/export"
	"github.com/riverxs/xsection/internal/lib/geo"
	"github.com/riverxs/xsection/internal/lib/projection"
	"github.com/riverxs/xsection/internal/lib/raster"
	"github.com/riverxs/xsection/internal/lib/xsection"
	"github.com/riverxs/xsection/internal/log"
	"github.com/riverxs/xsection/internal/survey"
)

// ReportFile is written to the output directory after every batch run
const ReportFile = "report.yaml"

// trackTolerance is the Douglas-Peucker tolerance in metres for the survey
// track stored in the report
const trackTolerance = 0.5

// BatchService maps, simplifies and exports every configured cross-section.
// A failing cross-section is reported and skipped; the others still run.
type BatchService struct {
	config *config.Config
	proj   projection.Projector
	agg    xsection.Aggregation
	format export.Format
	grids  *cache.Cache[*raster.Grid]
	lines  *cache.Cache[geo.Line]
}

// Report summarises a batch run
type Report struct {
	GeneratedAt   time.Time    `yaml:"generated_at"`
	TargetEPSG    int          `yaml:"target_epsg"`
	Processed     int          `yaml:"processed"`
	Failed        int          `yaml:"failed"`
	CrossSections []ItemResult `yaml:"cross_sections"`
	DEMCache      cache.Stats  `yaml:"dem_cache"`
}

// ItemResult is the outcome of one cross-section
type ItemResult struct {
	ID                 string   `yaml:"id"`
	Input              string   `yaml:"input"`
	Status             string   `yaml:"status"`
	Error              string   `yaml:"error,omitempty"`
	Points             int      `yaml:"points"`
	MaskedOut          int      `yaml:"masked_out,omitempty"`
	NoDataFilled       int      `yaml:"nodata_filled,omitempty"`
	Stations           int      `yaml:"stations"`
	SimplifiedStations int      `yaml:"simplified_stations,omitempty"`
	LengthM            float64  `yaml:"length_m"`
	ExtentM            float64  `yaml:"survey_extent_m"`
	AreaM2             float64  `yaml:"area_m2"`
	CentreLat          float64  `yaml:"centre_lat"`
	CentreLon          float64  `yaml:"centre_lon"`
	LeftBankElevation  *float64 `yaml:"left_bank_elevation,omitempty"`
	RightBankElevation *float64 `yaml:"right_bank_elevation,omitempty"`
	Track              string   `yaml:"track,omitempty"`
	Profile            string   `yaml:"profile,omitempty"`
	Files              []string `yaml:"files"`
}

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// NewBatchService validates the processing settings of cfg
func NewBatchService(cfg *config.Config) (*BatchService, error) {
	proj, err := projection.New(cfg.Projection.SourceEPSG, cfg.Projection.TargetEPSG)
	if err != nil {
		return nil, fmt.Errorf("failed to create projector: %w", err)
	}
	agg, err := xsection.ParseAggregation(cfg.Simplify.Stats)
	if err != nil {
		return nil, fmt.Errorf("simplify.stats: %w", err)
	}
	format, err := export.ParseFormat(cfg.Output.PolylineFormat)
	if err != nil {
		return nil, fmt.Errorf("output.polyline_format: %w", err)
	}
	if cfg.DEM.Path != "" {
		if _, err := raster.ParseStat(cfg.DEM.Stats); err != nil {
			return nil, fmt.Errorf("dem.stats: %w", err)
		}
	}

	return &BatchService{
		config: cfg,
		proj:   proj,
		agg:    agg,
		format: format,
		grids:  cache.New[*raster.Grid](),
		lines:  cache.New[geo.Line](),
	}, nil
}

// Run processes every configured cross-section in order and writes the
// report. The returned error combines all per-item failures; the report is
// returned even when it is non-nil.
func (s *BatchService) Run(ctx context.Context) (*Report, error) {
	if err := s.ensureOutputDir(); err != nil {
		return nil, err
	}

	log.Infow("Starting batch", "cross_sections", len(s.config.CrossSections), "output", s.config.Output.Dir)

	report := &Report{
		GeneratedAt: time.Now().UTC(),
		TargetEPSG:  s.config.Projection.TargetEPSG,
	}

	var errs error
	for _, cs := range s.config.CrossSections {
		if err := ctx.Err(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("batch interrupted: %w", err))
			break
		}

		result, err := s.Process(cs)
		report.Processed++
		if err != nil {
			log.Errorw("Cross-section failed", "id", result.ID, "input", cs.Input, "error", err)
			result.Status = StatusFailed
			result.Error = err.Error()
			report.Failed++
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", result.ID, err))
		} else {
			log.Infow("Cross-section done", "id", result.ID, "stations", result.Stations, "area_m2", result.AreaM2)
		}
		report.CrossSections = append(report.CrossSections, result)
	}

	report.DEMCache = s.grids.Stats()

	path := filepath.Join(s.config.Output.Dir, ReportFile)
	if err := WriteReport(path, report); err != nil {
		errs = multierr.Append(errs, err)
	}

	log.Infow("Batch complete", "processed", report.Processed, "failed", report.Failed, "report", path)
	return report, errs
}

// Process runs one cross-section: read, mask, map, fill no-data, simplify,
// export. The result is filled as far as processing got.
func (s *BatchService) Process(cs config.CrossSection) (ItemResult, error) {
	result := ItemResult{ID: cs.ID, Input: cs.Input, Status: StatusOK}
	if result.ID == "" {
		result.ID = strings.TrimSuffix(filepath.Base(cs.Input), filepath.Ext(cs.Input))
	}

	if err := s.ensureOutputDir(); err != nil {
		return result, err
	}

	sv, err := survey.ReadFile(cs.Input, s.proj)
	if err != nil {
		return result, err
	}
	if cs.ID != "" {
		sv.ID = cs.ID
	}
	result.ID = sv.ID
	result.Points = len(sv.Points)
	sv.BankHeight += s.config.Mapping.BankHeightOffset

	if len(cs.Mask) > 0 {
		kept := maskPolygon(cs.Mask).Mask(sv.Points)
		result.MaskedOut = len(sv.Points) - len(kept)
		sv.Points = kept
	}

	s.describeSurvey(sv, &result)

	ref, err := s.referenceLine(cs)
	if err != nil {
		return result, err
	}

	profile, err := xsection.MapToLine(sv, ref)
	if err != nil {
		return result, err
	}
	profile, result.NoDataFilled, err = s.fillNoData(profile, sv.BankHeight)
	if err != nil {
		return result, err
	}
	profile = s.limitSteps(profile)
	result.Stations = profile.Len()
	result.LengthM = ref.Length()

	mappedPath := s.outputPath(sv.ID + "_MAPPED.csv")
	if err := survey.WriteProfileFile(mappedPath, profile); err != nil {
		return result, err
	}
	result.Files = append(result.Files, mappedPath)

	final := profile
	if s.config.Simplify.Enabled {
		final, err = xsection.Simplify(profile, s.config.Simplify.DistThreshPct, s.agg)
		if err != nil {
			return result, err
		}
		result.SimplifiedStations = final.Len()

		simplifiedPath := s.outputPath(sv.ID + "_SIMPLIFIED.csv")
		if err := survey.WriteProfileFile(simplifiedPath, final); err != nil {
			return result, err
		}
		result.Files = append(result.Files, simplifiedPath)
	}

	if result.AreaM2, err = xsection.Area(final); err != nil {
		return result, err
	}

	pl, err := final.Georeference(sv.ID, ref)
	if err != nil {
		return result, err
	}
	result.Profile = pl.Encode()

	if s.config.Output.WritePolyline {
		polylinePath := s.outputPath(sv.ID + s.format.Extension())
		refLine := geo.Polyline{Name: sv.ID + "_reference", Points: []geo.Point{ref.A, ref.B}}
		if err := export.WritePolylines(polylinePath, []geo.Polyline{refLine, pl}, s.proj); err != nil {
			return result, err
		}
		result.Files = append(result.Files, polylinePath)
	}

	if s.config.DEM.Path != "" {
		s.sampleBanks(ref, &result)
	}

	return result, nil
}

// describeSurvey fills the survey centre, extent and simplified track.
// These are informational; failures are logged and skipped.
func (s *BatchService) describeSurvey(sv xsection.Survey, result *ItemResult) {
	if centre, err := geo.MiddlePoint(sv.Points); err == nil {
		if c, err := s.proj.Inverse(centre); err == nil {
			result.CentreLat, result.CentreLon = c.Latitude, c.Longitude
			log.Debugw("Survey centre", "id", sv.ID, "lat", c.Latitude, "lon", c.Longitude)
		}
	}

	coords := make([]geo.Coordinate, 0, len(sv.Points))
	for _, p := range sv.Points {
		c, err := s.proj.Inverse(p)
		if err != nil {
			log.Warnw("Cannot unproject survey point", "id", sv.ID, "error", err)
			return
		}
		coords = append(coords, c)
	}
	if extent, err := geo.Extent(coords); err == nil {
		result.ExtentM = extent
	}

	track := geo.SimplifyTrack(geo.Polyline{Name: sv.ID, Points: sv.Points}, trackTolerance)
	if len(track.Points) > 0 {
		result.Track = track.Encode()
	}
}

func (s *BatchService) referenceLine(cs config.CrossSection) (geo.Line, error) {
	if len(cs.Line) > 0 {
		return cs.ReferenceLine()
	}
	return s.lines.GetOrLoad(cs.LineFile, "line_file", func() (geo.Line, error) {
		return export.ReadLine(cs.LineFile, s.proj)
	})
}

// fillNoData interpolates over no-data depths. Mapped depths carry the bank
// height offset, so the sentinel is shifted by the same amount. The bank
// points are never no-data.
func (s *BatchService) fillNoData(p xsection.Profile, bankHeight float64) (xsection.Profile, int, error) {
	sentinel := s.config.NoData.Value + bankHeight

	var count int
	for i := 1; i < p.Len()-1; i++ {
		if geo.AlmostEqual(p.Depths[i], sentinel) {
			count++
		}
	}
	if count == 0 {
		return p, 0, nil
	}

	depths, err := xsection.InterpolateNoDataInterior(p.Depths, sentinel)
	if err != nil {
		return p, 0, err
	}
	return xsection.Profile{Stations: p.Stations, Depths: depths}, count, nil
}

// limitSteps clamps depth jumps between neighbouring stations to the
// configured limits
func (s *BatchService) limitSteps(p xsection.Profile) xsection.Profile {
	up, down := s.config.Mapping.MaxStepUp, s.config.Mapping.MaxStepDown
	if up == 0 && down == 0 {
		return p
	}
	if up == 0 {
		up = math.Inf(1)
	}
	if down == 0 {
		down = math.Inf(1)
	}
	return xsection.Profile{Stations: p.Stations, Depths: xsection.CorrectElevations(p.Depths, up, down)}
}

func (s *BatchService) sampleBanks(ref geo.Line, result *ItemResult) {
	grid, err := s.grids.GetOrLoad(s.config.DEM.Path, "dem", func() (*raster.Grid, error) {
		return raster.Open(s.config.DEM.Path)
	})
	if err != nil {
		log.Warnw("DEM unavailable", "path", s.config.DEM.Path, "error", err)
		return
	}

	st, _ := raster.ParseStat(s.config.DEM.Stats)
	sample := func(p geo.Point) *float64 {
		v, err := grid.Sample(p, s.config.DEM.Neighbours, st)
		if err != nil {
			if !errors.Is(err, raster.ErrOutOfBounds) && !errors.Is(err, raster.ErrNoData) {
				log.Warnw("DEM sample failed", "id", result.ID, "error", err)
			} else {
				log.Debugw("No DEM value at bank", "id", result.ID, "error", err)
			}
			return nil
		}
		return &v
	}

	result.LeftBankElevation = sample(ref.A)
	result.RightBankElevation = sample(ref.B)
}

func (s *BatchService) ensureOutputDir() error {
	if err := os.MkdirAll(s.config.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

func (s *BatchService) outputPath(name string) string {
	return filepath.Join(s.config.Output.Dir, name)
}

func maskPolygon(ring [][]float64) geo.Polygon {
	points := make([]geo.Point, 0, len(ring))
	for _, xy := range ring {
		if len(xy) >= 2 {
			points = append(points, geo.NewPoint(xy[0], xy[1]))
		}
	}
	return geo.NewPolygon(points)
}

// WriteReport writes r as YAML to path
func WriteReport(path string, r *Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
