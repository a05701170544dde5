package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riverxs/xsection/internal/export"
	"github.com/riverxs/xsection/internal/lib/geo"
	"github.com/riverxs/xsection/internal/lib/raster"
	"github.com/riverxs/xsection/internal/lib/xsection"
	"github.com/riverxs/xsection/internal/log"
	"github.com/riverxs/xsection/internal/services"
	"github.com/riverxs/xsection/internal/survey"
)

func newMapCmd(a *app) *cobra.Command {
	var line, lineFile, out, polyline string

	cmd := &cobra.Command{
		Use:   "map <survey.csv>",
		Short: "Map a raw survey onto a reference line",
		Long: `Project the survey rows to the target CRS, snap them onto the reference line
and write the station,depth profile. The reference line is given either with
--line x1,y1,x2,y2 in target CRS coordinates or with --line-file (GeoJSON).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := a.projector()
			if err != nil {
				return err
			}

			sv, err := survey.ReadFile(args[0], proj)
			if err != nil {
				return err
			}
			sv.BankHeight += a.cfg.Mapping.BankHeightOffset

			var ref geo.Line
			switch {
			case line != "":
				ref, err = parseLine(line)
			case lineFile != "":
				ref, err = export.ReadLine(lineFile, proj)
			default:
				err = fmt.Errorf("one of --line or --line-file is required")
			}
			if err != nil {
				return err
			}

			profile, err := xsection.MapToLine(sv, ref)
			if err != nil {
				return err
			}
			log.Infow("Mapped survey", "id", sv.ID, "points", len(sv.Points), "length_m", ref.Length())

			if polyline != "" {
				pl, err := profile.Georeference(sv.ID, ref)
				if err != nil {
					return err
				}
				if err := export.WritePolylines(polyline, []geo.Polyline{pl}, proj); err != nil {
					return err
				}
			}

			return writeProfile(cmd, out, profile)
		},
	}

	cmd.Flags().StringVar(&line, "line", "", "Reference line as x1,y1,x2,y2 in target CRS")
	cmd.Flags().StringVar(&lineFile, "line-file", "", "GeoJSON file holding the reference line")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output CSV (default stdout)")
	cmd.Flags().StringVar(&polyline, "polyline", "", "Also write the georeferenced profile (.kml or .geojson)")
	return cmd
}

func newSimplifyCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "simplify <profile.csv>",
		Short: "Group interior profile points by distance",
		Long: `Keep the first two and last two points and aggregate the interior depths
over stretches of simplify.dist_thresh_pct percent of the profile length using
simplify.stats (min, max or mean).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := survey.ReadProfileFile(args[0])
			if err != nil {
				return err
			}
			agg, err := xsection.ParseAggregation(a.cfg.Simplify.Stats)
			if err != nil {
				return err
			}

			simplified, err := xsection.Simplify(profile, a.cfg.Simplify.DistThreshPct, agg)
			if err != nil {
				return err
			}
			log.Infow("Simplified profile", "stations", profile.Len(), "kept", simplified.Len())
			return writeProfile(cmd, out, simplified)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output CSV (default stdout)")
	return cmd
}

func newInterpolateCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "interpolate <profile.csv>",
		Short: "Fill no-data depths by linear interpolation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := survey.ReadProfileFile(args[0])
			if err != nil {
				return err
			}

			depths, err := xsection.InterpolateNoData(profile.Depths, a.cfg.NoData.Value)
			if err != nil {
				return err
			}
			return writeProfile(cmd, out, xsection.Profile{Stations: profile.Stations, Depths: depths})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output CSV (default stdout)")
	return cmd
}

func newAreaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "area <profile.csv>",
		Short: "Print the cross-sectional area of a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := survey.ReadProfileFile(args[0])
			if err != nil {
				return err
			}
			area, err := xsection.Area(profile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.3f\n", area)
			return nil
		},
	}
}

func newSampleCmd(a *app) *cobra.Command {
	var demPath string

	cmd := &cobra.Command{
		Use:   "sample <x> <y>",
		Short: "Sample the DEM at a point in target CRS coordinates",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if demPath == "" {
				demPath = a.cfg.DEM.Path
			}
			if demPath == "" {
				return fmt.Errorf("no DEM: set --dem or dem.path")
			}

			x, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("x: %w", err)
			}
			y, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("y: %w", err)
			}
			st, err := raster.ParseStat(a.cfg.DEM.Stats)
			if err != nil {
				return err
			}

			grid, err := raster.Open(demPath)
			if err != nil {
				return err
			}
			v, err := grid.Sample(geo.NewPoint(x, y), a.cfg.DEM.Neighbours, st)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(v, 'f', -1, 64))
			return nil
		},
	}

	cmd.Flags().StringVar(&demPath, "dem", "", "ESRI ASCII grid (default dem.path)")
	return cmd
}

func newBatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Process every cross-section listed in the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.cfg.CrossSections) == 0 {
				return fmt.Errorf("no cross_sections configured")
			}

			svc, err := services.NewBatchService(a.cfg)
			if err != nil {
				return err
			}
			report, err := svc.Run(cmd.Context())
			if report != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%d processed, %d failed\n", report.Processed, report.Failed)
			}
			return err
		},
	}
}

func writeProfile(cmd *cobra.Command, path string, p xsection.Profile) error {
	if path == "" {
		return survey.WriteProfile(cmd.OutOrStdout(), p)
	}
	return survey.WriteProfileFile(path, p)
}

func parseLine(s string) (geo.Line, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geo.Line{}, fmt.Errorf("--line wants x1,y1,x2,y2, got %q", s)
	}

	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geo.Line{}, fmt.Errorf("--line value %d: %w", i+1, err)
		}
		v[i] = f
	}
	return geo.NewLine(geo.NewPoint(v[0], v[1]), geo.NewPoint(v[2], v[3])), nil
}
