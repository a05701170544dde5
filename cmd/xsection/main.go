package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/riverxs/xsection/internal/config"
	"github.com/riverxs/xsection/internal/lib/projection"
	"github.com/riverxs/xsection/internal/log"
)

// app holds what the subcommands share after the root command has loaded
// the configuration
type app struct {
	configPath string
	debug      bool
	sets       []string

	cfg *config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "xsection",
		Short: "Map river cross-section surveys onto reference lines",
		Long: `xsection turns raw river cross-section surveys (lat, lon, depth rows plus
bank metadata) into station/depth profiles along a reference line, simplifies
them and exports georeferenced polylines.

Configuration is read from --config, then XSECTION_ environment variables
(XSECTION_SIMPLIFY__DIST_THRESH_PCT=10), then --set key=value flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringArrayVar(&a.sets, "set", nil, "Override a config value, e.g. --set simplify.dist_thresh_pct=10")

	root.AddCommand(
		newMapCmd(a),
		newSimplifyCmd(a),
		newInterpolateCmd(a),
		newAreaCmd(a),
		newSampleCmd(a),
		newBatchCmd(a),
	)
	return root
}

func (a *app) load() error {
	overrides, err := parseSets(a.sets)
	if err != nil {
		return err
	}
	if a.debug {
		overrides["log.debug"] = true
	}

	cfg, err := config.Load(a.configPath, overrides)
	if err != nil {
		return err
	}
	if err := log.Init(cfg.Log.Debug); err != nil {
		return err
	}

	a.cfg = cfg
	log.Debugw("Configuration loaded", "file", a.configPath, "target_epsg", cfg.Projection.TargetEPSG)
	return nil
}

func (a *app) projector() (projection.Projector, error) {
	return projection.New(a.cfg.Projection.SourceEPSG, a.cfg.Projection.TargetEPSG)
}

// parseSets turns key=value pairs into koanf overrides. Values stay strings;
// the decoder converts them to the field types.
func parseSets(sets []string) (map[string]interface{}, error) {
	overrides := make(map[string]interface{}, len(sets))
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", kv)
		}
		overrides[key] = strings.TrimSpace(value)
	}
	return overrides, nil
}
