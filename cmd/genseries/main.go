// Command genseries generates synthetic ocean series from the command line and
// writes them as CSV, XLSX, PNG, or HTML, publishes them to Kafka, or checks a
// previously exported CSV against a fresh generation.
//
// Usage:
//
//	go run ./cmd/genseries csv --scenario worsening --seed 7 --out series.csv
//	go run ./cmd/genseries verify --scenario worsening --seed 7 --in series.csv
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/ocean-series-service/internal/cache"
	"github.com/couchcryptid/ocean-series-service/internal/config"
	"github.com/couchcryptid/ocean-series-service/internal/dashboard"
	"github.com/couchcryptid/ocean-series-service/internal/domain"
	"github.com/couchcryptid/ocean-series-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// flags shared by every subcommand.
var (
	startYear   int
	endYear     int
	scenario    string
	seed        uint64
	labels      []string
	window      int
	withTrend   bool
	catalogPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "genseries",
	Short: "Generate synthetic sea level and fisheries series",
	Long: `genseries produces the same deterministic series as the dashboard service.
Defaults come from the service environment (SERIES_START_YEAR, SERIES_SEED, ...);
flags override them.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&startYear, "start", 0, "first year (default SERIES_START_YEAR)")
	pf.IntVar(&endYear, "end", 0, "last year (default SERIES_END_YEAR)")
	pf.StringVar(&scenario, "scenario", "", "baseline, worsening or improving (default SERIES_SCENARIO)")
	pf.Uint64Var(&seed, "seed", 0, "random seed (default SERIES_SEED)")
	pf.StringSliceVarP(&labels, "label", "l", nil, "series labels to include (default all)")
	pf.IntVar(&window, "window", 0, "trailing moving average window, 0 or 1 for raw values")
	pf.BoolVar(&withTrend, "trend", false, "fit a linear trend per series")
	pf.StringVar(&catalogPath, "catalog", "", "YAML catalog file (default CATALOG_PATH or built-in)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(csvCmd, xlsxCmd, pngCmd, htmlCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(verifyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// env bundles what a subcommand needs to build views.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	svc     *dashboard.Service
	catalog domain.Catalog
}

// setup loads configuration and builds a synthetic-only dashboard service.
// Observed sea level is never spliced in so output stays reproducible.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("catalog") {
		cfg.CatalogPath = catalogPath
	}

	var logOut io.Writer = io.Discard
	if verbose {
		logOut = cmd.ErrOrStderr()
	}
	logger := slog.New(slog.NewTextHandler(logOut, nil))
	// Metrics go to a private registry; the CLI has no /metrics endpoint.
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())

	catalog, err := cfg.LoadCatalog()
	if err != nil {
		return nil, err
	}
	g, err := domain.NewGenerator(catalog)
	if err != nil {
		return nil, err
	}

	clock := clockwork.NewRealClock()
	svc := dashboard.New(g, cache.New(1, 0, clock, metrics), nil, clock, logger, metrics, dashboard.Options{
		Range:    cfg.Range(),
		Scenario: cfg.Scenario,
		Seed:     cfg.Seed,
		MaxYears: cfg.MaxYears,
	})
	return &env{cfg: cfg, logger: logger, metrics: metrics, svc: svc, catalog: catalog}, nil
}

// query overlays the flags the user set on the service defaults.
func query(cmd *cobra.Command, def dashboard.Query) (dashboard.Query, error) {
	q := def
	flags := cmd.Flags()
	if flags.Changed("start") {
		q.Range.Start = startYear
	}
	if flags.Changed("end") {
		q.Range.End = endYear
	}
	if flags.Changed("scenario") {
		s, err := domain.ParseScenario(scenario)
		if err != nil {
			return dashboard.Query{}, err
		}
		q.Scenario = s
	}
	if flags.Changed("seed") {
		q.Seed = seed
	}
	q.Labels = labels
	q.Window = window
	q.Trend = withTrend
	return q, nil
}

// buildView runs setup and builds the view selected by the flags.
func buildView(cmd *cobra.Command) (*env, dashboard.View, error) {
	e, err := setup(cmd)
	if err != nil {
		return nil, dashboard.View{}, err
	}
	q, err := query(cmd, e.svc.DefaultQuery())
	if err != nil {
		return nil, dashboard.View{}, err
	}
	v, err := e.svc.Build(cmd.Context(), q)
	if err != nil {
		return nil, dashboard.View{}, err
	}
	return e, v, nil
}
