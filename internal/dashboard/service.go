// Package dashboard turns generation requests into filtered, smoothed and
// trended views, caching generation results and splicing in observed sea
// level when a source is configured.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/ocean-series-service/internal/cache"
	"github.com/couchcryptid/ocean-series-service/internal/domain"
	"github.com/couchcryptid/ocean-series-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// SeaLevelSource supplies observed annual sea level.
type SeaLevelSource interface {
	FetchSeaLevel(ctx context.Context) (domain.Series, error)
}

// Where the sea-level series of a View came from.
const (
	SourceSynthetic = "synthetic"
	SourceObserved  = "observed"
	SourceFallback  = "fallback"
)

// Query selects what a View contains. A zero Range means the default range.
type Query struct {
	Range    domain.YearRange `json:"range"`
	Scenario domain.Scenario  `json:"scenario"`
	Seed     uint64           `json:"seed"`
	Labels   []string         `json:"labels,omitempty"`
	Window   int              `json:"window"`
	Trend    bool             `json:"trend"`
}

// View is the result of one Query.
type View struct {
	Query  Query           `json:"query"`
	Series []domain.Series `json:"series"`
	// GenerationRange is the span the series were synthesized over before
	// filtering. Values depend on it, so reproducing a view needs it too.
	GenerationRange domain.YearRange        `json:"generation_range"`
	Trends          map[string]domain.Trend `json:"trends,omitempty"`
	SeaLevelSource  string                  `json:"sea_level_source"`
	GeneratedAt     time.Time               `json:"generated_at"`
}

// Options configures a Service.
type Options struct {
	// Range is always generated; queries reaching beyond it widen generation
	// to cover both spans.
	Range    domain.YearRange
	Scenario domain.Scenario
	Seed     uint64
	// ObservedRefresh is how long a successful sea level fetch is reused.
	ObservedRefresh time.Duration
	// MaxYears bounds the generation range. Zero means domain.MaxYears.
	MaxYears int
}

// Service answers dashboard queries.
type Service struct {
	generator *domain.Generator
	cache     *cache.Cache
	seaLevel  SeaLevelSource
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options
	ready     atomic.Bool

	observedGroup singleflight.Group
	observedMu    sync.Mutex
	observed      *domain.Series
	observedAt    time.Time
}

// New creates a Service. seaLevel may be nil to serve purely synthetic data.
func New(g *domain.Generator, c *cache.Cache, seaLevel SeaLevelSource, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if opts.Scenario == "" {
		opts.Scenario = domain.Baseline
	}
	return &Service{
		generator: g,
		cache:     c,
		seaLevel:  seaLevel,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		opts:      opts,
	}
}

// DefaultQuery returns the configured defaults with no label filter,
// smoothing or trend.
func (s *Service) DefaultQuery() Query {
	return Query{Range: s.opts.Range, Scenario: s.opts.Scenario, Seed: s.opts.Seed}
}

// Labels returns every catalog label in catalog order.
func (s *Service) Labels() []string {
	return s.generator.Catalog().Labels()
}

// Regions returns the regional sea level impact table.
func (s *Service) Regions() []domain.Region {
	return s.generator.Catalog().Regions
}

// Derivations returns the catalog's derived series with their sources.
func (s *Service) Derivations() []domain.Derivation {
	return s.generator.Catalog().Derivations()
}

// Build runs q and returns the resulting view.
func (s *Service) Build(ctx context.Context, q Query) (View, error) {
	q, err := s.normalize(q)
	if err != nil {
		return View{}, err
	}

	ns, err := s.dataset(ctx, q)
	if err != nil {
		return View{}, err
	}
	source := s.spliceObserved(ctx, ns)

	labels := q.Labels
	if len(labels) == 0 {
		labels = s.Labels()
	}
	selected, err := ns.Select(labels)
	if err != nil {
		return View{}, err
	}

	view := View{
		Query:           q,
		Series:          make([]domain.Series, 0, len(selected)),
		GenerationRange: s.generationRange(q.Range),
		SeaLevelSource:  source,
		GeneratedAt:     s.clock.Now().UTC(),
	}
	if q.Trend {
		view.Trends = make(map[string]domain.Trend, len(selected))
	}

	for _, series := range selected {
		filtered := domain.FilterByYearRange(series, q.Range)
		if q.Trend {
			tr, err := domain.LinearTrend(filtered)
			switch {
			case err == nil:
				view.Trends[filtered.Label] = tr
			case errors.Is(err, domain.ErrInsufficientData):
				s.logger.Debug("trend skipped", "label", filtered.Label, "points", filtered.Len())
			default:
				return View{}, err
			}
		}
		if q.Window > 1 {
			filtered, err = domain.MovingAverage(filtered, q.Window)
			if err != nil {
				return View{}, err
			}
		}
		view.Series = append(view.Series, filtered)
	}
	return view, nil
}

// Warm builds the default view so the first request is served from cache,
// then marks the service ready.
func (s *Service) Warm(ctx context.Context) error {
	start := s.clock.Now()
	if _, err := s.Build(ctx, s.DefaultQuery()); err != nil {
		return fmt.Errorf("warm default view: %w", err)
	}
	s.ready.Store(true)
	s.metrics.ServiceReady.Set(1)
	s.logger.Info("default view ready",
		"range", s.opts.Range.String(),
		"scenario", s.opts.Scenario,
		"duration", s.clock.Since(start),
	)
	return nil
}

// CheckReadiness returns nil once Warm has succeeded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("default view has not been generated yet")
	}
	return nil
}

// Invalidate drops cached generation results and observed sea level.
func (s *Service) Invalidate() {
	s.cache.Purge()
	s.observedMu.Lock()
	s.observed = nil
	s.observedMu.Unlock()
	s.logger.Info("caches invalidated")
}

func (s *Service) normalize(q Query) (Query, error) {
	if q.Range == (domain.YearRange{}) {
		q.Range = s.opts.Range
	}
	if err := q.Range.ValidateSpan(s.opts.MaxYears); err != nil {
		return Query{}, err
	}
	if err := s.generationRange(q.Range).ValidateSpan(s.opts.MaxYears); err != nil {
		return Query{}, fmt.Errorf("generation range: %w", err)
	}
	scenario, err := domain.ParseScenario(string(q.Scenario))
	if err != nil {
		return Query{}, err
	}
	q.Scenario = scenario
	if q.Window < 0 {
		return Query{}, fmt.Errorf("%w: window %d must not be negative", domain.ErrInvalidParameter, q.Window)
	}
	return q, nil
}

// generationRange covers both the configured range and r.
func (s *Service) generationRange(r domain.YearRange) domain.YearRange {
	return domain.YearRange{
		Start: min(s.opts.Range.Start, r.Start),
		End:   max(s.opts.Range.End, r.End),
	}
}

func (s *Service) dataset(ctx context.Context, q Query) (domain.NamedSeries, error) {
	key := cache.Key{Range: s.generationRange(q.Range), Scenario: q.Scenario, Seed: q.Seed}
	return s.cache.Get(ctx, key, func() (domain.NamedSeries, error) {
		start := time.Now()
		ns, err := s.generator.Generate(key.Range, key.Scenario, key.Seed)
		if err != nil {
			s.metrics.GenerateErrors.Inc()
			return nil, err
		}
		s.metrics.GenerateDuration.Observe(time.Since(start).Seconds())
		s.metrics.SeriesGenerated.WithLabelValues(string(key.Scenario)).Inc()
		s.logger.Debug("dataset generated", "key", key.String(), "series", len(ns))
		return ns, nil
	})
}

// spliceObserved replaces synthetic sea level years with observations in
// place and reports where the sea-level series came from.
func (s *Service) spliceObserved(ctx context.Context, ns domain.NamedSeries) string {
	base, ok := ns[domain.SeaLevelLabel]
	if s.seaLevel == nil || !ok {
		return SourceSynthetic
	}

	observed, err := s.observedSeaLevel(ctx)
	if err != nil {
		s.logger.Warn("observed sea level unavailable, using synthetic series", "error", err)
		s.metrics.SeaLevelFetches.WithLabelValues("fallback").Inc()
		return SourceFallback
	}

	spliced, n := domain.SpliceObserved(base, observed)
	s.metrics.SeaLevelObserved.Set(float64(n))
	if n == 0 {
		return SourceSynthetic
	}
	ns[domain.SeaLevelLabel] = spliced
	return SourceObserved
}

// observedSeaLevel returns the last good fetch while it is fresh. A failed
// refresh falls back to the previous fetch when there is one.
func (s *Service) observedSeaLevel(ctx context.Context) (domain.Series, error) {
	s.observedMu.Lock()
	if s.observed != nil && s.clock.Since(s.observedAt) < s.opts.ObservedRefresh {
		cached := *s.observed
		s.observedMu.Unlock()
		return cached, nil
	}
	s.observedMu.Unlock()

	// The fetch is shared by every waiter, so one caller going away must not
	// cancel it. The source's own timeout still bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := s.observedGroup.Do("sea-level", func() (any, error) {
		series, err := s.seaLevel.FetchSeaLevel(fetchCtx)
		if err != nil {
			s.metrics.SeaLevelFetches.WithLabelValues("error").Inc()
			return nil, err
		}
		s.metrics.SeaLevelFetches.WithLabelValues("success").Inc()
		s.observedMu.Lock()
		s.observed = &series
		s.observedAt = s.clock.Now()
		s.observedMu.Unlock()
		return series, nil
	})
	if err != nil {
		s.observedMu.Lock()
		defer s.observedMu.Unlock()
		if s.observed != nil {
			s.logger.Warn("sea level refresh failed, reusing previous observations", "error", err)
			return *s.observed, nil
		}
		return domain.Series{}, err
	}
	return v.(domain.Series), nil
}
