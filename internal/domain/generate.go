package domain

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
)

// reciprocalFloor bounds the source value of a reciprocal series from below
// so a collapsed catch does not produce an infinite price.
const reciprocalFloor = 1.0

// Generator synthesizes every series configured in a Catalog.
// It holds no mutable state and is safe for concurrent use.
type Generator struct {
	catalog Catalog
}

// NewGenerator validates the catalog and returns a generator over it.
func NewGenerator(c Catalog) (*Generator, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new generator: %w", err)
	}
	return &Generator{catalog: c}, nil
}

// Catalog returns the configuration the generator was built with.
func (g *Generator) Catalog() Catalog {
	return g.catalog
}

// Generate produces one series per catalog label covering every year in r.
// An empty scenario selects Baseline. The same (r, scenario, seed) always
// yields identical values.
func (g *Generator) Generate(r YearRange, scenario Scenario, seed uint64) (NamedSeries, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if scenario == "" {
		scenario = Baseline
	}
	m, err := g.catalog.Multipliers(scenario)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	out := make(NamedSeries, len(g.catalog.Series))
	for _, spec := range g.catalog.Series {
		rng := newStream(seed, spec.Label)
		var values []float64
		if spec.Shape == ShapeReciprocal {
			values = reciprocal(spec, out[spec.Source].Values(), rng)
		} else {
			values = g.synthesize(spec, r, m, rng)
		}
		if spec.Kind.Clamped() {
			clampNonNegative(values)
		}
		out[spec.Label] = toSeries(spec, r, values)
	}

	g.applyAnomalies(out, r)
	return out, nil
}

// synthesize evaluates the trend, oscillation and noise for one spec.
func (g *Generator) synthesize(spec SeriesSpec, r YearRange, m Multipliers, rng *rand.Rand) []float64 {
	values := make([]float64, r.Years())
	var walk float64
	for i := range values {
		year := r.Start + i
		v := g.trend(spec, r, m, year)

		if spec.Shape == ShapeOscillating {
			v += spec.Amplitude * math.Sin(2*math.Pi*spec.Cycles*r.progress(year))
		}

		switch {
		case spec.Shape == ShapeCumulative:
			if spec.Noise.Mode == NoiseGaussian {
				walk += rng.NormFloat64() * spec.Noise.Sigma
			}
			v += walk
		case spec.Noise.Mode == NoiseGaussian:
			v += rng.NormFloat64() * spec.Noise.Sigma
		case spec.Noise.Mode == NoiseUniform:
			v *= spec.Noise.Low + rng.Float64()*(spec.Noise.High-spec.Noise.Low)
		}
		values[i] = v
	}
	return values
}

// trend returns the deterministic ramp value at year. Scenario multipliers
// scale the deviation from the start value, not the value itself.
func (g *Generator) trend(spec SeriesSpec, r YearRange, m Multipliers, year int) float64 {
	var base float64
	switch {
	case spec.RatePerYear != 0:
		base = spec.Start + spec.RatePerYear*float64(year-r.Start)
	case spec.RampFrom > r.Start:
		ramp := YearRange{Start: min(spec.RampFrom, r.End), End: r.End}
		base = spec.Start
		if year >= ramp.Start {
			base += (spec.End - spec.Start) * ramp.progress(year)
		}
	default:
		base = spec.Start + (spec.End-spec.Start)*r.progress(year)
	}

	dev := (base - spec.Start) * m.factor(spec.Factor)
	if p := g.catalog.ProjectionFromYear; p > 0 && year > p {
		dev *= m.Projection
	}
	return spec.Start + dev
}

// reciprocal derives scale/source(year) plus optional Gaussian noise.
func reciprocal(spec SeriesSpec, source []float64, rng *rand.Rand) []float64 {
	values := make([]float64, len(source))
	for i, s := range source {
		v := spec.Scale / math.Max(s, reciprocalFloor)
		if spec.Noise.Mode == NoiseGaussian {
			v += rng.NormFloat64() * spec.Noise.Sigma
		}
		values[i] = v
	}
	return values
}

// applyAnomalies forces the configured one-year overrides. It runs after all
// formulas so the override survives any seed.
func (g *Generator) applyAnomalies(out NamedSeries, r YearRange) {
	for _, a := range g.catalog.Anomalies {
		s, ok := out[a.Label]
		if !ok || !r.Contains(a.Year) {
			continue
		}
		idx := a.Year - r.Start

		var forced float64
		if a.Value != nil {
			forced = *a.Value
		} else {
			from := max(a.WindowStart, r.Start)
			if a.WindowStart == 0 {
				from = a.Year
			}
			lowest := math.Inf(1)
			for _, p := range s.Points[from-r.Start : idx+1] {
				lowest = math.Min(lowest, p.Value)
			}
			forced = lowest * a.Factor
		}
		if s.Kind.Clamped() {
			forced = math.Max(forced, 0)
		}
		s.Points[idx].Value = forced
	}
}

// newStream returns the RNG for one label. Streams are keyed on the label so
// each series is independent of catalog order.
func newStream(seed uint64, label string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(label)) //nolint:errcheck // hash writes never fail
	return rand.New(rand.NewPCG(seed, h.Sum64()))
}

func clampNonNegative(values []float64) {
	for i, v := range values {
		if v < 0 {
			values[i] = 0
		}
	}
}

func toSeries(spec SeriesSpec, r YearRange, values []float64) Series {
	pts := make([]Point, len(values))
	for i, v := range values {
		pts[i] = Point{Year: r.Start + i, Value: v}
	}
	return Series{Label: spec.Label, Kind: spec.Kind, Unit: spec.Unit, Points: pts}
}
