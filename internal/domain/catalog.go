package domain

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Shape selects the formula family used to synthesize a series.
type Shape string

const (
	ShapeLinear      Shape = "linear"
	ShapeOscillating Shape = "oscillating"
	ShapeCumulative  Shape = "cumulative"
	ShapeReciprocal  Shape = "reciprocal"
)

// NoiseMode selects how jitter is injected after the trend is computed.
type NoiseMode string

const (
	NoiseNone     NoiseMode = "none"
	NoiseGaussian NoiseMode = "gaussian" // additive N(0, σ²)
	NoiseUniform  NoiseMode = "uniform"  // multiplicative U(low, high)
)

// Noise configures per-series jitter.
type Noise struct {
	Mode  NoiseMode `json:"mode" yaml:"mode"`
	Sigma float64   `json:"sigma,omitempty" yaml:"sigma,omitempty"`
	Low   float64   `json:"low,omitempty" yaml:"low,omitempty"`
	High  float64   `json:"high,omitempty" yaml:"high,omitempty"`
}

// SeriesSpec holds the shape parameters for one label.
type SeriesSpec struct {
	Label string `json:"label" yaml:"label"`
	Kind  Kind   `json:"kind" yaml:"kind"`
	Unit  string `json:"unit" yaml:"unit"`
	Shape Shape  `json:"shape" yaml:"shape"`

	// Start and End are the ramp endpoints at the first and last year.
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`

	// RatePerYear, when non-zero, replaces the End endpoint with a fixed
	// yearly rise so the trend does not depend on the range length.
	RatePerYear float64 `json:"rate_per_year,omitempty" yaml:"rate_per_year,omitempty"`

	// RampFrom holds the value at Start until that year, then ramps to End
	// over the rest of the range. Zero ramps over the whole range.
	RampFrom int `json:"ramp_from,omitempty" yaml:"ramp_from,omitempty"`

	Amplitude float64 `json:"amplitude,omitempty" yaml:"amplitude,omitempty"`
	Cycles    float64 `json:"cycles,omitempty" yaml:"cycles,omitempty"`

	Factor Factor `json:"factor,omitempty" yaml:"factor,omitempty"`
	Noise  Noise  `json:"noise" yaml:"noise"`

	// Source and Scale parameterize the reciprocal shape.
	Source string  `json:"source,omitempty" yaml:"source,omitempty"`
	Scale  float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// Anomaly forces one label's value at one year. When Value is nil the forced
// value is Factor times the minimum over [WindowStart, Year].
type Anomaly struct {
	Label       string   `json:"label" yaml:"label"`
	Year        int      `json:"year" yaml:"year"`
	Value       *float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Factor      float64  `json:"factor,omitempty" yaml:"factor,omitempty"`
	WindowStart int      `json:"window_start,omitempty" yaml:"window_start,omitempty"`
}

// Region is one row of the regional impact table shown on the map.
type Region struct {
	Province       string  `json:"province" yaml:"province"`
	Lat            float64 `json:"lat" yaml:"lat"`
	Lon            float64 `json:"lon" yaml:"lon"`
	SeaLevelRiseCM float64 `json:"sea_level_rise_cm" yaml:"sea_level_rise_cm"`
	Impact         string  `json:"impact" yaml:"impact"`
}

// Catalog is the configuration table behind the generator.
type Catalog struct {
	// ProjectionFromYear is the last observed year; later years are scaled by
	// the scenario projection factor. Zero disables projection scaling.
	ProjectionFromYear int                      `json:"projection_from_year" yaml:"projection_from_year"`
	Scenarios          map[Scenario]Multipliers `json:"scenarios" yaml:"scenarios"`
	Series             []SeriesSpec             `json:"series" yaml:"series"`
	Anomalies          []Anomaly                `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`
	Regions            []Region                 `json:"regions,omitempty" yaml:"regions,omitempty"`
}

// LoadCatalog decodes a YAML catalog and validates it. Unknown fields are rejected.
func LoadCatalog(r io.Reader) (Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// MarshalCatalog encodes c as YAML.
func MarshalCatalog(w io.Writer, c Catalog) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}

// Labels returns the configured labels in catalog order.
func (c Catalog) Labels() []string {
	out := make([]string, len(c.Series))
	for i, s := range c.Series {
		out[i] = s.Label
	}
	return out
}

// Derivation links a derived series to the series it is computed from.
type Derivation struct {
	Source  string `json:"source"`
	Derived string `json:"derived"`
}

// Derivations lists every reciprocal series with its source, in catalog order.
func (c Catalog) Derivations() []Derivation {
	var out []Derivation
	for _, s := range c.Series {
		if s.Shape == ShapeReciprocal {
			out = append(out, Derivation{Source: s.Source, Derived: s.Label})
		}
	}
	return out
}

// Spec returns the shape parameters for label.
func (c Catalog) Spec(label string) (SeriesSpec, bool) {
	for _, s := range c.Series {
		if s.Label == label {
			return s, true
		}
	}
	return SeriesSpec{}, false
}

// Multipliers returns the factor triple for scenario.
func (c Catalog) Multipliers(s Scenario) (Multipliers, error) {
	m, ok := c.Scenarios[s]
	if !ok {
		return Multipliers{}, fmt.Errorf("%w: scenario %q not in catalog", ErrInvalidParameter, s)
	}
	return m, nil
}

// Validate checks the catalog for internal consistency.
func (c Catalog) Validate() error {
	var errs []error
	for _, s := range Scenarios() {
		if _, ok := c.Scenarios[s]; !ok {
			errs = append(errs, fmt.Errorf("scenario %q missing", s))
		}
	}
	if len(c.Series) == 0 {
		errs = append(errs, errors.New("no series configured"))
	}

	seen := make(map[string]bool, len(c.Series))
	for i, s := range c.Series {
		if err := s.validate(seen); err != nil {
			errs = append(errs, fmt.Errorf("series[%d] %q: %w", i, s.Label, err))
		}
		seen[s.Label] = true
	}

	for i, a := range c.Anomalies {
		switch {
		case !seen[a.Label]:
			errs = append(errs, fmt.Errorf("anomaly[%d]: unknown label %q", i, a.Label))
		case a.Value == nil && a.Factor <= 0:
			errs = append(errs, fmt.Errorf("anomaly[%d]: needs value or positive factor", i))
		case a.WindowStart != 0 && a.WindowStart > a.Year:
			errs = append(errs, fmt.Errorf("anomaly[%d]: window_start %d after year %d", i, a.WindowStart, a.Year))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, errors.Join(errs...))
	}
	return nil
}

// validate checks one spec. seen holds the labels defined before it.
func (s SeriesSpec) validate(seen map[string]bool) error {
	if s.Label == "" {
		return errors.New("empty label")
	}
	if seen[s.Label] {
		return errors.New("duplicate label")
	}
	if !s.Kind.valid() {
		return fmt.Errorf("unknown kind %q", s.Kind)
	}
	if !s.Factor.valid() {
		return fmt.Errorf("unknown factor %q", s.Factor)
	}
	if s.RampFrom != 0 && (s.RatePerYear != 0 || s.Shape == ShapeReciprocal) {
		return errors.New("ramp_from needs start and end endpoints")
	}

	switch s.Noise.Mode {
	case "", NoiseNone:
	case NoiseGaussian:
		if s.Noise.Sigma < 0 {
			return errors.New("negative sigma")
		}
	case NoiseUniform:
		if s.Noise.High < s.Noise.Low {
			return errors.New("uniform noise high below low")
		}
	default:
		return fmt.Errorf("unknown noise mode %q", s.Noise.Mode)
	}

	switch s.Shape {
	case ShapeLinear, ShapeOscillating:
	case ShapeCumulative:
		if s.Noise.Mode == NoiseUniform {
			return errors.New("cumulative shape needs gaussian increments")
		}
	case ShapeReciprocal:
		if s.Source == "" || !seen[s.Source] {
			return fmt.Errorf("reciprocal source %q must be defined earlier", s.Source)
		}
		if s.Scale <= 0 {
			return errors.New("reciprocal scale must be positive")
		}
		if s.Noise.Mode == NoiseUniform {
			return errors.New("reciprocal shape supports gaussian noise only")
		}
	default:
		return fmt.Errorf("unknown shape %q", s.Shape)
	}
	return nil
}
