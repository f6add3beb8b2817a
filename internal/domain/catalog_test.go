package domain

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalCatalogYAML = `
projection_from_year: 2024
scenarios:
  baseline:  {sea_level: 1, warming: 1, projection: 1}
  worsening: {sea_level: 1.3, warming: 1.2, projection: 1.1}
  improving: {sea_level: 0.8, warming: 0.9, projection: 0.9}
series:
  - label: sea-level
    kind: sea_level
    unit: mm
    shape: cumulative
    rate_per_year: 3.05
    factor: sea_level
    noise: {mode: gaussian, sigma: 0.5}
  - label: catch/pollock
    kind: catch
    unit: kt
    shape: linear
    start: 80
    end: 5
    noise: {mode: uniform, low: 0.7, high: 1.3}
anomalies:
  - label: catch/pollock
    year: 2020
    value: 1.5
`

func TestDefaultCatalog_Valid(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, c.Validate())

	_, ok := c.Spec(SeaLevelLabel)
	assert.True(t, ok)
	assert.Len(t, c.Regions, 16)
	assert.Equal(t, c.Series[0].Label, c.Labels()[0])

	pollock, ok := c.Spec("catch/pollock-relative")
	require.True(t, ok)
	assert.Equal(t, 2015, pollock.RampFrom)
	assert.Equal(t, [2]float64{100, 10}, [2]float64{pollock.Start, pollock.End})
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog(strings.NewReader(minimalCatalogYAML))
	require.NoError(t, err)

	assert.Equal(t, 2024, c.ProjectionFromYear)
	assert.Equal(t, []string{"sea-level", "catch/pollock"}, c.Labels())
	assert.Equal(t, 1.3, c.Scenarios[Worsening].SeaLevel)

	pollock, ok := c.Spec("catch/pollock")
	require.True(t, ok)
	assert.Equal(t, NoiseUniform, pollock.Noise.Mode)
	assert.Equal(t, 0.7, pollock.Noise.Low)

	require.Len(t, c.Anomalies, 1)
	require.NotNil(t, c.Anomalies[0].Value)
	assert.Equal(t, 1.5, *c.Anomalies[0].Value)
}

func TestLoadCatalog_DefaultSurvivesEncoding(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MarshalCatalog(&buf, DefaultCatalog()))

	c, err := LoadCatalog(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog(), c)
}

func TestLoadCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name:    "unknown field",
			mutate:  func(s string) string { return s + "colour: blue\n" },
			wantErr: "colour",
		},
		{
			name:    "duplicate label",
			mutate:  func(s string) string { return strings.Replace(s, "catch/pollock\n    kind", "sea-level\n    kind", 1) },
			wantErr: "duplicate label",
		},
		{
			name:    "unknown shape",
			mutate:  func(s string) string { return strings.Replace(s, "shape: linear", "shape: zigzag", 1) },
			wantErr: "zigzag",
		},
		{
			name:    "missing scenario",
			mutate:  func(s string) string { return strings.Replace(s, "  improving: {sea_level: 0.8, warming: 0.9, projection: 0.9}\n", "", 1) },
			wantErr: "improving",
		},
		{
			name:    "anomaly on unknown label",
			mutate:  func(s string) string { return strings.Replace(s, "  - label: catch/pollock\n    year", "  - label: catch/cod\n    year", 1) },
			wantErr: "catch/cod",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog(strings.NewReader(tt.mutate(minimalCatalogYAML)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCatalogValidate_RampFrom(t *testing.T) {
	c := shapeCatalog(SeriesSpec{Label: "ramp", Kind: KindIndex, Shape: ShapeLinear, Start: 1, End: 2, RampFrom: 2015})
	require.NoError(t, c.Validate())

	c.Series[0].RatePerYear = 3
	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Contains(t, err.Error(), "ramp_from")
}

func TestCatalog_Derivations(t *testing.T) {
	assert.Equal(t, []Derivation{{Source: "catch/octopus-landings", Derived: "price/octopus"}}, DefaultCatalog().Derivations())
	assert.Empty(t, shapeCatalog(SeriesSpec{Label: "ramp", Kind: KindIndex, Shape: ShapeLinear}).Derivations())
}

func TestCatalogValidate_Reciprocal(t *testing.T) {
	c := shapeCatalog(
		SeriesSpec{Label: octopusKR, Kind: KindPrice, Shape: ShapeReciprocal, Source: octopusT, Scale: 5000},
		SeriesSpec{Label: octopusT, Kind: KindCatch, Shape: ShapeLinear, Start: 100, End: 50},
	)
	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Contains(t, err.Error(), "defined earlier")

	c.Series[0], c.Series[1] = c.Series[1], c.Series[0]
	require.NoError(t, c.Validate())

	c.Series[1].Scale = 0
	require.Error(t, c.Validate())
}

func TestParseScenario(t *testing.T) {
	for in, want := range map[string]Scenario{
		"":           Baseline,
		"baseline":   Baseline,
		"Worsening":  Worsening,
		" improving": Improving,
	} {
		got, err := ParseScenario(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseScenario("doom")
	require.ErrorIs(t, err, ErrInvalidParameter)
}
