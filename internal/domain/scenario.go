package domain

import (
	"fmt"
	"strings"
)

// Scenario names a climate-outcome trajectory.
type Scenario string

const (
	Baseline  Scenario = "baseline"
	Worsening Scenario = "worsening"
	Improving Scenario = "improving"
)

// Scenarios lists every known scenario in display order.
func Scenarios() []Scenario {
	return []Scenario{Baseline, Worsening, Improving}
}

// ParseScenario accepts a scenario name case-insensitively. An empty string
// selects Baseline.
func ParseScenario(s string) (Scenario, error) {
	switch Scenario(strings.ToLower(strings.TrimSpace(s))) {
	case "", Baseline:
		return Baseline, nil
	case Worsening:
		return Worsening, nil
	case Improving:
		return Improving, nil
	default:
		return "", fmt.Errorf("%w: unknown scenario %q", ErrInvalidParameter, s)
	}
}

// Multipliers is the factor triple a scenario applies to generated trends.
type Multipliers struct {
	SeaLevel   float64 `json:"sea_level" yaml:"sea_level"`
	Warming    float64 `json:"warming" yaml:"warming"`
	Projection float64 `json:"projection" yaml:"projection"`
}

// Factor selects which scenario multiplier scales a series.
type Factor string

const (
	FactorNone     Factor = "none"
	FactorSeaLevel Factor = "sea_level"
	FactorWarming  Factor = "warming"
)

func (f Factor) valid() bool {
	switch f {
	case "", FactorNone, FactorSeaLevel, FactorWarming:
		return true
	default:
		return false
	}
}

func (m Multipliers) factor(f Factor) float64 {
	switch f {
	case FactorSeaLevel:
		return m.SeaLevel
	case FactorWarming:
		return m.Warming
	default:
		return 1
	}
}
