package domain

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// FilterByYearRange returns the points of s whose year lies in r, in their
// original order. No match yields an empty series, not an error.
func FilterByYearRange(s Series, r YearRange) Series {
	pts := make([]Point, 0, min(len(s.Points), r.Years()))
	for _, p := range s.Points {
		if r.Contains(p.Year) {
			pts = append(pts, p)
		}
	}
	return s.withPoints(pts)
}

// MovingAverage returns the trailing simple moving average of s. Early points
// average over the history available so far (min periods 1), so the output
// always has the same length and years as the input.
func MovingAverage(s Series, window int) (Series, error) {
	if window < 1 {
		return Series{}, fmt.Errorf("moving average window %d: %w", window, ErrInvalidParameter)
	}
	pts := make([]Point, len(s.Points))
	for i, p := range s.Points {
		from := max(0, i-window+1)
		var sum float64
		for _, q := range s.Points[from : i+1] {
			sum += q.Value
		}
		pts[i] = Point{Year: p.Year, Value: sum / float64(i+1-from)}
	}
	return s.withPoints(pts), nil
}

// Trend is an ordinary least-squares line of value against year.
type Trend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// At evaluates the fitted line at year.
func (t Trend) At(year int) float64 {
	return t.Intercept + t.Slope*float64(year)
}

// Fitted returns the line evaluated at every year of s.
func (t Trend) Fitted(s Series) Series {
	pts := make([]Point, len(s.Points))
	for i, p := range s.Points {
		pts[i] = Point{Year: p.Year, Value: t.At(p.Year)}
	}
	out := s.withPoints(pts)
	out.Label = s.Label + " trend"
	return out
}

// LinearTrend fits value = intercept + slope·year. At least 2 points are required.
func LinearTrend(s Series) (Trend, error) {
	if len(s.Points) < 2 {
		return Trend{}, fmt.Errorf("linear trend of %q with %d points: %w", s.Label, len(s.Points), ErrInsufficientData)
	}
	xs := make([]float64, len(s.Points))
	ys := make([]float64, len(s.Points))
	for i, p := range s.Points {
		xs[i] = float64(p.Year)
		ys[i] = p.Value
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Trend{Slope: beta, Intercept: alpha}, nil
}

// SpliceObserved replaces the values of base with observed values for every
// year both series cover. Observed values are shifted so they meet base at
// the first shared year, keeping the relative-height baseline of base. The
// result keeps base's years, so it stays gap-free. The second return value is
// the number of replaced points.
func SpliceObserved(base, observed Series) (Series, int) {
	out := base.Clone()
	if len(out.Points) == 0 {
		return out, 0
	}
	first := out.Points[0].Year

	var offset float64
	anchored := false
	replaced := 0
	for _, o := range observed.Points {
		idx := o.Year - first
		if idx < 0 || idx >= len(out.Points) || out.Points[idx].Year != o.Year {
			continue
		}
		if !anchored {
			offset = out.Points[idx].Value - o.Value
			anchored = true
		}
		out.Points[idx].Value = o.Value + offset
		replaced++
	}
	return out, replaced
}
