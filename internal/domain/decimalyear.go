package domain

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// DecimalDate is a fraction-of-year timestamp as published by NOAA sea-level
// products, e.g. 1993.0417 for mid-January 1993.
type DecimalDate struct {
	Year     int
	Fraction float64 // [0, 1)
}

// ParseDecimalYear splits v into its calendar year and fraction.
func ParseDecimalYear(v float64) (DecimalDate, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 1 {
		return DecimalDate{}, fmt.Errorf("decimal year %v: %w", v, ErrInvalidParameter)
	}
	year := math.Floor(v)
	return DecimalDate{Year: int(year), Fraction: v - year}, nil
}

// Time converts the date to a UTC instant, spreading the fraction over the
// actual length of the year.
func (d DecimalDate) Time() time.Time {
	start := time.Date(d.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	next := start.AddDate(1, 0, 0)
	return start.Add(time.Duration(d.Fraction * float64(next.Sub(start))))
}

// Observation is one dated measurement from an external source.
type Observation struct {
	Date  DecimalDate
	Value float64
}

// AnnualMeans averages observations per calendar year. The result is ordered
// by year and may contain gaps where the source has no data.
func AnnualMeans(label string, kind Kind, unit string, obs []Observation) Series {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, o := range obs {
		sums[o.Date.Year] += o.Value
		counts[o.Date.Year]++
	}

	years := make([]int, 0, len(sums))
	for y := range sums {
		years = append(years, y)
	}
	slices.Sort(years)

	pts := make([]Point, len(years))
	for i, y := range years {
		pts[i] = Point{Year: y, Value: sums[y] / float64(counts[y])}
	}
	return Series{Label: label, Kind: kind, Unit: unit, Points: pts}
}
