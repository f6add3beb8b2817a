package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sixPointSeries() Series {
	return Series{
		Label: "catch/test",
		Kind:  KindCatch,
		Unit:  "kt",
		Points: []Point{
			{Year: 2010, Value: 1},
			{Year: 2011, Value: 2},
			{Year: 2012, Value: 3},
			{Year: 2013, Value: 4},
			{Year: 2014, Value: 5},
			{Year: 2015, Value: 6},
		},
	}
}

func TestFilterByYearRange(t *testing.T) {
	s := sixPointSeries()

	t.Run("inner range", func(t *testing.T) {
		got := FilterByYearRange(s, YearRange{Start: 2012, End: 2013})
		assert.Equal(t, []Point{{Year: 2012, Value: 3}, {Year: 2013, Value: 4}}, got.Points)
		assert.Equal(t, s.Label, got.Label)
		assert.Equal(t, s.Unit, got.Unit)
	})

	t.Run("full range is identity", func(t *testing.T) {
		assert.Equal(t, s, FilterByYearRange(s, YearRange{Start: 2010, End: 2015}))
	})

	t.Run("wider range is identity", func(t *testing.T) {
		assert.Equal(t, s.Points, FilterByYearRange(s, YearRange{Start: 1900, End: 2100}).Points)
	})

	t.Run("no overlap is empty but not an error", func(t *testing.T) {
		got := FilterByYearRange(s, YearRange{Start: 2020, End: 2030})
		assert.Empty(t, got.Points)
		assert.Equal(t, s.Label, got.Label)
	})

	t.Run("does not alias input", func(t *testing.T) {
		got := FilterByYearRange(s, YearRange{Start: 2010, End: 2015})
		got.Points[0].Value = 99
		assert.Equal(t, 1.0, s.Points[0].Value)
	})
}

func TestFilterByYearRange_SubsequenceOfGenerated(t *testing.T) {
	g := newTestGenerator(t, DefaultCatalog())
	ns, err := g.Generate(YearRange{Start: 1990, End: 2025}, Baseline, testSeed)
	require.NoError(t, err)

	r := YearRange{Start: 2001, End: 2017}
	for label, s := range ns {
		got := FilterByYearRange(s, r)
		require.Len(t, got.Points, r.Years(), label)
		for i, p := range got.Points {
			assert.Equal(t, s.Points[p.Year-1990], p, label)
			if i > 0 {
				assert.Greater(t, p.Year, got.Points[i-1].Year)
			}
		}
	}
}

func TestMovingAverage(t *testing.T) {
	s := sixPointSeries()

	t.Run("window 1 is identity", func(t *testing.T) {
		got, err := MovingAverage(s, 1)
		require.NoError(t, err)
		assert.Equal(t, s.Values(), got.Values())
		assert.Equal(t, s.Years(), got.Years())
	})

	t.Run("partial windows at the start", func(t *testing.T) {
		got, err := MovingAverage(s, 3)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 1.5, 2, 3, 4, 5}, got.Values())
	})

	t.Run("window wider than series", func(t *testing.T) {
		got, err := MovingAverage(s, 50)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 1.5, 2, 2.5, 3, 3.5}, got.Values())
	})

	t.Run("length and alignment preserved", func(t *testing.T) {
		for w := 1; w <= 10; w++ {
			got, err := MovingAverage(s, w)
			require.NoError(t, err)
			assert.Equal(t, s.Years(), got.Years(), "window %d", w)
		}
	})

	t.Run("empty series", func(t *testing.T) {
		got, err := MovingAverage(Series{Label: "empty"}, 3)
		require.NoError(t, err)
		assert.Empty(t, got.Points)
	})

	for _, w := range []int{0, -1} {
		_, err := MovingAverage(s, w)
		require.ErrorIs(t, err, ErrInvalidParameter)
	}
}

func TestLinearTrend(t *testing.T) {
	t.Run("recovers exact line", func(t *testing.T) {
		s := Series{Label: "line"}
		for y := 2000; y <= 2020; y++ {
			s.Points = append(s.Points, Point{Year: y, Value: 2.5*float64(y) - 4000})
		}
		tr, err := LinearTrend(s)
		require.NoError(t, err)
		assert.InDelta(t, 2.5, tr.Slope, 1e-9)
		assert.InDelta(t, -4000, tr.Intercept, 1e-6)
		assert.InDelta(t, 2.5*2030-4000, tr.At(2030), 1e-6)
	})

	t.Run("recovers generated ramp without jitter", func(t *testing.T) {
		c := shapeCatalog(SeriesSpec{Label: "ramp", Kind: KindIndex, Shape: ShapeLinear, Start: 10, End: 20})
		ns, err := newTestGenerator(t, c).Generate(YearRange{Start: 2000, End: 2010}, Baseline, testSeed)
		require.NoError(t, err)

		tr, err := LinearTrend(ns["ramp"])
		require.NoError(t, err)
		assert.InDelta(t, 1.0, tr.Slope, 1e-9)
		assert.InDelta(t, -1990, tr.Intercept, 1e-6)
	})

	t.Run("two points", func(t *testing.T) {
		tr, err := LinearTrend(Series{Points: []Point{{Year: 2000, Value: 1}, {Year: 2002, Value: 5}}})
		require.NoError(t, err)
		assert.InDelta(t, 2.0, tr.Slope, 1e-9)
	})

	t.Run("fitted series", func(t *testing.T) {
		s := sixPointSeries()
		tr, err := LinearTrend(s)
		require.NoError(t, err)
		fitted := tr.Fitted(s)
		assert.Equal(t, "catch/test trend", fitted.Label)
		assert.Equal(t, s.Years(), fitted.Years())
		for i, v := range fitted.Values() {
			assert.InDelta(t, s.Points[i].Value, v, 1e-9)
		}
	})

	for _, n := range []int{0, 1} {
		s := sixPointSeries()
		s.Points = s.Points[:n]
		_, err := LinearTrend(s)
		require.ErrorIs(t, err, ErrInsufficientData)
	}
}

func TestSpliceObserved(t *testing.T) {
	base := Series{Label: SeaLevelLabel, Kind: KindSeaLevel, Unit: "mm"}
	for y := 1990; y <= 1995; y++ {
		base.Points = append(base.Points, Point{Year: y, Value: float64(y - 1990)})
	}
	observed := Series{Points: []Point{
		{Year: 1993, Value: 100},
		{Year: 1994, Value: 110},
		{Year: 1995, Value: 105},
		{Year: 1997, Value: 120},
	}}

	got, n := SpliceObserved(base, observed)
	assert.Equal(t, 3, n)
	assert.Equal(t, base.Years(), got.Years())
	assert.Equal(t, []float64{0, 1, 2, 3, 13, 8}, got.Values())
	assert.Equal(t, base.Points[3].Value, got.Points[3].Value, "first shared year keeps the synthetic height")
	assert.Equal(t, 5.0, base.Points[5].Value, "base must not be modified")

	_, n = SpliceObserved(base, Series{Points: []Point{{Year: 2050, Value: 1}}})
	assert.Zero(t, n)
}

func TestNamedSeries_Select(t *testing.T) {
	ns := NamedSeries{
		"a": {Label: "a"},
		"b": {Label: "b"},
	}

	got, err := ns.Select([]string{"b", "a"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Label)

	_, err = ns.Select([]string{"a", "zzz"})
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Contains(t, err.Error(), "zzz")
}

func TestYearRange(t *testing.T) {
	assert.NoError(t, YearRange{Start: 2000, End: 2000}.Validate())
	assert.ErrorIs(t, YearRange{Start: 2000, End: 1999}.Validate(), ErrInvalidRange)
	assert.Equal(t, 6, YearRange{Start: 2010, End: 2015}.Years())
	assert.Zero(t, YearRange{Start: 2010, End: 2000}.Years())
	assert.True(t, YearRange{Start: 2010, End: 2015}.Contains(2015))
	assert.False(t, YearRange{Start: 2010, End: 2015}.Contains(2016))
}

func TestYearRange_SpanLimits(t *testing.T) {
	assert.NoError(t, YearRange{Start: 1, End: MaxYears}.Validate())
	assert.ErrorIs(t, YearRange{Start: 0, End: MaxYears}.Validate(), ErrInvalidRange)

	r := YearRange{Start: 1990, End: 2089}
	assert.NoError(t, r.ValidateSpan(100))
	assert.ErrorIs(t, r.ValidateSpan(99), ErrInvalidRange)
	assert.NoError(t, r.ValidateSpan(0), "non-positive limit falls back to MaxYears")

	huge := YearRange{Start: math.MinInt64 / 2, End: math.MaxInt64/2 + 10}
	assert.ErrorIs(t, huge.Validate(), ErrInvalidRange)
	assert.Zero(t, huge.Years())
	assert.Zero(t, YearRange{Start: math.MinInt, End: math.MaxInt}.Years())
	assert.Equal(t, 1, YearRange{Start: math.MaxInt, End: math.MaxInt}.Years())
}
