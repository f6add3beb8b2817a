package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimalYear(t *testing.T) {
	d, err := ParseDecimalYear(1993.0417)
	require.NoError(t, err)
	assert.Equal(t, 1993, d.Year)
	assert.InDelta(t, 0.0417, d.Fraction, 1e-9)

	ts := d.Time()
	assert.Equal(t, 1993, ts.Year())
	assert.Equal(t, time.January, ts.Month())
	assert.Equal(t, 16, ts.Day())

	d, err = ParseDecimalYear(2020.5)
	require.NoError(t, err)
	// 2020 is a leap year: half of 366 days lands on 2 July 00:00.
	assert.Equal(t, time.Date(2020, time.July, 2, 0, 0, 0, 0, time.UTC), d.Time())

	for _, bad := range []float64{math.NaN(), math.Inf(1), -5, 0} {
		_, err := ParseDecimalYear(bad)
		require.ErrorIs(t, err, ErrInvalidParameter)
	}
}

func TestAnnualMeans(t *testing.T) {
	obs := []Observation{
		{Date: DecimalDate{Year: 1994, Fraction: 0.1}, Value: 10},
		{Date: DecimalDate{Year: 1993, Fraction: 0.1}, Value: 1},
		{Date: DecimalDate{Year: 1993, Fraction: 0.6}, Value: 3},
		{Date: DecimalDate{Year: 1996, Fraction: 0.2}, Value: 7},
	}

	s := AnnualMeans(SeaLevelLabel, KindSeaLevel, "mm", obs)
	assert.Equal(t, SeaLevelLabel, s.Label)
	assert.Equal(t, []Point{
		{Year: 1993, Value: 2},
		{Year: 1994, Value: 10},
		{Year: 1996, Value: 7},
	}, s.Points)

	assert.Empty(t, AnnualMeans("x", KindIndex, "", nil).Points)
}
