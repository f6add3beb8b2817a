package domain

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"strings"
)

// SeaLevelLabel is the label of the sea-level series in the default catalog.
// Observed NOAA data is spliced into the series with this label.
const SeaLevelLabel = "sea-level"

// YearRange is an inclusive span of calendar years.
type YearRange struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// MaxYears is the longest range any generator call accepts. Services may
// enforce a tighter limit with ValidateSpan.
const MaxYears = 10000

// Validate returns ErrInvalidRange when End is before Start or the range
// covers more than MaxYears years.
func (r YearRange) Validate() error {
	return r.ValidateSpan(MaxYears)
}

// ValidateSpan is Validate with a caller-chosen year limit. A limit below 1
// or above MaxYears is treated as MaxYears.
func (r YearRange) ValidateSpan(maxYears int) error {
	if r.End < r.Start {
		return fmt.Errorf("%w: end %d before start %d", ErrInvalidRange, r.End, r.Start)
	}
	if maxYears < 1 || maxYears > MaxYears {
		maxYears = MaxYears
	}
	if r.span() >= uint64(maxYears) {
		return fmt.Errorf("%w: %s covers more than %d years", ErrInvalidRange, r, maxYears)
	}
	return nil
}

// Years returns the number of years covered, or 0 for an inverted range or
// one too long to count in an int.
func (r YearRange) Years() int {
	if r.End < r.Start {
		return 0
	}
	span := r.span()
	if span >= math.MaxInt {
		return 0
	}
	return int(span) + 1
}

// span is End-Start computed without overflow. Only meaningful when
// End >= Start.
func (r YearRange) span() uint64 {
	return uint64(r.End) - uint64(r.Start)
}

// Contains reports whether year lies within the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Start && year <= r.End
}

func (r YearRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// progress maps year onto [0, 1] across the range. A single-year range
// always maps to 0.
func (r YearRange) progress(year int) float64 {
	span := r.End - r.Start
	if span == 0 {
		return 0
	}
	return float64(year-r.Start) / float64(span)
}

// Kind classifies what a series measures. It decides the clamp policy.
type Kind string

const (
	KindSeaLevel Kind = "sea_level"
	KindCatch    Kind = "catch"
	KindPrice    Kind = "price"
	KindIndex    Kind = "index"
)

// Clamped reports whether values of this kind are forced to be non-negative.
// Only physical catch quantities are clamped.
func (k Kind) Clamped() bool {
	return k == KindCatch
}

func (k Kind) valid() bool {
	switch k {
	case KindSeaLevel, KindCatch, KindPrice, KindIndex:
		return true
	default:
		return false
	}
}

// Point is one yearly observation.
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Series is an ordered, gap-free sequence of yearly points for one label.
type Series struct {
	Label  string  `json:"label"`
	Kind   Kind    `json:"kind"`
	Unit   string  `json:"unit"`
	Points []Point `json:"points"`
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Points)
}

// Values returns the point values in year order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Years returns the point years in order.
func (s Series) Years() []int {
	out := make([]int, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Year
	}
	return out
}

// At returns the value recorded for year.
func (s Series) At(year int) (float64, bool) {
	i := sort.Search(len(s.Points), func(i int) bool { return s.Points[i].Year >= year })
	if i < len(s.Points) && s.Points[i].Year == year {
		return s.Points[i].Value, true
	}
	return 0, false
}

// Clone returns a deep copy.
func (s Series) Clone() Series {
	s.Points = slices.Clone(s.Points)
	return s
}

// withPoints returns a copy of the series metadata carrying pts.
func (s Series) withPoints(pts []Point) Series {
	s.Points = pts
	return s
}

// NamedSeries maps labels to their series.
type NamedSeries map[string]Series

// Labels returns the labels in lexical order.
func (n NamedSeries) Labels() []string {
	return slices.Sorted(maps.Keys(n))
}

// Clone returns a deep copy, so the caller may mutate the result freely.
func (n NamedSeries) Clone() NamedSeries {
	out := make(NamedSeries, len(n))
	for label, s := range n {
		out[label] = s.Clone()
	}
	return out
}

// Select returns the series for labels, in the order given. An unknown label
// fails with ErrInvalidParameter.
func (n NamedSeries) Select(labels []string) ([]Series, error) {
	out := make([]Series, 0, len(labels))
	var unknown []string
	for _, label := range labels {
		s, ok := n[label]
		if !ok {
			unknown = append(unknown, label)
			continue
		}
		out = append(out, s)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unknown labels %s", ErrInvalidParameter, strings.Join(unknown, ", "))
	}
	return out, nil
}
