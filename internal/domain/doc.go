// Package domain synthesizes illustrative climate and fisheries time series
// and provides the filtering and smoothing helpers the dashboard needs.
//
// # Series Model
//
// Every series is a label plus one point per integer year in a [YearRange]:
//
//	sea-level             relative height (mm), random walk on a linear rise
//	catch/<species>       landings, clamped to be non-negative
//	price/<item>          price derived from catch, never clamped
//	index/<indicator>     price and youth-nutrition indices, never clamped
//
// # Shape Families
//
// A [SeriesSpec] in the [Catalog] picks one of four shapes. With t the
// position of the year in the range (0 at Start, 1 at End):
//
//	linear       start + (end-start)·t
//	oscillating  linear + amplitude·sin(2π·cycles·t)
//	cumulative   start + rate·(year-Start) + Σ N(0, σ²) up to the year
//	reciprocal   scale / source(year) + N(0, σ²)
//
// Scenario multipliers scale the deviation from the start value, so the
// baseline scenario (all factors 1) leaves the trend untouched. Years after
// [Catalog.ProjectionFromYear] are additionally scaled by the projection factor.
//
// # Noise
//
// Each label draws from its own PCG stream seeded with (seed, fnv64a(label)).
// Adding, removing, or reordering catalog entries does not perturb the values
// of the other labels, and the same seed always reproduces the same output.
//
// The cumulative shape is the only one whose variance compounds over time;
// consumers must not treat its year-to-year noise as independent.
//
// # Anomalies
//
// An [Anomaly] forces one label's value at one year after the formulas run,
// either to an absolute value or to a factor of the window minimum ending at
// that year. It is applied regardless of seed and skipped when the year lies
// outside the generated range.
package domain
