package domain

import "github.com/jonboulle/clockwork"

// yearClock decides "this year" for open-ended ranges. Tests pin it with SetClock.
var yearClock = clockwork.NewRealClock()

// SetClock replaces the clock behind CurrentYear. nil restores the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	yearClock = c
}

// CurrentYear is the UTC calendar year today. It is the default end of the
// generation range when SERIES_END_YEAR is unset.
func CurrentYear() int {
	return yearClock.Now().UTC().Year()
}
