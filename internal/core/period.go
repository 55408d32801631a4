package core

import (
	"fmt"
	"time"
)

// PeriodAll is the token that selects the unbounded "all time" period.
const PeriodAll = "all"

// Period is an inclusive [Start, End] range, or all time when All is set.
// Periods are derived from a token on every request and never persisted.
type Period struct {
	Start time.Time
	End   time.Time
	All   bool
}

// ParsePeriod resolves a period token into a concrete range. The token is
// either "all" or a "YYYY-MM" calendar month; a month resolves to its first
// instant through its last instant, inclusive.
func ParsePeriod(token string) (Period, error) {
	if token == PeriodAll {
		return Period{All: true}, nil
	}
	t, err := time.Parse("2006-01", token)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, token)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return Period{Start: start, End: end}, nil
}

// Contains reports whether the instant falls inside the period. Both ends
// are inclusive.
func (p Period) Contains(t time.Time) bool {
	if p.All {
		return true
	}
	return !t.Before(p.Start) && !t.After(p.End)
}

// Token renders the period back into its token form, mostly for logging.
func (p Period) Token() string {
	if p.All {
		return PeriodAll
	}
	return p.Start.Format("2006-01")
}
