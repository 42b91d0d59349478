package usecase

import (
	"sort"
	"time"

	"SentiPull/pkg/util"
)

// DefaultFreshnessDays is the trailing window that is always re-fetched.
const DefaultFreshnessDays = 3

// MissingDays returns the required days that still need fetching, ascending.
// An existing day only counts as cached when it lies strictly before
// now - window days; more recent files are treated as incomplete.
func MissingDays(existing, required []time.Time, now time.Time, window int) []time.Time {
	cutoff := util.AddDays(now, -window)
	cached := make(map[int64]struct{}, len(existing))
	for _, d := range existing {
		d = util.DayStart(d)
		if d.Before(cutoff) {
			cached[d.Unix()] = struct{}{}
		}
	}

	seen := make(map[int64]struct{}, len(required))
	missing := make([]time.Time, 0, len(required))
	for _, d := range required {
		d = util.DayStart(d)
		if _, ok := cached[d.Unix()]; ok {
			continue
		}
		if _, dup := seen[d.Unix()]; dup {
			continue
		}
		seen[d.Unix()] = struct{}{}
		missing = append(missing, d)
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i].Before(missing[j]) })
	return missing
}
