// Package schedule implements the itinerary temporal model: merging a
// calendar date with an optional "HH:MM" time of day into one comparable
// instant, ordering a travel's itineraries by that instant, and computing
// departure countdowns against a caller-supplied reference clock.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/fallincloud/travelog/internal/domain"
)

// Clock is a validated time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses a strict "HH:MM" string: two zero-padded digit pairs,
// hour 00-23, minute 00-59. Form input that fails here is rejected at the
// boundary; nothing downstream clamps or wraps.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return Clock{}, fmt.Errorf("malformed time of day %q", s)
	}
	for _, i := range [4]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return Clock{}, fmt.Errorf("malformed time of day %q", s)
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return Clock{}, fmt.Errorf("time of day %q out of range", s)
	}
	return Clock{Hour: h, Minute: m}, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MergeInstant combines a calendar date with an optional "HH:MM" time of day.
// The result is the date's local day at that hour and minute with seconds and
// sub-seconds zeroed. An empty or unparseable timeOfDay falls back to
// midnight so that every stored itinerary still maps to a defined instant.
// No timezone conversion happens here.
func MergeInstant(date time.Time, timeOfDay string) time.Time {
	c := Clock{}
	if timeOfDay != "" {
		if parsed, err := ParseClock(timeOfDay); err == nil {
			c = parsed
		}
	}
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, date.Location())
}

// OrderItineraries returns the itineraries sorted ascending by the merged
// instant of (TravelDate, StartTime). The sort is stable with an ID tie-break
// so equal instants keep a deterministic order. The input slice is not
// modified; ordering is recomputed on every read and never persisted.
func OrderItineraries(list []*domain.Itinerary) []*domain.Itinerary {
	ordered := make([]*domain.Itinerary, len(list))
	copy(ordered, list)
	sort.SliceStable(ordered, func(i, j int) bool {
		a := MergeInstant(ordered[i].TravelDate, ordered[i].StartTime)
		b := MergeInstant(ordered[j].TravelDate, ordered[j].StartTime)
		if a.Equal(b) {
			return ordered[i].ID < ordered[j].ID
		}
		return a.Before(b)
	})
	return ordered
}
