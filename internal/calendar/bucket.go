package calendar

import (
	"sort"
	"time"

	"github.com/parishhub/eventcal/internal/store"
)

// Config pins bucketing to an explicit time zone and week-start convention.
// All day/month keys produced by this package are midnight values in Location.
type Config struct {
	Location  *time.Location
	WeekStart time.Weekday
}

func (c Config) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// DayKey truncates t to midnight of its calendar day in the configured zone.
func (c Config) DayKey(t time.Time) time.Time {
	t = t.In(c.location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.location())
}

// MonthKey truncates t to the first day of its calendar month in the
// configured zone.
func (c Config) MonthKey(t time.Time) time.Time {
	t = t.In(c.location())
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.location())
}

// AddMonths shifts a month key by delta calendar months. The result is always
// a first-of-month key, so Jan 31 style rollover skew cannot occur.
func (c Config) AddMonths(month time.Time, delta int) time.Time {
	m := c.MonthKey(month)
	return time.Date(m.Year(), m.Month()+time.Month(delta), 1, 0, 0, 0, 0, c.location())
}

// EventsOnDay returns the events whose date falls on the given calendar day,
// ordered ascending by full timestamp. Events with identical timestamps keep
// their snapshot order.
func (c Config) EventsOnDay(snapshot []store.Event, day time.Time) []store.Event {
	key := c.DayKey(day)

	var out []store.Event
	for _, ev := range snapshot {
		if c.DayKey(ev.Date).Equal(key) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// UniqueMonths returns the sorted, deduplicated month keys present in the
// snapshot. An empty snapshot yields an empty result.
func (c Config) UniqueMonths(snapshot []store.Event) []time.Time {
	seen := make(map[time.Time]struct{}, len(snapshot))
	var months []time.Time
	for _, ev := range snapshot {
		key := c.MonthKey(ev.Date)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		months = append(months, key)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	return months
}

// HasEvents reports whether at least one event falls on the given day.
func (c Config) HasEvents(snapshot []store.Event, day time.Time) bool {
	key := c.DayKey(day)
	for _, ev := range snapshot {
		if c.DayKey(ev.Date).Equal(key) {
			return true
		}
	}
	return false
}
