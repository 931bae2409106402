package calendar

import (
	"time"

	"github.com/parishhub/eventcal/internal/store"
)

// Cell is one position in a month grid: either a real day carrying its
// (possibly empty) events, or a blank padding cell before day 1.
type Cell struct {
	Blank  bool
	Day    time.Time
	Events []store.Event
}

// DaysInMonth returns every calendar day of the month containing t, from the
// 1st through the last day, as midnight values in the configured zone.
func (c Config) DaysInMonth(month time.Time) []time.Time {
	first := c.MonthKey(month)
	next := c.AddMonths(first, 1)

	var days []time.Time
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// GridCells lays out the month containing month as a 7-column grid: blank
// cells pad the front so day 1 lands in its weekday column under the
// configured week start, and the final row is left ragged.
func (c Config) GridCells(snapshot []store.Event, month time.Time) []Cell {
	days := c.DaysInMonth(month)
	if len(days) == 0 {
		return nil
	}

	offset := (int(days[0].Weekday()) - int(c.WeekStart) + 7) % 7
	cells := make([]Cell, 0, offset+len(days))
	for i := 0; i < offset; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for _, day := range days {
		cells = append(cells, Cell{
			Day:    day,
			Events: c.EventsOnDay(snapshot, day),
		})
	}
	return cells
}
