package view

import (
	"sync"
	"time"

	"github.com/parishhub/eventcal/internal/calendar"
	"github.com/parishhub/eventcal/internal/eventstore"
	"github.com/parishhub/eventcal/internal/store"
)

// DayGroup is one row of the grouped list: a calendar day and its events in
// ascending time order.
type DayGroup struct {
	Day    time.Time
	Events []store.Event
}

// MonthSection is one section of the grouped list mode.
type MonthSection struct {
	Month time.Time
	Title string // "January 2006" style header
	Days  []DayGroup
	// Empty marks a month present in the snapshot's table of contents but
	// carrying no day rows; renderers show an explicit "no events coming"
	// placeholder instead of omitting the section.
	Empty bool
}

// Presenter composes the event store with the bucketing and grid logic into
// the two rendering modes: a navigable month grid and a grouped-by-month
// list. The displayed month is the only state it owns; it starts at the month
// containing now, captured once at construction.
type Presenter struct {
	events *eventstore.Store
	cfg    calendar.Config

	mu    sync.Mutex
	month time.Time
}

func NewPresenter(events *eventstore.Store, cfg calendar.Config, now time.Time) *Presenter {
	return &Presenter{
		events: events,
		cfg:    cfg,
		month:  cfg.MonthKey(now),
	}
}

// Month returns the currently displayed month key.
func (p *Presenter) Month() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.month
}

// GoToPreviousMonth shifts the displayed month back by one calendar month and
// returns the new month key.
func (p *Presenter) GoToPreviousMonth() time.Time {
	return p.shift(-1)
}

// GoToNextMonth shifts the displayed month forward by one calendar month and
// returns the new month key.
func (p *Presenter) GoToNextMonth() time.Time {
	return p.shift(1)
}

func (p *Presenter) shift(delta int) time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.month = p.cfg.AddMonths(p.month, delta)
	return p.month
}

// GridCells returns the month-grid cells for the displayed month over the
// current snapshot. An empty snapshot still yields a full set of day cells.
func (p *Presenter) GridCells() []calendar.Cell {
	return p.cfg.GridCells(p.events.Snapshot(), p.Month())
}

// EventsOnDay returns the events on the given day in the current snapshot.
func (p *Presenter) EventsOnDay(day time.Time) []store.Event {
	return p.cfg.EventsOnDay(p.events.Snapshot(), day)
}

// MonthSections returns the grouped-list mode: one section per month present
// in the snapshot, ascending, each holding one DayGroup per day with events.
func (p *Presenter) MonthSections() []MonthSection {
	snapshot := p.events.Snapshot()

	var sections []MonthSection
	for _, month := range p.cfg.UniqueMonths(snapshot) {
		section := MonthSection{
			Month: month,
			Title: month.Format("January 2006"),
		}
		for _, day := range p.cfg.DaysInMonth(month) {
			events := p.cfg.EventsOnDay(snapshot, day)
			if len(events) == 0 {
				continue
			}
			section.Days = append(section.Days, DayGroup{Day: day, Events: events})
		}
		section.Empty = len(section.Days) == 0
		sections = append(sections, section)
	}
	return sections
}
