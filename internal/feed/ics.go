// Package feed renders the event snapshot as a subscribable iCalendar feed,
// the export counterpart of the mobile app's shared church calendar.
package feed

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/parishhub/eventcal/internal/store"
)

// defaultDuration is used for the DTEND of events, which carry only a start
// timestamp in the source data.
const defaultDuration = time.Hour

// Build serializes the snapshot as a VCALENDAR. now is used for DTSTAMP so
// output is deterministic under test.
func Build(snapshot []store.Event, name string, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//" + name + "//eventcal//EN")

	for _, ev := range snapshot {
		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(now.UTC())
		ve.SetStartAt(ev.Date.UTC())
		ve.SetEndAt(ev.Date.Add(defaultDuration).UTC())
		ve.SetSummary(ev.Title)
	}
	return cal.Serialize()
}
