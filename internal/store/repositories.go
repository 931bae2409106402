package store

import (
	"context"
	"time"
)

// EventRepository defines persistence operations for events.
//
// ListAll returns raw records without validating title/date; callers decide
// how to treat malformed rows. Create and DeleteByID back the admin ingest
// flow; the calendar core itself never writes.
type EventRepository interface {
	ListAll(ctx context.Context) ([]EventRecord, error)
	Create(ctx context.Context, title string, date time.Time) (*Event, error)
	DeleteByID(ctx context.Context, id string) error
}
