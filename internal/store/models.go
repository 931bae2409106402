package store

import "time"

// Event is a community event as held in memory after validation.
type Event struct {
	ID    string
	Title string
	Date  time.Time
}

// EventRecord is a raw fetched row. Title and Date are pointers because the
// upstream mobile clients historically wrote documents with missing fields;
// validation and the skip-malformed policy belong to the event store, not to
// the persistence layer.
type EventRecord struct {
	ID        string
	Title     *string
	Date      *time.Time
	CreatedAt time.Time
}
