package store

import (
	"context"
	"fmt"
	"time"
)

// eventRepo implements EventRepository.
type eventRepo struct {
	pool PgxPool
}

func (r *eventRepo) ListAll(ctx context.Context) ([]EventRecord, error) {
	defer observeDB(ctx, "db.events.list_all")()

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, event_date, created_at FROM events ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var records []EventRecord
	for rows.Next() {
		var rec EventRecord
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Date, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return records, nil
}

func (r *eventRepo) Create(ctx context.Context, title string, date time.Time) (*Event, error) {
	defer observeDB(ctx, "db.events.create")()

	ev := Event{Title: title, Date: date}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO events (title, event_date) VALUES ($1, $2) RETURNING id`,
		title, date).Scan(&ev.ID)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &ev, nil
}

func (r *eventRepo) DeleteByID(ctx context.Context, id string) error {
	defer observeDB(ctx, "db.events.delete")()

	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
