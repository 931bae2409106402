package eventstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/parishhub/eventcal/internal/metrics"
	"github.com/parishhub/eventcal/internal/store"
)

// Fetcher is the external document-store collaborator supplying the full
// event collection.
type Fetcher interface {
	ListAll(ctx context.Context) ([]store.EventRecord, error)
}

// RefreshResult summarizes a completed refresh.
type RefreshResult struct {
	Loaded  int
	Skipped int
}

// Store owns the in-memory event snapshot. All mutation happens through
// Refresh; readers always see the last completed snapshot, never a partial
// one.
//
// Concurrent refreshes are allowed: each completes independently and the one
// that finishes last wins. This mirrors the overwrite-on-listen behavior of
// the original client and is a deliberate simplification, not strict
// freshness.
type Store struct {
	fetcher Fetcher
	log     *logrus.Entry

	mu       sync.RWMutex
	snapshot []store.Event
	closed   bool
	subs     []chan struct{}
}

func New(fetcher Fetcher, log *logrus.Entry) *Store {
	return &Store{fetcher: fetcher, log: log}
}

// Refresh fetches the full event collection and atomically replaces the
// snapshot. On fetch failure the previous snapshot is retained and the error
// returned; there is no automatic retry. Records missing a title or date are
// skipped and counted, never fatal. After Close, Refresh is a no-op.
func (s *Store) Refresh(ctx context.Context) (RefreshResult, error) {
	records, err := s.fetcher.ListAll(ctx)
	if err != nil {
		metrics.ObserveRefresh(err, 0)
		return RefreshResult{}, fmt.Errorf("fetch events: %w", err)
	}

	events := make([]store.Event, 0, len(records))
	skipped := 0
	for _, rec := range records {
		if rec.Title == nil || *rec.Title == "" || rec.Date == nil {
			skipped++
			continue
		}
		events = append(events, store.Event{ID: rec.ID, Title: *rec.Title, Date: *rec.Date})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return RefreshResult{}, nil
	}
	s.snapshot = events
	subs := make([]chan struct{}, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	if skipped > 0 {
		s.log.WithField("skipped", skipped).Warn("skipped malformed event records")
	}
	metrics.ObserveRefresh(nil, skipped)

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return RefreshResult{Loaded: len(events), Skipped: skipped}, nil
}

// Snapshot returns the event list as of the last successful refresh, sorted
// ascending by date. Callers must treat it as read-only.
func (s *Store) Snapshot() []store.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Subscribe returns a channel that receives a signal after each successful
// refresh. The channel has a buffer of one; a slow consumer coalesces
// notifications rather than blocking refresh. Subscriptions last for the
// lifetime of the store; there is no unsubscribe.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Close marks the store disposed. In-flight and subsequent refreshes no
// longer mutate the snapshot.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
