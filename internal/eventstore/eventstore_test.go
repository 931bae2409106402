package eventstore

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/parishhub/eventcal/internal/store"
)

type fakeFetcher struct {
	records []store.EventRecord
	err     error
	calls   int
}

func (f *fakeFetcher) ListAll(ctx context.Context) ([]store.EventRecord, error) {
	f.calls++
	return f.records, f.err
}

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func TestRefreshLoadsAndSorts(t *testing.T) {
	later := time.Date(2024, time.March, 10, 18, 0, 0, 0, time.UTC)
	earlier := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{records: []store.EventRecord{
		{ID: "2", Title: strPtr("Youth Group"), Date: timePtr(later)},
		{ID: "1", Title: strPtr("Men's Breakfast"), Date: timePtr(earlier)},
	}}
	s := New(fetcher, testLogger())

	res, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Loaded != 2 || res.Skipped != 0 {
		t.Errorf("expected 2 loaded 0 skipped, got %+v", res)
	}

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected snapshot of 2, got %d", len(snap))
	}
	if snap[0].ID != "1" || snap[1].ID != "2" {
		t.Errorf("expected ascending date order [1 2], got [%s %s]", snap[0].ID, snap[1].ID)
	}
}

func TestRefreshSkipsMalformedRecords(t *testing.T) {
	date := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{records: []store.EventRecord{
		{ID: "1", Title: strPtr("Valid"), Date: timePtr(date)},
		{ID: "2", Title: nil, Date: timePtr(date)},
		{ID: "3", Title: strPtr(""), Date: timePtr(date)},
		{ID: "4", Title: strPtr("No date"), Date: nil},
	}}
	s := New(fetcher, testLogger())

	res, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Loaded != 1 || res.Skipped != 3 {
		t.Errorf("expected 1 loaded 3 skipped, got %+v", res)
	}
	if snap := s.Snapshot(); len(snap) != 1 || snap[0].ID != "1" {
		t.Errorf("expected snapshot holding only the valid record, got %v", snap)
	}
}

func TestRefreshFailureRetainsSnapshot(t *testing.T) {
	date := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{records: []store.EventRecord{
		{ID: "1", Title: strPtr("Kept"), Date: timePtr(date)},
	}}
	s := New(fetcher, testLogger())
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("setup refresh failed: %v", err)
	}

	fetcher.err = errors.New("backend down")
	if _, err := s.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}

	if snap := s.Snapshot(); len(snap) != 1 || snap[0].ID != "1" {
		t.Errorf("expected previous snapshot retained, got %v", snap)
	}
}

func TestRefreshIdempotent(t *testing.T) {
	date := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{records: []store.EventRecord{
		{ID: "1", Title: strPtr("Stable"), Date: timePtr(date)},
	}}
	s := New(fetcher, testLogger())

	for i := 0; i < 3; i++ {
		res, err := s.Refresh(context.Background())
		if err != nil {
			t.Fatalf("refresh %d: %v", i, err)
		}
		if res.Loaded != 1 {
			t.Errorf("refresh %d: expected 1 loaded, got %d", i, res.Loaded)
		}
	}
	if fetcher.calls != 3 {
		t.Errorf("expected 3 fetches, got %d", fetcher.calls)
	}
	if snap := s.Snapshot(); len(snap) != 1 {
		t.Errorf("expected snapshot of 1, got %d", len(snap))
	}
}

func TestRefreshAfterCloseIsNoOp(t *testing.T) {
	date := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{records: []store.EventRecord{
		{ID: "1", Title: strPtr("Before close"), Date: timePtr(date)},
	}}
	s := New(fetcher, testLogger())
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("setup refresh failed: %v", err)
	}

	s.Close()

	fetcher.records = append(fetcher.records, store.EventRecord{
		ID: "2", Title: strPtr("After close"), Date: timePtr(date),
	})
	res, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Loaded != 0 || res.Skipped != 0 {
		t.Errorf("expected empty result after close, got %+v", res)
	}
	if snap := s.Snapshot(); len(snap) != 1 || snap[0].ID != "1" {
		t.Errorf("expected snapshot unchanged after close, got %v", snap)
	}
}

func TestSubscribeNotifiedOnRefresh(t *testing.T) {
	date := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{records: []store.EventRecord{
		{ID: "1", Title: strPtr("Notify"), Date: timePtr(date)},
	}}
	s := New(fetcher, testLogger())
	ch := s.Subscribe()

	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected refresh notification")
	}
}

// gatedFetcher blocks its first ListAll call until released, so a second
// refresh can be driven to completion while the first is still fetching.
type gatedFetcher struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
	first   []store.EventRecord
	second  []store.EventRecord
}

func (f *gatedFetcher) ListAll(ctx context.Context) ([]store.EventRecord, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	if call == 1 {
		close(f.entered)
		<-f.release
		return f.first, nil
	}
	return f.second, nil
}

func TestConcurrentRefreshLastToCompleteWins(t *testing.T) {
	date := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	fetcher := &gatedFetcher{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		first:   []store.EventRecord{{ID: "a", Title: strPtr("Slow fetch"), Date: timePtr(date)}},
		second:  []store.EventRecord{{ID: "b", Title: strPtr("Fast fetch"), Date: timePtr(date)}},
	}
	s := New(fetcher, testLogger())

	firstDone := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background())
		firstDone <- err
	}()
	<-fetcher.entered

	// The second refresh completes in full while the first is still fetching.
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("overlapping refresh failed: %v", err)
	}
	if snap := s.Snapshot(); len(snap) != 1 || snap[0].ID != "b" {
		t.Fatalf("expected the completed refresh visible during overlap, got %v", snap)
	}

	close(fetcher.release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}

	// Both refreshes completed; the one that finished last is retained.
	if snap := s.Snapshot(); len(snap) != 1 || snap[0].ID != "a" {
		t.Errorf("expected last completed refresh to win, got %v", snap)
	}
}

func TestSnapshotEmptyBeforeFirstRefresh(t *testing.T) {
	s := New(&fakeFetcher{}, testLogger())
	if snap := s.Snapshot(); len(snap) != 0 {
		t.Errorf("expected empty snapshot, got %d", len(snap))
	}
}
