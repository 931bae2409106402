package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/parishhub/eventcal/internal/config"
	"github.com/parishhub/eventcal/internal/eventstore"
	"github.com/parishhub/eventcal/internal/feed"
	httperrors "github.com/parishhub/eventcal/internal/http/errors"
	"github.com/parishhub/eventcal/internal/store"
	"github.com/parishhub/eventcal/internal/view"
)

// Handler serves the JSON API that presentation layers bind to.
type Handler struct {
	cfg       *config.Config
	store     *store.Store
	events    *eventstore.Store
	presenter *view.Presenter
	log       *logrus.Entry
}

func NewHandler(cfg *config.Config, stor *store.Store, events *eventstore.Store, presenter *view.Presenter, log *logrus.Entry) *Handler {
	return &Handler{cfg: cfg, store: stor, events: events, presenter: presenter, log: log}
}

type eventJSON struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

type cellJSON struct {
	Blank  bool        `json:"blank"`
	Day    *time.Time  `json:"day,omitempty"`
	Events []eventJSON `json:"events,omitempty"`
}

type dayGroupJSON struct {
	Day    time.Time   `json:"day"`
	Events []eventJSON `json:"events"`
}

type monthSectionJSON struct {
	Month time.Time      `json:"month"`
	Title string         `json:"title"`
	Days  []dayGroupJSON `json:"days"`
	Empty bool           `json:"empty"`
}

func toEventJSON(events []store.Event) []eventJSON {
	out := make([]eventJSON, 0, len(events))
	for _, ev := range events {
		out = append(out, eventJSON{ID: ev.ID, Title: ev.Title, Date: ev.Date})
	}
	return out
}

// Events returns the current snapshot.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"events": toEventJSON(h.events.Snapshot()),
	})
}

// CalendarGrid returns the month-grid cells for the displayed month.
func (h *Handler) CalendarGrid(w http.ResponseWriter, r *http.Request) {
	cells := h.presenter.GridCells()
	out := make([]cellJSON, 0, len(cells))
	for _, c := range cells {
		if c.Blank {
			out = append(out, cellJSON{Blank: true})
			continue
		}
		day := c.Day
		out = append(out, cellJSON{Day: &day, Events: toEventJSON(c.Events)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month": h.presenter.Month(),
		"cells": out,
	})
}

// PreviousMonth and NextMonth shift the displayed month by one calendar month.
func (h *Handler) PreviousMonth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"month": h.presenter.GoToPreviousMonth()})
}

func (h *Handler) NextMonth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"month": h.presenter.GoToNextMonth()})
}

// MonthSections returns the grouped-by-month list mode.
func (h *Handler) MonthSections(w http.ResponseWriter, r *http.Request) {
	sections := h.presenter.MonthSections()
	out := make([]monthSectionJSON, 0, len(sections))
	for _, s := range sections {
		sec := monthSectionJSON{Month: s.Month, Title: s.Title, Empty: s.Empty, Days: []dayGroupJSON{}}
		for _, d := range s.Days {
			sec.Days = append(sec.Days, dayGroupJSON{Day: d.Day, Events: toEventJSON(d.Events)})
		}
		out = append(out, sec)
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": out})
}

// Refresh re-fetches the event collection. On fetch failure the previous
// snapshot stays current and the error is surfaced here, once.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	res, err := h.events.Refresh(r.Context())
	if err != nil {
		httperrors.LogError(r, "refresh failed", err)
		http.Error(w, "failed to refresh events", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"loaded":  res.Loaded,
		"skipped": res.Skipped,
	})
}

// CreateEvent inserts an event into the backing store and refreshes the
// snapshot so the new event is visible immediately.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string    `json:"title"`
		Date  time.Time `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.BadRequestError(w, r, err, "invalid json body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	if req.Date.IsZero() {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}

	ev, err := h.store.Events.Create(r.Context(), req.Title, req.Date)
	if err != nil {
		httperrors.InternalError(w, r, err, "failed to create event")
		return
	}
	if _, err := h.events.Refresh(r.Context()); err != nil {
		httperrors.LogError(r, "refresh after create failed", err)
	}
	writeJSON(w, http.StatusCreated, eventJSON{ID: ev.ID, Title: ev.Title, Date: ev.Date})
}

// DeleteEvent removes an event from the backing store.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}
	if err := h.store.Events.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		httperrors.InternalError(w, r, err, "failed to delete event")
		return
	}
	if _, err := h.events.Refresh(r.Context()); err != nil {
		httperrors.LogError(r, "refresh after delete failed", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// CalendarFeed serves the snapshot as a subscribable iCalendar feed.
func (h *Handler) CalendarFeed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	_, _ = w.Write([]byte(feed.Build(h.events.Snapshot(), h.cfg.CalendarName, time.Now())))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
