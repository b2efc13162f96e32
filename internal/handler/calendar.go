package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/eventcal/internal/ical"
	"github.com/dukerupert/eventcal/internal/model"
	"github.com/dukerupert/eventcal/internal/store"
)

// CalendarHandler serves whole-calendar views: the FullCalendar feed and the
// iCal export.
type CalendarHandler struct {
	eventStore *store.EventStore
	icalOpts   ical.Options
	logger     *slog.Logger
}

func NewCalendarHandler(es *store.EventStore, opts ical.Options, logger *slog.Logger) *CalendarHandler {
	if opts.Location == nil {
		opts.Location = es.Location()
	}
	return &CalendarHandler{eventStore: es, icalOpts: opts, logger: logger}
}

// Feed expands every event into the window. Recurring events contribute one
// object per occurrence; one-off events contribute themselves. Both are
// included when they overlap the window, so an instance that began before
// start but is still running shows up.
func (h *CalendarHandler) Feed(w http.ResponseWriter, r *http.Request) {
	loc := h.eventStore.Location()
	start, end, ok := parseWindow(w, r, loc)
	if !ok {
		return
	}

	events, err := h.eventStore.ListByDateRange(start, end)
	if err != nil {
		writeError(w, h.logger, err, "failed to list events")
		return
	}

	out := []model.FullCalendarEvent{}
	for i := range events {
		e := &events[i]
		if !e.HasRule() {
			out = append(out, e.In(loc).ToFullCalendar())
			continue
		}

		occurrences, err := e.EventOccurrences(start.Add(-duration(e)), end)
		if err != nil {
			h.logger.Warn("skip unexpandable event", "event_id", e.ID, "error", err)
			continue
		}
		for _, occ := range occurrences {
			if occ.EndDateTime.Before(start) {
				continue
			}
			out = append(out, occ.In(loc).ToFullCalendar())
		}
	}

	writeJSON(w, http.StatusOK, out)
}

// duration is how long each instance of e lasts.
func duration(e *model.Event) time.Duration {
	if e.StartDateTime == nil || e.EndDateTime == nil || e.EndDateTime.Before(*e.StartDateTime) {
		return 0
	}
	return e.EndDateTime.Sub(*e.StartDateTime)
}

func (h *CalendarHandler) ICS(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventStore.List()
	if err != nil {
		writeError(w, h.logger, err, "failed to list events")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(ical.Export(events, h.icalOpts, h.logger)))
}
