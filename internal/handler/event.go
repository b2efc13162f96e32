package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dukerupert/eventcal/internal/model"
	"github.com/dukerupert/eventcal/internal/recurrence"
	"github.com/dukerupert/eventcal/internal/store"
	ws "github.com/dukerupert/eventcal/internal/websocket"
)

const (
	maxNameLen      = 36
	maxByWeekdayLen = 36
)

type EventHandler struct {
	eventStore *store.EventStore
	hub        *ws.Hub
	logger     *slog.Logger
}

func NewEventHandler(es *store.EventStore, hub *ws.Hub, logger *slog.Logger) *EventHandler {
	return &EventHandler{eventStore: es, hub: hub, logger: logger}
}

type eventRequest struct {
	Name          string `json:"name"`
	StartDateTime string `json:"start_datetime"`
	EndDateTime   string `json:"end_datetime"`
	AllDay        bool   `json:"all_day"`
	Recurring     bool   `json:"recurring"`
	Frequency     string `json:"frequency"`
	ByWeekday     string `json:"byweekday"`
	Until         string `json:"until"`
}

// toEvent validates the request and builds the event it describes.
func (req eventRequest) toEvent(loc *time.Location) (model.Event, error) {
	var e model.Event

	e.Name = strings.TrimSpace(req.Name)
	if e.Name == "" {
		return e, errors.New("name is required")
	}
	if utf8.RuneCountInString(e.Name) > maxNameLen {
		return e, fmt.Errorf("name must be at most %d characters", maxNameLen)
	}

	var err error
	if e.StartDateTime, err = optionalTime(req.StartDateTime, loc); err != nil {
		return e, errors.New("start_datetime must be RFC3339 or YYYY-MM-DD format")
	}
	if e.EndDateTime, err = optionalTime(req.EndDateTime, loc); err != nil {
		return e, errors.New("end_datetime must be RFC3339 or YYYY-MM-DD format")
	}
	if e.StartDateTime != nil && e.EndDateTime != nil && e.EndDateTime.Before(*e.StartDateTime) {
		return e, errors.New("end_datetime must not be before start_datetime")
	}
	e.AllDay = req.AllDay
	e.Recurring = req.Recurring
	if e.AllDay && e.StartDateTime == nil {
		return e, errors.New("all-day events need start_datetime")
	}

	freq, err := recurrence.ParseFreq(req.Frequency)
	if err != nil {
		return e, err
	}
	days, err := recurrence.ParseWeekdays(req.ByWeekday)
	if err != nil {
		return e, err
	}
	byweekday := recurrence.FormatWeekdays(days)
	if len(byweekday) > maxByWeekdayLen {
		return e, fmt.Errorf("byweekday must be at most %d characters", maxByWeekdayLen)
	}
	until, err := optionalTime(req.Until, loc)
	if err != nil {
		return e, errors.New("until must be RFC3339 or YYYY-MM-DD format")
	}

	if freq != "" || byweekday != "" || until != nil {
		e.Rule = &model.Recurrence{Frequency: freq, ByWeekday: byweekday, Until: until}
	}
	if e.HasRule() && e.StartDateTime == nil {
		return e, errors.New("recurring events need start_datetime")
	}
	return e, nil
}

func optionalTime(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := parseFlexibleTime(s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *EventHandler) decode(w http.ResponseWriter, r *http.Request) (model.Event, bool) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON")
		return model.Event{}, false
	}
	e, err := req.toEvent(h.eventStore.Location())
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return model.Event{}, false
	}
	return e, true
}

// load fetches the event named by the id path value, writing the error
// response itself when it cannot.
func (h *EventHandler) load(w http.ResponseWriter, r *http.Request) (*model.Event, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	event, err := h.eventStore.GetByID(id)
	if err != nil {
		writeError(w, h.logger, err, "failed to get event")
		return nil, false
	}
	if event == nil {
		writeMessage(w, http.StatusNotFound, "event not found")
		return nil, false
	}
	return event, true
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	e, ok := h.decode(w, r)
	if !ok {
		return
	}

	event, err := h.eventStore.Create(e)
	if err != nil {
		writeError(w, h.logger, err, "failed to create event")
		return
	}

	h.hub.Notify(ws.EventCreated, event.ID)
	writeJSON(w, http.StatusCreated, event)
}

// List returns every event, or with start and end only those that can
// produce an occurrence in that window.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		events []model.Event
		err    error
	)
	if r.URL.Query().Has("start") || r.URL.Query().Has("end") {
		start, end, ok := parseWindow(w, r, h.eventStore.Location())
		if !ok {
			return
		}
		events, err = h.eventStore.ListByDateRange(start, end)
	} else {
		events, err = h.eventStore.List()
	}
	if err != nil {
		writeError(w, h.logger, err, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.load(w, r)
	if !ok {
		return
	}

	e, ok := h.decode(w, r)
	if !ok {
		return
	}

	event, err := h.eventStore.Update(existing.ID, e)
	if err != nil {
		writeError(w, h.logger, err, "failed to update event")
		return
	}

	h.hub.Notify(ws.EventUpdated, event.ID)
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := h.eventStore.Delete(existing.ID); err != nil {
		writeError(w, h.logger, err, "failed to delete event")
		return
	}

	h.hub.Notify(ws.EventDeleted, existing.ID)
	w.WriteHeader(http.StatusNoContent)
}

// Occurrences returns the event's instances in the window as FullCalendar
// objects.
func (h *EventHandler) Occurrences(w http.ResponseWriter, r *http.Request) {
	event, ok := h.load(w, r)
	if !ok {
		return
	}
	start, end, ok := parseWindow(w, r, h.eventStore.Location())
	if !ok {
		return
	}

	occurrences, err := event.EventOccurrences(start, end)
	if err != nil {
		writeError(w, h.logger, err, "failed to expand event")
		return
	}

	out := make([]model.FullCalendarEvent, 0, len(occurrences))
	for _, occ := range occurrences {
		out = append(out, occ.In(h.eventStore.Location()).ToFullCalendar())
	}
	writeJSON(w, http.StatusOK, out)
}

type datesResponse struct {
	Dates   []time.Time `json:"dates"`
	HasRule bool        `json:"has_rule"`
}

func (h *EventHandler) writeDates(w http.ResponseWriter, dates []time.Time, err error) {
	if errors.Is(err, recurrence.ErrNoRule) {
		writeJSON(w, http.StatusOK, datesResponse{Dates: []time.Time{}})
		return
	}
	if err != nil {
		writeError(w, h.logger, err, "failed to compute occurrences")
		return
	}

	loc := h.eventStore.Location()
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		out[i] = d.In(loc)
	}
	writeJSON(w, http.StatusOK, datesResponse{Dates: out, HasRule: true})
}

// Dates returns the raw rule timestamps within the inclusive window.
func (h *EventHandler) Dates(w http.ResponseWriter, r *http.Request) {
	event, ok := h.load(w, r)
	if !ok {
		return
	}
	start, end, ok := parseWindow(w, r, h.eventStore.Location())
	if !ok {
		return
	}

	dates, err := event.Occurrences(start, end)
	h.writeDates(w, dates, err)
}

func (h *EventHandler) Month(w http.ResponseWriter, r *http.Request) {
	event, ok := h.load(w, r)
	if !ok {
		return
	}
	year, err := parseIntQuery(r, "year")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	month, err := parseIntQuery(r, "month")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "month must be an integer")
		return
	}

	dates, err := event.MonthOccurrences(year, month)
	h.writeDates(w, dates, err)
}

func (h *EventHandler) Week(w http.ResponseWriter, r *http.Request) {
	event, ok := h.load(w, r)
	if !ok {
		return
	}
	year, err := parseIntQuery(r, "year")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "year must be an integer")
		return
	}
	week, err := parseIntQuery(r, "week")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "week must be an integer")
		return
	}

	dates, err := event.WeekOccurrences(year, week)
	h.writeDates(w, dates, err)
}
