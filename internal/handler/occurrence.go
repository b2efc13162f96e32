package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/eventcal/internal/model"
	"github.com/dukerupert/eventcal/internal/store"
	ws "github.com/dukerupert/eventcal/internal/websocket"
)

// OccurrenceHandler manages persisted occurrence records.
type OccurrenceHandler struct {
	eventStore      *store.EventStore
	occurrenceStore *store.OccurrenceStore
	hub             *ws.Hub
	logger          *slog.Logger
}

func NewOccurrenceHandler(es *store.EventStore, oc *store.OccurrenceStore, hub *ws.Hub, logger *slog.Logger) *OccurrenceHandler {
	return &OccurrenceHandler{eventStore: es, occurrenceStore: oc, hub: hub, logger: logger}
}

func (h *OccurrenceHandler) eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}

	event, err := h.eventStore.GetByID(id)
	if err != nil {
		writeError(w, h.logger, err, "failed to get event")
		return 0, false
	}
	if event == nil {
		writeMessage(w, http.StatusNotFound, "event not found")
		return 0, false
	}
	return id, true
}

func (h *OccurrenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	occ, err := h.occurrenceStore.Create(eventID)
	if err != nil {
		writeError(w, h.logger, err, "failed to create occurrence")
		return
	}

	h.hub.Broadcast(ws.Message{Type: ws.OccurrenceCreated, EventID: eventID, OccurrenceID: occ.ID})
	writeJSON(w, http.StatusCreated, occ)
}

func (h *OccurrenceHandler) List(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	occurrences, err := h.occurrenceStore.ListByEvent(eventID)
	if err != nil {
		writeError(w, h.logger, err, "failed to list occurrences")
		return
	}
	if occurrences == nil {
		occurrences = []model.Occurrence{}
	}

	writeJSON(w, http.StatusOK, occurrences)
}

func (h *OccurrenceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}

	occ, err := h.occurrenceStore.GetByID(id)
	if err != nil {
		writeError(w, h.logger, err, "failed to get occurrence")
		return
	}
	if occ == nil {
		writeMessage(w, http.StatusNotFound, "occurrence not found")
		return
	}

	if err := h.occurrenceStore.Delete(id); err != nil {
		writeError(w, h.logger, err, "failed to delete occurrence")
		return
	}

	h.hub.Broadcast(ws.Message{Type: ws.OccurrenceDeleted, EventID: occ.EventID, OccurrenceID: id})
	w.WriteHeader(http.StatusNoContent)
}
