package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/eventcal/internal/recurrence"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps domain errors onto 400 and anything else onto a logged 500
// carrying only msg.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error, msg string) {
	if errors.Is(err, recurrence.ErrInvalidArgument) || errors.Is(err, recurrence.ErrMalformedInput) {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Error(msg, "error", err)
	writeMessage(w, http.StatusInternalServerError, msg)
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func parseIntQuery(r *http.Request, key string) (int, error) {
	return strconv.Atoi(r.URL.Query().Get(key))
}

// parseFlexibleTime accepts RFC 3339 or a bare YYYY-MM-DD date, which is read
// as midnight in loc.
func parseFlexibleTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}

// parseWindow reads the required start and end query parameters.
func parseWindow(w http.ResponseWriter, r *http.Request, loc *time.Location) (time.Time, time.Time, bool) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr == "" || endStr == "" {
		writeMessage(w, http.StatusBadRequest, "start and end query parameters are required")
		return time.Time{}, time.Time{}, false
	}

	start, err := parseFlexibleTime(startStr, loc)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "start must be RFC3339 or YYYY-MM-DD format")
		return time.Time{}, time.Time{}, false
	}
	end, err := parseFlexibleTime(endStr, loc)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "end must be RFC3339 or YYYY-MM-DD format")
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		writeMessage(w, http.StatusBadRequest, "end must not be before start")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
