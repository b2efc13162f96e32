package model

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/dukerupert/eventcal/internal/recurrence"
)

// Event is a calendar event, one-time or recurring.
type Event struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	StartDateTime *time.Time  `json:"start_datetime"`
	EndDateTime   *time.Time  `json:"end_datetime"`
	AllDay        bool        `json:"all_day"`
	Recurring     bool        `json:"recurring"`
	Rule          *Recurrence `json:"rule,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Recurrence is the recurrence definition attached to an event.
type Recurrence struct {
	Frequency recurrence.Freq `json:"frequency"`
	ByWeekday string          `json:"byweekday"`
	Until     *time.Time      `json:"until,omitempty"`
}

func (e Event) String() string {
	return e.Name
}

// HasRule reports whether occurrences come from a recurrence rule.
func (e *Event) HasRule() bool {
	return e.Recurring && e.Rule != nil && e.Rule.Frequency != ""
}

// Normalize applies the save-time rules. All-day events are snapped to a
// single local calendar day and the recurrence bound is moved into loc.
func (e *Event) Normalize(loc *time.Location) error {
	if e.AllDay {
		if e.StartDateTime == nil {
			return fmt.Errorf("all-day event %q has no start: %w", e.Name, recurrence.ErrInvalidArgument)
		}
		y, m, d := e.StartDateTime.In(loc).Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, loc)
		end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
		e.StartDateTime = &start
		e.EndDateTime = &end
	}
	if e.Rule != nil && e.Rule.Until != nil {
		until := e.Rule.Until.In(loc)
		e.Rule.Until = &until
	}
	return nil
}

// RuleParams decodes the stored rule modifiers.
func (e *Event) RuleParams() (recurrence.Params, error) {
	if e.Rule == nil {
		return recurrence.Params{}, nil
	}
	days, err := recurrence.ParseWeekdays(e.Rule.ByWeekday)
	if err != nil {
		return recurrence.Params{}, fmt.Errorf("decode byweekday: %w", err)
	}
	return recurrence.Params{ByWeekday: days, Until: e.Rule.Until}, nil
}

// RecurrenceRule builds the event's recurrence rule. It returns nil, nil when
// the event has none.
func (e *Event) RecurrenceRule() (*rrule.RRule, error) {
	if !e.HasRule() {
		return nil, nil
	}
	if e.StartDateTime == nil {
		return nil, fmt.Errorf("recurring event %q has no start: %w", e.Name, recurrence.ErrInvalidArgument)
	}
	params, err := e.RuleParams()
	if err != nil {
		return nil, err
	}
	return recurrence.New(e.Rule.Frequency, *e.StartDateTime, params)
}

// EventOccurrences returns the event's instances that start within
// [start, end]. Each recurring instance keeps the original duration.
func (e *Event) EventOccurrences(start, end time.Time) ([]Event, error) {
	rule, err := e.RecurrenceRule()
	if err != nil {
		return nil, err
	}

	if rule == nil {
		if e.StartDateTime == nil || e.StartDateTime.Before(start) || e.StartDateTime.After(end) {
			return nil, nil
		}
		return []Event{*e}, nil
	}

	var duration time.Duration
	if e.EndDateTime != nil {
		duration = e.EndDateTime.Sub(*e.StartDateTime)
	}

	dates := recurrence.Between(rule, start, end, true)
	events := make([]Event, 0, len(dates))
	for _, date := range dates {
		occStart := date
		occEnd := date.Add(duration)
		events = append(events, Event{
			ID:            e.ID,
			Name:          e.Name,
			StartDateTime: &occStart,
			EndDateTime:   &occEnd,
			AllDay:        e.AllDay,
			Recurring:     e.Recurring,
			Rule:          e.Rule,
			CreatedAt:     e.CreatedAt,
			UpdatedAt:     e.UpdatedAt,
		})
	}
	return events, nil
}

// Occurrences returns the rule's timestamps within [start, end]. Events
// without a rule return recurrence.ErrNoRule.
func (e *Event) Occurrences(start, end time.Time) ([]time.Time, error) {
	rule, err := e.RecurrenceRule()
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, fmt.Errorf("event %d: %w", e.ID, recurrence.ErrNoRule)
	}
	return recurrence.Between(rule, start, end, true), nil
}

// MonthOccurrences returns the rule's timestamps in the given UTC month.
func (e *Event) MonthOccurrences(year, month int) ([]time.Time, error) {
	w, err := recurrence.MonthWindow(year, month)
	if err != nil {
		return nil, err
	}
	return e.windowOccurrences(w)
}

// WeekOccurrences returns the rule's timestamps in the given Sunday-anchored
// UTC week.
func (e *Event) WeekOccurrences(year, week int) ([]time.Time, error) {
	w, err := recurrence.WeekWindow(year, week)
	if err != nil {
		return nil, err
	}
	return e.windowOccurrences(w)
}

func (e *Event) windowOccurrences(w recurrence.Window) ([]time.Time, error) {
	times, err := e.Occurrences(w.Start, w.End)
	if err != nil {
		return nil, err
	}
	return w.Clip(times), nil
}

// In returns a copy of the event with its timestamps expressed in loc.
func (e Event) In(loc *time.Location) Event {
	if e.StartDateTime != nil {
		t := e.StartDateTime.In(loc)
		e.StartDateTime = &t
	}
	if e.EndDateTime != nil {
		t := e.EndDateTime.In(loc)
		e.EndDateTime = &t
	}
	return e
}
