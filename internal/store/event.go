package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/eventcal/internal/model"
	"github.com/dukerupert/eventcal/internal/recurrence"
)

const eventColumns = `id, name, start_datetime, end_datetime, all_day, recurring, frequency, byweekday, until, created_at, updated_at`

type EventStore struct {
	db  *sql.DB
	loc *time.Location
}

// NewEventStore returns a store that normalizes events into loc on save and
// returns timestamps expressed in loc.
func NewEventStore(db *sql.DB, loc *time.Location) *EventStore {
	if loc == nil {
		loc = time.UTC
	}
	return &EventStore{db: db, loc: loc}
}

// Location returns the zone treated as local time.
func (s *EventStore) Location() *time.Location {
	return s.loc
}

func (s *EventStore) Create(e model.Event) (*model.Event, error) {
	if err := s.prepare(&e); err != nil {
		return nil, err
	}
	freq, byweekday, until := ruleColumns(e.Rule)

	result, err := s.db.Exec(
		`INSERT INTO events (name, start_datetime, end_datetime, all_day, recurring, frequency, byweekday, until)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Name, nullTime(e.StartDateTime), nullTime(e.EndDateTime), boolInt(e.AllDay), boolInt(e.Recurring), freq, byweekday, until,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := s.scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	return e, nil
}

// List returns every event ordered by start time.
func (s *EventStore) List() ([]model.Event, error) {
	return s.query(`SELECT ` + eventColumns + ` FROM events ORDER BY start_datetime ASC, id ASC`)
}

// ListByDateRange returns the events that can produce an occurrence in
// [start, end]: recurring events that begin by end and have not expired
// before start, and one-off events overlapping the window.
func (s *EventStore) ListByDateRange(start, end time.Time) ([]model.Event, error) {
	return s.query(
		`SELECT `+eventColumns+` FROM events
		 WHERE start_datetime IS NOT NULL AND start_datetime <= ?
		   AND ((recurring = 1 AND frequency != '' AND (until IS NULL OR until >= ?))
		        OR COALESCE(end_datetime, start_datetime) >= ?)
		 ORDER BY all_day DESC, start_datetime ASC`,
		end.UTC(), start.UTC(), start.UTC(),
	)
}

func (s *EventStore) Update(id int64, e model.Event) (*model.Event, error) {
	if err := s.prepare(&e); err != nil {
		return nil, err
	}
	freq, byweekday, until := ruleColumns(e.Rule)

	_, err := s.db.Exec(
		`UPDATE events
		 SET name = ?, start_datetime = ?, end_datetime = ?, all_day = ?, recurring = ?,
		     frequency = ?, byweekday = ?, until = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		e.Name, nullTime(e.StartDateTime), nullTime(e.EndDateTime), boolInt(e.AllDay), boolInt(e.Recurring), freq, byweekday, until, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	return s.GetByID(id)
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// prepare runs the pre-save hook on a private copy of the rule.
func (s *EventStore) prepare(e *model.Event) error {
	if e.Rule != nil {
		rule := *e.Rule
		e.Rule = &rule
	}
	if err := e.Normalize(s.loc); err != nil {
		return fmt.Errorf("normalize event: %w", err)
	}
	return nil
}

func (s *EventStore) query(q string, args ...any) ([]model.Event, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := s.scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *EventStore) scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	var start, end, until sql.NullTime
	var allDayInt, recurringInt int
	var freq, byweekday string

	if err := row.Scan(&e.ID, &e.Name, &start, &end, &allDayInt, &recurringInt, &freq, &byweekday, &until, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}

	e.AllDay = allDayInt != 0
	e.Recurring = recurringInt != 0
	e.StartDateTime = s.localTime(start)
	e.EndDateTime = s.localTime(end)

	if freq != "" || byweekday != "" || until.Valid {
		e.Rule = &model.Recurrence{
			Frequency: recurrence.Freq(freq),
			ByWeekday: byweekday,
			Until:     s.localTime(until),
		}
	}

	return &e, nil
}

func (s *EventStore) localTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	local := t.Time.In(s.loc)
	return &local
}

func ruleColumns(r *model.Recurrence) (string, string, any) {
	if r == nil {
		return "", "", nil
	}
	return string(r.Frequency), r.ByWeekday, nullTime(r.Until)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
