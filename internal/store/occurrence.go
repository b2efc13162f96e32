package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/eventcal/internal/model"
)

type OccurrenceStore struct {
	db *sql.DB
}

func NewOccurrenceStore(db *sql.DB) *OccurrenceStore {
	return &OccurrenceStore{db: db}
}

func (s *OccurrenceStore) Create(eventID int64) (*model.Occurrence, error) {
	result, err := s.db.Exec(`INSERT INTO occurrences (event_id) VALUES (?)`, eventID)
	if err != nil {
		return nil, fmt.Errorf("insert occurrence: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *OccurrenceStore) GetByID(id int64) (*model.Occurrence, error) {
	var o model.Occurrence
	err := s.db.QueryRow(
		`SELECT id, event_id, created_at FROM occurrences WHERE id = ?`, id,
	).Scan(&o.ID, &o.EventID, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query occurrence: %w", err)
	}
	return &o, nil
}

func (s *OccurrenceStore) ListByEvent(eventID int64) ([]model.Occurrence, error) {
	rows, err := s.db.Query(
		`SELECT id, event_id, created_at FROM occurrences WHERE event_id = ? ORDER BY id ASC`, eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("query occurrences: %w", err)
	}
	defer rows.Close()

	var occurrences []model.Occurrence
	for rows.Next() {
		var o model.Occurrence
		if err := rows.Scan(&o.ID, &o.EventID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		occurrences = append(occurrences, o)
	}
	return occurrences, rows.Err()
}

func (s *OccurrenceStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM occurrences WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete occurrence: %w", err)
	}
	return nil
}
