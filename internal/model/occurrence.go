package model

import "time"

// Occurrence persists a single instance of a recurring event so that other
// records can be attached to it.
type Occurrence struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}
