package store

import (
	"testing"
	"time"
)

func TestOccurrenceCreateAndList(t *testing.T) {
	es, occ := setupTestDB(t, time.UTC)

	event, err := es.Create(timedEvent("Weekly", time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC), time.Hour))
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	first, err := occ.Create(event.ID)
	if err != nil {
		t.Fatalf("create occurrence: %v", err)
	}
	if first.EventID != event.ID {
		t.Errorf("event_id = %d, want %d", first.EventID, event.ID)
	}
	if _, err := occ.Create(event.ID); err != nil {
		t.Fatalf("create occurrence: %v", err)
	}

	list, err := occ.ListByEvent(event.ID)
	if err != nil {
		t.Fatalf("list occurrences: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d occurrences, want 2", len(list))
	}
	if list[0].ID != first.ID {
		t.Errorf("first id = %d, want %d", list[0].ID, first.ID)
	}
}

func TestOccurrenceRequiresEvent(t *testing.T) {
	_, occ := setupTestDB(t, time.UTC)

	if _, err := occ.Create(42); err == nil {
		t.Fatal("expected foreign key error for missing event")
	}
}

func TestOccurrenceDelete(t *testing.T) {
	es, occ := setupTestDB(t, time.UTC)

	event, _ := es.Create(timedEvent("Weekly", time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC), time.Hour))
	o, err := occ.Create(event.ID)
	if err != nil {
		t.Fatalf("create occurrence: %v", err)
	}

	if err := occ.Delete(o.ID); err != nil {
		t.Fatalf("delete occurrence: %v", err)
	}
	got, err := occ.GetByID(o.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestEventDeleteCascadesOccurrences(t *testing.T) {
	es, occ := setupTestDB(t, time.UTC)

	event, _ := es.Create(timedEvent("Weekly", time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC), time.Hour))
	o, err := occ.Create(event.ID)
	if err != nil {
		t.Fatalf("create occurrence: %v", err)
	}

	if err := es.Delete(event.ID); err != nil {
		t.Fatalf("delete event: %v", err)
	}

	got, err := occ.GetByID(o.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got != nil {
		t.Error("occurrence should be removed with its event")
	}
}
