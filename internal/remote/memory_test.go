package remote

import (
	"context"
	"errors"
	"testing"
)

func TestMemory_FetchOne(t *testing.T) {
	m := NewMemory(
		Record{ID: "r1", Name: "One", Content: "a"},
		Record{ID: "r2", Name: "Two", Content: "b"},
	)

	rec, err := m.FetchOne(context.Background(), "r2")
	if err != nil {
		t.Fatalf("FetchOne() failed: %v", err)
	}
	if rec.Name != "Two" {
		t.Errorf("rec.Name = %q, want Two", rec.Name)
	}

	_, err = m.FetchOne(context.Background(), "ghost")
	envelope, ok := AsError(err)
	if !ok {
		t.Fatalf("missing id error %v is not a structured envelope", err)
	}
	if envelope.Code != CodeNotFound {
		t.Errorf("code = %q, want %q", envelope.Code, CodeNotFound)
	}
}

func TestMemory_SaveKeepsCollectionOrder(t *testing.T) {
	m := NewMemory(
		Record{ID: "r1", Name: "One", Content: "a"},
		Record{ID: "r2", Name: "Two", Content: "b"},
	)
	ctx := context.Background()

	if err := m.Save(ctx, Record{ID: "r1", Name: "One v2", Content: "c"}); err != nil {
		t.Fatalf("Save(r1) failed: %v", err)
	}
	if err := m.Save(ctx, Record{ID: "r3", Name: "Three", Content: "d"}); err != nil {
		t.Fatalf("Save(r3) failed: %v", err)
	}

	records := m.Records()
	wantIDs := []string{"r1", "r2", "r3"}
	if len(records) != len(wantIDs) {
		t.Fatalf("Records() returned %d records, want %d", len(records), len(wantIDs))
	}
	for i, id := range wantIDs {
		if records[i].ID != id {
			t.Errorf("records[%d].ID = %q, want %q", i, records[i].ID, id)
		}
	}
	if records[0].Name != "One v2" {
		t.Errorf("records[0].Name = %q, want updated name", records[0].Name)
	}
}

func TestMemory_ScriptedFailures(t *testing.T) {
	m := NewMemory(Record{ID: "r1", Name: "One", Content: "a"})
	ctx := context.Background()

	fetchErr := errors.New("network down")
	m.FailFetch(fetchErr)
	if _, err := m.FetchAll(ctx); !errors.Is(err, fetchErr) {
		t.Errorf("FetchAll() error = %v, want scripted failure", err)
	}
	if _, err := m.FetchOne(ctx, "r1"); !errors.Is(err, fetchErr) {
		t.Errorf("FetchOne() error = %v, want scripted failure", err)
	}

	m.FailFetch(nil)
	if _, err := m.FetchAll(ctx); err != nil {
		t.Errorf("FetchAll() after clearing failure: %v", err)
	}

	saveErr := &Error{Code: "rest_cannot_create", Message: "Sorry."}
	m.FailSave(saveErr)
	err := m.Save(ctx, Record{ID: "r2"})
	if envelope, ok := AsError(err); !ok || envelope.Code != "rest_cannot_create" {
		t.Errorf("Save() error = %v, want scripted envelope", err)
	}
	if len(m.Records()) != 1 {
		t.Errorf("failed save mutated the collection")
	}
}
