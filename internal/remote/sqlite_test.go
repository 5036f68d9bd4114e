package remote

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()

	path := filepath.Join(t.TempDir(), "blocks.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenSQLite_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.db")

	for i := 0; i < 3; i++ {
		s, err := OpenSQLite(path)
		if err != nil {
			t.Fatalf("OpenSQLite() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestSQLite_SaveAndFetchOne(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := Record{
		ID:      "r1",
		Name:    "Callout",
		Content: `<!-- wp:paragraph {"content":"Hi"} /-->`,
	}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := s.FetchOne(ctx, "r1")
	if err != nil {
		t.Fatalf("FetchOne() failed: %v", err)
	}
	if got != rec {
		t.Errorf("FetchOne() = %+v, want %+v", got, rec)
	}
}

func TestSQLite_FetchOne_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.FetchOne(context.Background(), "ghost")
	if err == nil {
		t.Fatal("FetchOne() expected error for missing id")
	}

	envelope, ok := AsError(err)
	if !ok {
		t.Fatalf("FetchOne() error %v is not a structured envelope", err)
	}
	if envelope.Code != CodeNotFound {
		t.Errorf("error code = %q, want %q", envelope.Code, CodeNotFound)
	}
}

func TestSQLite_FetchAll_InsertionOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, rec := range []Record{
		{ID: "r3", Name: "Third", Content: "<!-- wp:separator /-->"},
		{ID: "r1", Name: "First", Content: "<!-- wp:separator /-->"},
		{ID: "r2", Name: "Second", Content: "<!-- wp:separator /-->"},
	} {
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save(%s) failed: %v", rec.ID, err)
		}
	}

	records, err := s.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll() failed: %v", err)
	}

	wantOrder := []string{"r3", "r1", "r2"}
	if len(records) != len(wantOrder) {
		t.Fatalf("FetchAll() returned %d records, want %d", len(records), len(wantOrder))
	}
	for i, id := range wantOrder {
		if records[i].ID != id {
			t.Errorf("records[%d].ID = %q, want %q", i, records[i].ID, id)
		}
	}
}

func TestSQLite_Save_UpsertKeepsPosition(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, Record{ID: "r1", Name: "One", Content: "a"}); err != nil {
		t.Fatalf("Save(r1) failed: %v", err)
	}
	if err := s.Save(ctx, Record{ID: "r2", Name: "Two", Content: "b"}); err != nil {
		t.Fatalf("Save(r2) failed: %v", err)
	}

	// Re-save the first record with new content.
	if err := s.Save(ctx, Record{ID: "r1", Name: "One renamed", Content: "c"}); err != nil {
		t.Fatalf("re-Save(r1) failed: %v", err)
	}

	records, err := s.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll() failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("FetchAll() returned %d records, want 2", len(records))
	}
	if records[0].ID != "r1" || records[0].Name != "One renamed" || records[0].Content != "c" {
		t.Errorf("records[0] = %+v, want updated r1 first", records[0])
	}
	if records[1].ID != "r2" {
		t.Errorf("records[1].ID = %q, want r2", records[1].ID)
	}
}

func TestSQLite_FetchAll_Empty(t *testing.T) {
	s := openTestStore(t)

	records, err := s.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll() failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("FetchAll() on empty collection returned %d records", len(records))
	}
}
