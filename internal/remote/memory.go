package remote

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-memory Store for tests and offline runs. Fetch and save
// failures can be scripted to exercise gateway error paths.
//
// Thread-safety: safe for concurrent use via internal mutex.
type Memory struct {
	mu       sync.Mutex
	records  []Record
	fetchErr error
	saveErr  error
}

// NewMemory creates a store seeded with records in the given collection
// order.
func NewMemory(records ...Record) *Memory {
	return &Memory{records: slices.Clone(records)}
}

// FailFetch scripts every subsequent fetch to fail with err. A nil err
// clears the failure.
func (m *Memory) FailFetch(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErr = err
}

// FailSave scripts every subsequent save to fail with err. A nil err
// clears the failure.
func (m *Memory) FailSave(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// FetchAll implements Store.
func (m *Memory) FetchAll(ctx context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return slices.Clone(m.records), nil
}

// FetchOne implements Store.
func (m *Memory) FetchOne(ctx context.Context, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fetchErr != nil {
		return Record{}, m.fetchErr
	}
	for _, rec := range m.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Record{}, NotFound(id)
}

// Save implements Store. Existing ids are replaced in place, keeping
// collection order.
func (m *Memory) Save(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	for i, existing := range m.records {
		if existing.ID == rec.ID {
			m.records[i] = rec
			return nil
		}
	}
	m.records = append(m.records, rec)
	return nil
}

// Records returns a copy of the collection in order.
func (m *Memory) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.records)
}
