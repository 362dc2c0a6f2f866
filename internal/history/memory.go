package history

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Simplici0/unitecon/internal/clock"
	"github.com/Simplici0/unitecon/internal/snapshot"
)

// Memory keeps records for the lifetime of the process.
type Memory struct {
	mu      sync.RWMutex
	clock   clock.Clock
	records []Record
}

func NewMemory(c clock.Clock) *Memory {
	return &Memory{clock: c}
}

func (m *Memory) Backend() string { return "memory" }

func (m *Memory) Save(_ context.Context, s snapshot.Snapshot, document []byte) (string, error) {
	rec := Record{
		ID:        uuid.NewString(),
		CreatedAt: m.clock.Now(),
		Snapshot:  s,
		Document:  bytes.Clone(document),
	}

	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()

	return rec.ID, nil
}

func (m *Memory) List(_ context.Context, limit int) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.records)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Summary, 0, n)
	for i := len(m.records) - 1; i >= 0 && len(out) < n; i-- {
		rec := m.records[i]
		out = append(out, summarize(rec.ID, rec.CreatedAt, rec.Snapshot, rec.Document != nil))
	}
	return out, nil
}

func (m *Memory) FetchDocument(_ context.Context, id string) ([]byte, error) {
	rec, ok := m.find(id)
	if !ok || rec.Document == nil {
		return nil, ErrNotFound
	}
	return bytes.Clone(rec.Document), nil
}

func (m *Memory) FetchSnapshot(_ context.Context, id string) (snapshot.Snapshot, error) {
	rec, ok := m.find(id)
	if !ok {
		return snapshot.Snapshot{}, ErrNotFound
	}
	return rec.Snapshot, nil
}

func (m *Memory) find(id string) (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}
