package history

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/unitecon/internal/metrics"
	"github.com/Simplici0/unitecon/internal/snapshot"
)

// DefaultTimeout bounds each call to the persistent backend.
const DefaultTimeout = 5 * time.Second

// Saved reports where a record ended up.
type Saved struct {
	ID        string `json:"id"`
	Backend   string `json:"backend"`
	Persisted bool   `json:"persisted"`
}

// Journal fronts an optional persistent Store with the session's in-memory
// list. Saves always succeed from the caller's view: when the remote store is
// missing or failing the record lands in the session list instead.
type Journal struct {
	remote  Store
	local   *Memory
	timeout time.Duration
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewJournal wires remote and local. A nil remote is treated as Unconfigured.
func NewJournal(remote Store, local *Memory, timeout time.Duration, log *zap.Logger, m *metrics.Metrics) *Journal {
	if remote == nil {
		remote = Unconfigured{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Journal{remote: remote, local: local, timeout: timeout, log: log, metrics: m}
}

// Backend names the persistent store, or "none".
func (j *Journal) Backend() string { return j.remote.Backend() }

func (j *Journal) Save(ctx context.Context, s snapshot.Snapshot, document []byte) (Saved, error) {
	rctx, cancel := context.WithTimeout(ctx, j.timeout)
	id, err := j.remote.Save(rctx, s, document)
	cancel()
	if err == nil {
		j.metrics.IncSaves(j.remote.Backend())
		return Saved{ID: id, Backend: j.remote.Backend(), Persisted: true}, nil
	}
	j.degraded("save", err)

	id, err = j.local.Save(ctx, s, document)
	if err != nil {
		return Saved{}, fmt.Errorf("save to session history: %w", err)
	}
	j.metrics.IncSaves(j.local.Backend())
	return Saved{ID: id, Backend: j.local.Backend()}, nil
}

// List merges the persistent and session records, newest first.
func (j *Journal) List(ctx context.Context, limit int) ([]Summary, error) {
	rctx, cancel := context.WithTimeout(ctx, j.timeout)
	remote, err := j.remote.List(rctx, limit)
	cancel()
	if err != nil {
		j.degraded("list", err)
		remote = nil
	}

	local, err := j.local.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	merged := append(remote, local...)
	slices.SortStableFunc(merged, func(a, b Summary) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

func (j *Journal) FetchDocument(ctx context.Context, id string) ([]byte, error) {
	doc, err := j.local.FetchDocument(ctx, id)
	if !errors.Is(err, ErrNotFound) {
		return doc, err
	}
	if _, ok := j.local.find(id); ok {
		// Session record saved without a document.
		return nil, ErrNotFound
	}

	rctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	doc, err = j.remote.FetchDocument(rctx, id)
	return doc, j.remoteFetchErr(err)
}

func (j *Journal) FetchSnapshot(ctx context.Context, id string) (snapshot.Snapshot, error) {
	s, err := j.local.FetchSnapshot(ctx, id)
	if !errors.Is(err, ErrNotFound) {
		return s, err
	}

	rctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	s, err = j.remote.FetchSnapshot(rctx, id)
	return s, j.remoteFetchErr(err)
}

func (j *Journal) degraded(op string, err error) {
	if errors.Is(err, ErrUnavailable) {
		return
	}
	j.metrics.IncHistoryFallbacks()
	j.log.Warn("history backend failed, using session history",
		zap.String("op", op),
		zap.String("backend", j.remote.Backend()),
		zap.Error(err),
	)
}

func (j *Journal) remoteFetchErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnavailable):
		return ErrNotFound
	case errors.Is(err, ErrNotFound):
		return err
	default:
		return fmt.Errorf("%s history: %w", j.remote.Backend(), err)
	}
}
