// Package history stores saved calculations together with their rendered
// reports. A persistent backend is optional; Journal falls back to an
// in-process list when it is absent or failing.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/unitecon/internal/snapshot"
)

var (
	// ErrUnavailable means no persistent backend is configured.
	ErrUnavailable = errors.New("history backend not configured")
	// ErrNotFound means the record, or its document, does not exist.
	ErrNotFound = errors.New("history record not found")
)

// Record is one saved calculation. Document is nil when rendering failed.
type Record struct {
	ID        string
	CreatedAt time.Time
	Snapshot  snapshot.Snapshot
	Document  []byte
}

// Summary is the list view of a Record.
type Summary struct {
	ID          string          `json:"id"`
	CreatedAt   time.Time       `json:"createdAt"`
	Title       string          `json:"title"`
	SellPrice   decimal.Decimal `json:"sellPrice"`
	TotalProfit decimal.Decimal `json:"totalProfit"`
	MarginPct   decimal.Decimal `json:"marginPct"`
	HasDocument bool            `json:"hasDocument"`
}

const labelLayout = "2006-01-02 15:04:05"

// Label is the one-line caption shown in history pickers.
func (s Summary) Label() string {
	stamp := s.CreatedAt.Format(labelLayout)
	if s.Title == "" {
		return stamp
	}
	return stamp + " · " + s.Title
}

// Store is a history backend.
type Store interface {
	// Backend names the store for logs and metrics.
	Backend() string
	Save(ctx context.Context, s snapshot.Snapshot, document []byte) (string, error)
	// List returns at most limit summaries, newest first. A limit of zero or
	// less means no limit.
	List(ctx context.Context, limit int) ([]Summary, error)
	FetchDocument(ctx context.Context, id string) ([]byte, error)
	FetchSnapshot(ctx context.Context, id string) (snapshot.Snapshot, error)
}

func summarize(id string, createdAt time.Time, s snapshot.Snapshot, hasDocument bool) Summary {
	return Summary{
		ID:          id,
		CreatedAt:   createdAt,
		Title:       s.Title,
		SellPrice:   s.Inputs.SellPrice,
		TotalProfit: s.Metrics.TotalProfit,
		MarginPct:   s.Metrics.MarginPct,
		HasDocument: hasDocument,
	}
}

// Unconfigured is the Store used when no persistent backend is set up.
// Every operation reports ErrUnavailable.
type Unconfigured struct{}

func (Unconfigured) Backend() string { return "none" }

func (Unconfigured) Save(context.Context, snapshot.Snapshot, []byte) (string, error) {
	return "", ErrUnavailable
}

func (Unconfigured) List(context.Context, int) ([]Summary, error) {
	return nil, ErrUnavailable
}

func (Unconfigured) FetchDocument(context.Context, string) ([]byte, error) {
	return nil, ErrUnavailable
}

func (Unconfigured) FetchSnapshot(context.Context, string) (snapshot.Snapshot, error) {
	return snapshot.Snapshot{}, ErrUnavailable
}
