// Package session owns the single editing buffer: the live inputs, their
// metrics, and the save and load flows around the history journal.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/Simplici0/unitecon/internal/clock"
	"github.com/Simplici0/unitecon/internal/history"
	"github.com/Simplici0/unitecon/internal/metrics"
	"github.com/Simplici0/unitecon/internal/pricing"
	"github.com/Simplici0/unitecon/internal/report"
	"github.com/Simplici0/unitecon/internal/seed"
	"github.com/Simplici0/unitecon/internal/snapshot"
)

var (
	ErrMaterialIndex = errors.New("material index out of range")
	ErrNoDocument    = errors.New("no document rendered in this session")
)

// State is the current editing buffer with its derived values. Materials are
// listed separately from Inputs.
type State struct {
	Inputs    pricing.BatchInputs     `json:"inputs"`
	Materials []pricing.MaterialLine  `json:"materials"`
	Metrics   pricing.Metrics         `json:"metrics"`
	Breakdown []pricing.BreakdownLine `json:"breakdown"`
}

// SaveResult describes a completed save. Document is false when the report
// could not be rendered; the snapshot is saved regardless.
type SaveResult struct {
	history.Saved
	SavedAt  string `json:"savedAt"`
	Document bool   `json:"document"`
	Warning  string `json:"warning,omitempty"`
}

// Deps are the collaborators of a Service.
type Deps struct {
	Journal  *history.Journal
	Renderer report.Renderer
	Charter  *report.Charter
	Clock    clock.Clock
	Log      *zap.Logger
	Metrics  *metrics.Metrics
}

type lastDocument struct {
	id   string
	data []byte
}

// Service serializes every operation on the buffer with one mutex.
type Service struct {
	mu      sync.Mutex
	inputs  pricing.BatchInputs
	metrics pricing.Metrics
	last    *lastDocument

	deps Deps
}

// New starts a session from the seeded defaults.
func New(deps Deps) *Service {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	s := &Service{deps: deps}
	s.replace(seed.Inputs())
	return s
}

// State returns a copy of the buffer.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// SetInputs overwrites every scalar input and the title. Materials are kept;
// they change only through the material operations.
func (s *Service) SetInputs(in pricing.BatchInputs) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	in.Materials = s.inputs.Materials
	s.replace(in)
	return s.stateLocked()
}

func (s *Service) AddMaterial(line pricing.MaterialLine) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := s.inputs
	in.Materials = append(slices.Clone(in.Materials), line)
	s.replace(in)
	return s.stateLocked()
}

func (s *Service) UpdateMaterial(index int, line pricing.MaterialLine) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.inputs.Materials) {
		return State{}, fmt.Errorf("%w: %d", ErrMaterialIndex, index)
	}

	in := s.inputs
	in.Materials = slices.Clone(in.Materials)
	in.Materials[index] = line
	s.replace(in)
	return s.stateLocked(), nil
}

func (s *Service) RemoveMaterial(index int) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.inputs.Materials) {
		return State{}, fmt.Errorf("%w: %d", ErrMaterialIndex, index)
	}

	in := s.inputs
	in.Materials = slices.Delete(slices.Clone(in.Materials), index, index+1)
	s.replace(in)
	return s.stateLocked(), nil
}

// Chart draws the cost structure of the current buffer.
func (s *Service) Chart() ([]byte, error) {
	s.mu.Lock()
	m := s.metrics
	s.mu.Unlock()

	return s.deps.Charter.PNG(m)
}

// Save snapshots the buffer, renders its report and stores both. A failed
// render is reported in the result but does not stop the save.
func (s *Service) Save(ctx context.Context) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := s.inputs
	snap := snapshot.Build(in, in.Materials, s.metrics, in.Title, s.deps.Clock.Now())

	var warning string
	doc, err := s.deps.Renderer.Render(snap)
	if err != nil {
		s.deps.Metrics.IncRenderFailures()
		s.deps.Log.Warn("report rendering failed, saving without document", zap.Error(err))
		warning = "report document is unavailable"
		doc = nil
	}

	saved, err := s.deps.Journal.Save(ctx, snap, doc)
	if err != nil {
		return SaveResult{}, err
	}

	s.last = nil
	if doc != nil {
		s.last = &lastDocument{id: saved.ID, data: doc}
	}

	s.deps.Log.Info("calculation saved",
		zap.String("id", saved.ID),
		zap.String("backend", saved.Backend),
		zap.Bool("document", doc != nil),
	)

	return SaveResult{Saved: saved, SavedAt: snap.SavedAt, Document: doc != nil, Warning: warning}, nil
}

// LastDocument returns the document rendered by the latest save.
func (s *Service) LastDocument() (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return "", nil, ErrNoDocument
	}
	return s.last.id, slices.Clone(s.last.data), nil
}

// Load restores a saved calculation into the buffer. Every input, the
// materials and the title are overwritten, not merged.
func (s *Service) Load(ctx context.Context, id string) (State, error) {
	snap, err := s.deps.Journal.FetchSnapshot(ctx, id)
	if err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.replace(snap.Restore())
	return s.stateLocked(), nil
}

func (s *Service) History(ctx context.Context, limit int) ([]history.Summary, error) {
	return s.deps.Journal.List(ctx, limit)
}

func (s *Service) Document(ctx context.Context, id string) ([]byte, error) {
	return s.deps.Journal.FetchDocument(ctx, id)
}

// Text renders a saved calculation as plain text.
func (s *Service) Text(ctx context.Context, id string) ([]byte, error) {
	snap, err := s.deps.Journal.FetchSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return report.TextRenderer{}.Render(snap)
}

// replace clamps in, recomputes and installs it. Callers hold mu.
func (s *Service) replace(in pricing.BatchInputs) {
	s.inputs = pricing.Clamp(in)
	s.metrics = pricing.Compute(s.inputs)
	s.deps.Metrics.IncCalculations()
}

func (s *Service) stateLocked() State {
	in := s.inputs
	in.Materials = nil

	materials := slices.Clone(s.inputs.Materials)
	if materials == nil {
		materials = []pricing.MaterialLine{}
	}

	return State{
		Inputs:    in,
		Materials: materials,
		Metrics:   s.metrics,
		Breakdown: pricing.Breakdown(s.inputs, s.metrics),
	}
}
