// Package snapshot holds the immutable, versioned record of one calculation.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/Simplici0/unitecon/internal/clock"
	"github.com/Simplici0/unitecon/internal/pricing"
)

// SchemaVersion is stamped on every new snapshot. Version 1 is the layout
// written before inputs and metrics were renamed; Decode migrates it.
const SchemaVersion = 2

var (
	ErrUnsupportedSchema = errors.New("unsupported snapshot schema")
	ErrMalformed         = errors.New("malformed snapshot")
)

// Snapshot is a self-contained copy of inputs, materials and derived metrics.
// Inputs never carry materials or the title; both live at the top level.
type Snapshot struct {
	SchemaVersion int                    `json:"schemaVersion"`
	SavedAt       string                 `json:"savedAt"`
	Title         string                 `json:"title"`
	Inputs        pricing.BatchInputs    `json:"inputs"`
	Materials     []pricing.MaterialLine `json:"materials"`
	Metrics       pricing.Metrics        `json:"metrics"`
}

// Build assembles a snapshot. The materials are copied, so later edits of the
// live buffer cannot reach a saved snapshot.
func Build(inputs pricing.BatchInputs, materials []pricing.MaterialLine, metrics pricing.Metrics, title string, now time.Time) Snapshot {
	inputs.Materials = nil
	inputs.Title = ""

	return Snapshot{
		SchemaVersion: SchemaVersion,
		SavedAt:       clock.Stamp(now),
		Title:         title,
		Inputs:        inputs,
		Materials:     copyMaterials(materials),
		Metrics:       metrics,
	}
}

// Restore returns the inputs to load back into the editing buffer: every
// field, materials and title included, comes from the snapshot.
func (s Snapshot) Restore() pricing.BatchInputs {
	in := s.Inputs
	in.Materials = copyMaterials(s.Materials)
	in.Title = s.Title
	return in
}

// Equal reports whether two snapshots describe the same calculation.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.SchemaVersion == o.SchemaVersion &&
		s.SavedAt == o.SavedAt &&
		s.Title == o.Title &&
		s.Inputs.Equal(o.Inputs) &&
		slices.EqualFunc(s.Materials, o.Materials, pricing.MaterialLine.Equal) &&
		s.Metrics.Equal(o.Metrics)
}

// Encode serializes a snapshot to JSON.
func Encode(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot of any known schema version and returns it in the
// current layout.
func Decode(data []byte) (Snapshot, error) {
	var probe struct {
		SchemaVersion *int `json:"schemaVersion"`
		Schema        *int `json:"schema"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch {
	case probe.SchemaVersion != nil && *probe.SchemaVersion == SchemaVersion:
		var s Snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		s.Materials = copyMaterials(s.Materials)
		s.Inputs.Materials = nil
		s.Inputs.Title = ""
		return s, nil
	case probe.SchemaVersion != nil:
		return Snapshot{}, fmt.Errorf("%w: version %d", ErrUnsupportedSchema, *probe.SchemaVersion)
	case probe.Schema != nil && *probe.Schema == 1:
		return decodeV1(data)
	case probe.Schema != nil:
		return Snapshot{}, fmt.Errorf("%w: version %d", ErrUnsupportedSchema, *probe.Schema)
	default:
		return Snapshot{}, fmt.Errorf("%w: no schema version", ErrMalformed)
	}
}

func copyMaterials(materials []pricing.MaterialLine) []pricing.MaterialLine {
	return lo.Map(materials, func(m pricing.MaterialLine, _ int) pricing.MaterialLine {
		return m
	})
}
