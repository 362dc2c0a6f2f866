package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/unitecon/internal/history"
	"github.com/Simplici0/unitecon/internal/metrics"
	"github.com/Simplici0/unitecon/internal/pricing"
	"github.com/Simplici0/unitecon/internal/report"
	"github.com/Simplici0/unitecon/internal/session"
)

const maxHistoryLimit = 500

type server struct {
	session      *session.Service
	log          *zap.Logger
	metrics      *metrics.Metrics
	historyLimit int
}

type calculation struct {
	Inputs    pricing.BatchInputs     `json:"inputs"`
	Metrics   pricing.Metrics         `json:"metrics"`
	Breakdown []pricing.BreakdownLine `json:"breakdown"`
}

type historyItem struct {
	history.Summary
	Label string `json:"label"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var in pricing.BatchInputs
	if !s.decode(w, r, &in) {
		return
	}

	in = pricing.Clamp(in)
	m := pricing.Compute(in)
	s.metrics.IncCalculations()

	writeJSON(w, http.StatusOK, calculation{Inputs: in, Metrics: m, Breakdown: pricing.Breakdown(in, m)})
}

func (s *server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.State())
}

func (s *server) handleSetInputs(w http.ResponseWriter, r *http.Request) {
	var in pricing.BatchInputs
	if !s.decode(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, s.session.SetInputs(in))
}

func (s *server) handleAddMaterial(w http.ResponseWriter, r *http.Request) {
	var line pricing.MaterialLine
	if !s.decode(w, r, &line) {
		return
	}
	writeJSON(w, http.StatusOK, s.session.AddMaterial(line))
}

func (s *server) handleUpdateMaterial(w http.ResponseWriter, r *http.Request) {
	index, ok := materialIndex(w, r)
	if !ok {
		return
	}
	var line pricing.MaterialLine
	if !s.decode(w, r, &line) {
		return
	}

	st, err := s.session.UpdateMaterial(index, line)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) handleRemoveMaterial(w http.ResponseWriter, r *http.Request) {
	index, ok := materialIndex(w, r)
	if !ok {
		return
	}

	st, err := s.session.RemoveMaterial(index)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) handleChart(w http.ResponseWriter, r *http.Request) {
	png, err := s.session.Chart()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *server) handleSave(w http.ResponseWriter, r *http.Request) {
	res, err := s.session.Save(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *server) handleLastDocument(w http.ResponseWriter, r *http.Request) {
	id, doc, err := s.session.LastDocument()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeDocument(w, id, doc)
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	summaries, err := s.session.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	items := make([]historyItem, 0, len(summaries))
	for _, sum := range summaries {
		items = append(items, historyItem{Summary: sum, Label: sum.Label()})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleHistoryDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.session.Document(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeDocument(w, id, doc)
}

func (s *server) handleHistoryText(w http.ResponseWriter, r *http.Request) {
	text, err := s.session.Text(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(text)
}

func (s *server) handleHistoryLoad(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func materialIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid material index", http.StatusBadRequest)
		return 0, false
	}
	return index, true
}

func (s *server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, history.ErrNotFound), errors.Is(err, session.ErrNoDocument):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, session.ErrMaterialIndex):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		s.log.Error("request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeDocument(w http.ResponseWriter, id string, doc []byte) {
	w.Header().Set("Content-Type", report.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="calc_%s.pdf"`, id))
	_, _ = w.Write(doc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
