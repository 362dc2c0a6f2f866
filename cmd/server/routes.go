package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", s.handleCalculate)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleSession)
			r.Put("/inputs", s.handleSetInputs)
			r.Post("/materials", s.handleAddMaterial)
			r.Put("/materials/{index}", s.handleUpdateMaterial)
			r.Delete("/materials/{index}", s.handleRemoveMaterial)
			r.Get("/chart.png", s.handleChart)
			r.Post("/save", s.handleSave)
			r.Get("/document", s.handleLastDocument)
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleHistory)
			r.Get("/{id}/document", s.handleHistoryDocument)
			r.Get("/{id}/text", s.handleHistoryText)
			r.Post("/{id}/load", s.handleHistoryLoad)
		})
	})

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		}

		switch {
		case status >= 500:
			s.log.Error("http request", fields...)
		case status >= 400:
			s.log.Warn("http request", fields...)
		default:
			s.log.Info("http request", fields...)
		}
	})
}
