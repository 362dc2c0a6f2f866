package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Simplici0/unitecon/internal/clock"
	"github.com/Simplici0/unitecon/internal/config"
	"github.com/Simplici0/unitecon/internal/history"
	"github.com/Simplici0/unitecon/internal/logger"
	"github.com/Simplici0/unitecon/internal/metrics"
	"github.com/Simplici0/unitecon/internal/report"
	"github.com/Simplici0/unitecon/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.LogEncoding())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.New(cfg.ReportTimezone)
	m := metrics.New(prometheus.DefaultRegisterer)

	remote, closeRemote := historyStore(ctx, cfg, clk, lg, m)
	defer closeRemote()

	journal := history.NewJournal(remote, history.NewMemory(clk), cfg.HistoryTimeout, lg, m)
	sess := session.New(session.Deps{
		Journal:  journal,
		Renderer: report.NewPDFRenderer(cfg.ReportFontPath, lg),
		Charter:  report.NewCharter(cfg.ReportFontPath, lg),
		Clock:    clk,
		Log:      lg,
		Metrics:  m,
	})

	srv := &server{
		session:      sess,
		log:          lg,
		metrics:      m,
		historyLimit: cfg.HistoryLimit,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			lg.Warn("graceful shutdown failed", zap.Error(err))
		}
	}()

	lg.Info("listening",
		zap.String("addr", httpServer.Addr),
		zap.String("history_backend", journal.Backend()),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal("server stopped", zap.Error(err))
	}
}
