package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hospitalops/cftflow/internal/catalog"
	"github.com/hospitalops/cftflow/internal/config"
	"github.com/hospitalops/cftflow/internal/draft"
	v1 "github.com/hospitalops/cftflow/internal/handler/v1"
	"github.com/hospitalops/cftflow/internal/notify"
	"github.com/hospitalops/cftflow/internal/repository/memory"
	"github.com/hospitalops/cftflow/internal/service"
	"github.com/hospitalops/cftflow/pkg/logger"
	"github.com/hospitalops/cftflow/pkg/metrics"
	"github.com/hospitalops/cftflow/pkg/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "loading configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "building logger:", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Tracing.Enabled {
		tp, err := tracer.Init(cfg.Tracing)
		if err != nil {
			log.Fatal("initializing tracer", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Warn("tracer shutdown", zap.Error(err))
			}
		}()
	}

	cat, err := catalog.Load()
	if err != nil {
		log.Fatal("loading catalog", zap.Error(err))
	}

	repo := memory.NewRequestRepository()
	if cfg.App.SeedDemoData {
		if err := service.SeedDemoRequests(context.Background(), repo); err != nil {
			log.Fatal("seeding demo requests", zap.Error(err))
		}
		log.Info("demo requests seeded")
	}

	drafts, err := draft.Open(cfg.Draft.Path, log)
	if err != nil {
		log.Fatal("opening draft store", zap.Error(err))
	}
	defer drafts.Close() //nolint:errcheck

	col := metrics.NewCollector(cfg.App.Name)
	sink := notify.NewLogSink(log)

	requestSvc := service.NewRequestService(repo, cat, log)
	submissionSvc := service.NewSubmissionService(requestSvc, drafts, cat, sink, log)

	router := v1.NewRouter(
		v1.NewWizardHandler(submissionSvc, col),
		v1.NewRequestHandler(requestSvc, col),
		v1.NewCatalogHandler(cat),
		col,
		log,
		cfg.Tracing.ServiceName,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server listening",
			zap.String("addr", server.Addr),
			zap.String("environment", cfg.App.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down, draining in-flight requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("forced shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
