package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	_ "time/tzdata"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/riskibarqy/league-vault/internal/app"
	"github.com/riskibarqy/league-vault/internal/config"
	"github.com/riskibarqy/league-vault/internal/observability"
	"github.com/riskibarqy/league-vault/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	if cfg.SchedulerEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.Scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("weekly scheduler stopped", "error", err)
			}
		}()
	} else {
		logger.Info("weekly scheduler disabled", "reason", "SCHEDULER_ENABLED=false")
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exitCode := 0
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		exitCode = 1
	}
	wg.Wait()
	a.Broker.Close()

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("uptrace shutdown failed", "error", err)
	}
	if err := stopProfiler(); err != nil {
		logger.Warn("pyroscope stop failed", "error", err)
	}

	logger.Info("http server stopped")
	if exitCode != 0 {
		_ = logger.Sync()
		os.Exit(exitCode)
	}
}
