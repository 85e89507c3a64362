// cmd/generation-worker/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coach-generation/internal/common/camunda"
	"coach-generation/internal/common/config"
	"coach-generation/internal/common/logger"
	"coach-generation/internal/common/observability"
	"coach-generation/internal/llm/calllog"
	"coach-generation/internal/llm/pipeline"
	"coach-generation/internal/llm/provider"
	"coach-generation/internal/llm/replay"
	"coach-generation/internal/workers/catalog"
	"coach-generation/internal/workers/generation"

	"go.uber.org/zap"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting generation worker...",
		zap.String("environment", cfg.App.Environment),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("model", cfg.LLM.Model),
		zap.Bool("replayForce", cfg.LLM.Replay.Force),
		zap.Bool("replayFallback", cfg.LLM.Replay.FallbackEnabled),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(ctx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llmClient, err := provider.New(provider.Config{
		APIKey:       cfg.LLM.APIKey,
		BaseURL:      cfg.LLM.BaseURL,
		Model:        cfg.LLM.Model,
		Timeout:      cfg.LLM.Timeout(),
		MaxRetries:   cfg.LLM.MaxRetries,
		RetryBackoff: config.GetDuration(cfg.LLM.RetryBackoffMs),
		Reasoning:    cfg.LLM.Reasoning,
		Tracer:       obs.Tracer(),
	}, log)
	if err != nil {
		zapLog.Fatal("llm provider config invalid", zap.Error(err))
	}
	zapLog.Info("LLM provider configured", zap.String("baseUrl", llmClient.BaseURL()))

	st, err := openStores(ctx, cfg, zapLog, log)
	if err != nil {
		zapLog.Fatal("storage init failed", zap.Error(err))
	}
	defer st.Close()

	engine := pipeline.NewEngine(
		llmClient,
		calllog.NewObserver(st.callLog, obs, log),
		replay.New(st.replay, replay.Options{
			FallbackEnabled: cfg.LLM.Replay.FallbackEnabled,
			Force:           cfg.LLM.Replay.Force,
		}, log),
		cfg.LLM.SchemaRepairRetries,
		log,
	)

	camundaClient, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFromApp(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	defer camundaClient.Close()
	zapLog.Info("Zeebe client connected successfully")
	st.checkers["camunda"] = camundaClient

	handlers, err := catalog.NewHandlers(generation.HandlerOptions{
		AppConfig: cfg,
		Camunda:   camundaClient,
		Engine:    engine,
		Logger:    log,
	})
	if err != nil {
		zapLog.Fatal("worker setup failed", zap.Error(err))
	}

	registered := 0
	for _, h := range handlers {
		if !h.IsEnabled() {
			zapLog.Info("worker disabled", zap.String("taskType", h.GetTaskType()))
			continue
		}
		if err := h.Register(); err != nil {
			zapLog.Fatal("worker registration failed", zap.String("taskType", h.GetTaskType()), zap.Error(err))
		}
		registered++
	}
	zapLog.Info("Workers registered", zap.Int("count", registered))

	srv := newHealthServer(cfg.Metrics.Address, handlers, st.checkers, log)
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, h := range handlers {
		h.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Generation worker stopped")
}
