// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"staffing-workers/internal/common/aws"
	"staffing-workers/internal/common/camunda"
	"staffing-workers/internal/common/config"
	"staffing-workers/internal/common/database"
	"staffing-workers/internal/common/embedding"
	commonhttp "staffing-workers/internal/common/http"
	"staffing-workers/internal/common/logger"
	"staffing-workers/internal/common/metrics"
	"staffing-workers/internal/common/observability"
	"staffing-workers/internal/engine"
	"staffing-workers/pkg/registry"

	nr "staffing-workers/internal/workers/communication/notify-recommendations"
	ac "staffing-workers/internal/workers/recommendation/analyze-cv"
	fcp "staffing-workers/internal/workers/recommendation/fetch-candidate-pool"
	rc "staffing-workers/internal/workers/recommendation/rank-candidates"
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
			delay *= 2 // Exponential backoff
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

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	// The activity catalogue must be coherent before anything connects.
	if err := registry.BuiltIn().Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Camunda Client with retry ---
	var broker *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		broker, err = camunda.Connect(cfg.Camunda, zapLog, obs)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe broker connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Build the ranking engine ---
	engineOpts := []engine.Option{}
	if cfg.APIs.Embedding.BaseURL != "" {
		provider := embedding.NewClient(embedding.Config{
			BaseURL: cfg.APIs.Embedding.BaseURL,
			APIKey:  cfg.APIs.Embedding.APIKey,
			Model:   cfg.APIs.Embedding.Model,
			Timeout: config.GetDuration(cfg.APIs.Embedding.Timeout),
		})
		engineOpts = append(engineOpts, engine.WithTextSimilarity(
			engine.NewSemantic(provider, log, metrics.EmbeddingFallbacks.Inc),
		))
		zapLog.Info("Semantic text similarity enabled",
			zap.String("baseURL", cfg.APIs.Embedding.BaseURL),
			zap.String("model", cfg.APIs.Embedding.Model),
		)
	} else {
		zapLog.Info("Embedding API not configured, using lexical text similarity")
	}

	rankingEngine, err := engine.New(cfg.Engine, log, engineOpts...)
	if err != nil {
		zapLog.Fatal("ranking engine construction failed", zap.Error(err))
	}

	// --- Register Workers ---

	if config.IsWorkerEnabled(cfg, fcp.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, fcp.TaskType)
		handler := fcp.NewHandler(
			&fcp.Config{
				Timeout:     config.GetDuration(wcfg.Timeout),
				DefaultRole: "stagiaire",
				CacheTTL:    15 * time.Minute,
			},
			fcp.NewRepository(pg.DB), redis, log,
		)
		broker.StartWorker(fcp.TaskType, wcfg, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, ac.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, ac.TaskType)
		downloadTimeout := config.GetDuration(cfg.CVAnalysis.DownloadTimeout)
		handler := ac.NewHandler(
			&ac.Config{
				Timeout:          config.GetDuration(wcfg.Timeout),
				DownloadTimeout:  downloadTimeout,
				MaxDocumentBytes: cfg.CVAnalysis.MaxDocumentBytes,
				CacheTTL:         time.Duration(cfg.CVAnalysis.CacheTTLHours) * time.Hour,
			},
			commonhttp.NewClient(downloadTimeout), redis, log,
		)
		broker.StartWorker(ac.TaskType, wcfg, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, rc.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, rc.TaskType)
		handler := rc.NewHandler(
			&rc.Config{
				Timeout: config.GetDuration(wcfg.Timeout),
				Persist: true,
			},
			rankingEngine, rc.NewStore(pg.DB), log,
		)
		broker.StartWorker(rc.TaskType, wcfg, handler.Handle)
	}

	if config.IsWorkerEnabled(cfg, nr.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, nr.TaskType)
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("SES client failed", zap.Error(err))
		}
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("SNS client failed", zap.Error(err))
		}
		handler := nr.NewHandler(
			&nr.Config{
				Timeout:           config.GetDuration(wcfg.Timeout),
				EmailEnabled:      cfg.Notifications.Email.Enabled,
				SMSEnabled:        cfg.Notifications.SMS.Enabled,
				FromEmail:         cfg.Notifications.Email.FromEmail,
				AWSRegion:         cfg.Notifications.AWS.Region,
				SMSScoreThreshold: cfg.Notifications.SMS.ScoreThreshold,
				MaxListed:         5,
			},
			sesClient, snsClient, log,
		)
		broker.StartWorker(nr.TaskType, wcfg, handler.Handle)
	}

	zapLog.Info("All workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			status := "ready"
			code := http.StatusOK
			if err := broker.HealthCheck(r.Context()); err != nil {
				status = "not ready"
				code = http.StatusServiceUnavailable
			}
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := broker.Shutdown(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
