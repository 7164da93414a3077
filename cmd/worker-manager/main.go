// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"reco-workers/internal/common/camunda"
	"reco-workers/internal/common/config"
	"reco-workers/internal/common/database"
	"reco-workers/internal/common/googleplaces"
	"reco-workers/internal/common/kakaolocal"
	"reco-workers/internal/common/logger"
	"reco-workers/internal/common/observability"
	"reco-workers/internal/recommend/matcher"
	"reco-workers/internal/recommend/schedule"
	"reco-workers/internal/recommend/selector"
	"reco-workers/internal/storage"
	rf "reco-workers/internal/workers/recommendation/record-feedback"
	rr "reco-workers/internal/workers/recommendation/recommend-restaurants"
	"reco-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

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

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.Observability, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checkRegistry(zapLog)

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFromApp(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("failed to connect to Zeebe", zap.Error(err))
	}
	defer func() { _ = zeebe.Close() }()
	zapLog.Info("Zeebe client connected", zap.String("address", cfg.Camunda.BrokerAddress))

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		client, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return err
		}
		pg = client
		return nil
	}, 5, time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() { _ = pg.Close() }()

	if !cfg.Database.Postgres.SkipMigrations {
		if err := storage.Migrate(ctx, pg, log); err != nil {
			zapLog.Fatal("schema migration failed", zap.Error(err))
		}
	}

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		client, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return err
		}
		rdb = client
		return nil
	}, 5, time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	// --- Elasticsearch (optional catalog mirror) ---
	var catalogIndex *storage.CatalogIndex
	if cfg.Database.Elasticsearch.Enabled() {
		err = retryWithBackoff(func() error {
			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := es.Ping(ctx); err != nil {
				return err
			}
			idx := storage.NewCatalogIndex(es, cfg.Database.Elasticsearch.CatalogIndex)
			if err := idx.EnsureIndex(ctx); err != nil {
				return err
			}
			catalogIndex = idx
			return nil
		}, 3, time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("catalog mirror disabled", zap.Error(err))
		}
	}

	profiles := storage.NewProfileCache(
		storage.NewPreferenceStore(pg),
		rdb,
		config.GetDuration(cfg.Database.Redis.ProfileCacheTTL),
		log,
	)

	var workers []*camunda.Worker
	start := func(h camunda.JobHandler, wcfg config.WorkerConfig) {
		w := camunda.NewWorker(zeebe.GetClient(), h, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, log)
		if w.Start() {
			workers = append(workers, w)
		}
	}

	// Recommend Restaurants
	if config.IsWorkerEnabled(cfg, rr.TaskType) {
		kakao := kakaolocal.NewClient(cfg.Providers.Kakao, cfg.Providers.Breaker, log)
		r := cfg.Recommendation

		deps := rr.ServiceDependencies{
			Primary: googleplaces.NewClient(cfg.Providers.Google, cfg.Providers.Breaker, r.MaxReviews, log),
			Matcher: matcher.New(kakao, matcher.Config{
				RadiusMeters:        r.MatchRadiusMeters,
				CategoryRadiusFloor: r.CategoryRadiusFloor,
				CategoryResultSize:  r.CategoryResultSize,
				CategoryCodes:       []string{kakaolocal.CategoryRestaurant, kakaolocal.CategoryCafe},
			}, matcher.NewRedisCache(rdb, config.GetDuration(cfg.Database.Redis.MatchCacheTTL)), log),
			Details:       kakao,
			Profiles:      profiles,
			Ledger:        storage.NewLedgerStore(pg),
			Catalog:       storage.NewCatalogStore(pg),
			Evaluator:     schedule.NewEvaluator(schedule.LoadLocation(r.Timezone)),
			Selector:      selector.New(r.TopN, nil),
			Observability: obs,
		}
		if catalogIndex != nil {
			deps.Index = catalogIndex
		}

		handler, err := rr.NewHandler(rr.HandlerOptions{
			AppConfig:    cfg,
			Logger:       log,
			Dependencies: deps,
		})
		if err != nil {
			zapLog.Fatal("failed to create recommend-restaurants handler", zap.Error(err))
		}
		start(handler, config.GetWorkerConfig(cfg, rr.TaskType))
	}

	// Record Feedback
	if config.IsWorkerEnabled(cfg, rf.TaskType) {
		handler, err := rf.NewHandler(rf.HandlerOptions{
			AppConfig: cfg,
			Logger:    log,
			Dependencies: rf.ServiceDependencies{
				Store:    storage.NewFeedbackStore(pg),
				Profiles: profiles,
			},
		})
		if err != nil {
			zapLog.Fatal("failed to create record-feedback handler", zap.Error(err))
		}
		start(handler, config.GetWorkerConfig(cfg, rf.TaskType))
	}
	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: newHealthMux(map[string]func(context.Context) error{
			"zeebe":    zeebe.HealthCheck,
			"postgres": pg.Ping,
			"redis":    rdb.Ping,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// checkRegistry warns when a served task type is missing from the activity
// registry published to process modellers.
func checkRegistry(log *zap.Logger) {
	path := os.Getenv("ACTIVITY_REGISTRY_PATH")
	if path == "" {
		path = defaultRegistryPath
	}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry unavailable", zap.String("path", path), zap.Error(err))
		return
	}
	for _, taskType := range []string{rr.TaskType, rf.TaskType} {
		if _, ok := reg.FindByTaskType(taskType); !ok {
			log.Warn("task type missing from activity registry", zap.String("taskType", taskType))
		}
	}
}
