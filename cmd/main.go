package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"jobwarehouse/etl-service/internal/config"
	"jobwarehouse/etl-service/internal/db"
	"jobwarehouse/etl-service/internal/extract"
	"jobwarehouse/etl-service/internal/pipeline"
	"jobwarehouse/etl-service/internal/scheduler"
	"jobwarehouse/etl-service/internal/warehouse"
)

const (
	runLockKey        = "jobwarehouse:run_lock"
	failureCounterKey = "jobwarehouse:consecutive_failures"
	failureCounterTTL = 7 * 24 * time.Hour
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("zap.NewProduction: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}
	defer rdb.Close()

	query := extract.SearchQuery{
		Term:       cfg.SearchTerm,
		NumPages:   cfg.NumPages,
		Country:    cfg.Country,
		DatePosted: cfg.DatePosted,
	}
	gate := extract.NewHTTPGate(cfg.APIBaseURL, cfg.APIKey, query,
		cfg.ReadyInterval, cfg.ReadyTimeout, logger.Named("gate"))
	fetcher := extract.NewFetcher(cfg.APIKey, logger.Named("extract"))
	loader := warehouse.NewLoader(pool, logger.Named("warehouse"))
	lock := pipeline.NewRedisRunLock(rdb, runLockKey, cfg.RunLockTTL)

	pipe := pipeline.New(cfg.RefDataDir, gate, fetcher, loader, lock, logger.Named("pipeline"))
	failures := scheduler.NewRedisFailureCounter(rdb, failureCounterKey, failureCounterTTL)

	sched := scheduler.New(pipe, failures, cfg.MaxFailures, cfg.CronSpec, logger.Named("scheduler"))
	if err := sched.Start(ctx); err != nil {
		logger.Fatal("scheduler start failed", zap.Error(err))
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	sched.Stop()
	logger.Info("shutdown complete")
}
