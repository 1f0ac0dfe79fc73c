package main

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/slotworks/salon-scheduler/internal/config"
	dbpkg "github.com/slotworks/salon-scheduler/internal/db"
	infraRepo "github.com/slotworks/salon-scheduler/internal/infra/repository"
	"github.com/slotworks/salon-scheduler/internal/lifecycle"
	"github.com/slotworks/salon-scheduler/internal/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Get()
	defer logger.Sync()

	// Fail fast on a broken queue backend instead of looping on fetch
	// errors inside the asynq poller.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Fatal("redis unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	_ = rdb.Close()

	db := dbpkg.NewDB(cfg)
	repo := infraRepo.NewSchedulingGormRepository(db)

	notifier := &lifecycle.LogNotifier{Log: log}
	handler := lifecycle.NewHandler(repo, notifier, log)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}

	srv := lifecycle.NewServer(redisOpt, cfg.WorkerConcurrency, log)
	mux := lifecycle.NewMux(handler)

	log.Info("lifecycle worker running",
		zap.String("redis_addr", cfg.RedisAddr),
		zap.Int("concurrency", cfg.WorkerConcurrency),
	)
	if err := srv.Run(mux); err != nil {
		log.Fatal("worker stopped", zap.Error(err))
	}
}
