package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/slotworks/salon-scheduler/internal/config"
	dbpkg "github.com/slotworks/salon-scheduler/internal/db"
	"github.com/slotworks/salon-scheduler/internal/lifecycle"
	"github.com/slotworks/salon-scheduler/internal/logger"
	"github.com/slotworks/salon-scheduler/internal/routes"
)

func main() {
	cfg := config.Load()

	log := logger.Get()
	defer logger.Sync()

	db := dbpkg.NewDB(cfg)

	sched := lifecycle.NewAsynqScheduler(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}, log)
	defer sched.Close()

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, sched, log)

	log.Info("server running", zap.String("addr", cfg.Addr()))
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
