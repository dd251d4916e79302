package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timetablegen/internal/model"
	"timetablegen/internal/opb"
	"timetablegen/internal/server"
	"timetablegen/internal/store"
	"timetablegen/pkg/config"
	"timetablegen/pkg/logger"
)

var backends = map[string]func() opb.Backend{
	"gophersat":   opb.NewGophersatBackend,
	"roundingsat": opb.NewRoundingsatBackend,
	"backtrack":   opb.NewBacktrackBackend,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	scheduler := model.NewScheduler(backends[cfg.Solver.Backend](), model.Options{
		DefaultBudget: cfg.Solver.MaxTime,
		Logger:        logr,
	})

	srv := server.New(scheduler, store.New(), logr, cfg.Worker.Count, cfg.Worker.BufferSize)
	defer srv.Close()

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting",
		zap.String("addr", addr),
		zap.String("env", cfg.Env),
		zap.String("backend", cfg.Solver.Backend),
	)
	if err := srv.Router().Run(addr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}
