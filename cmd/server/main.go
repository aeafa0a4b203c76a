package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lokal-bknd/internal/auth"
	"lokal-bknd/internal/config"
	"lokal-bknd/internal/database"
	"lokal-bknd/internal/logger"
	"lokal-bknd/internal/routes"
	"lokal-bknd/internal/scheduler"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	logr := logger.New(cfg)
	db, err := database.New(cfg.DatabaseURL, cfg)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	jwtMgr, err := auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, "lokal")
	if err != nil {
		logr.Fatal("failed to init jwt manager", zap.Error(err))
	}

	svcs := routes.NewServices(db, cfg, logr, jwtMgr)
	r := routes.NewRouter(svcs, cfg, logr)

	// Seed runs can exceed two minutes against a busy Overpass mirror, so the
	// write timeout is generous.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	sched := scheduler.New(cfg, svcs.Seed, logr)
	if err := sched.Start(rootCtx); err != nil {
		logr.Fatal("failed to start seed scheduler", zap.Error(err))
	}
	defer sched.Stop()

	go func() {
		logr.Info("server started", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Fatal("server forced to shutdown", zap.Error(err))
	}

	logr.Info("server exited gracefully")
}
