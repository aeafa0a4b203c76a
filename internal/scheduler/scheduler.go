package scheduler

import (
	"context"
	"fmt"

	"lokal-bknd/internal/config"
	"lokal-bknd/internal/logger"
	"lokal-bknd/internal/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler re-runs the OSM ingestion on a cron schedule so listings stay
// fresh without anyone hitting the seed endpoint manually.
type Scheduler struct {
	cfg  *config.Config
	seed *services.SeedService
	logr *logger.Logger
	cron *cron.Cron
}

func New(cfg *config.Config, seed *services.SeedService, logr *logger.Logger) *Scheduler {
	return &Scheduler{
		cfg:  cfg,
		seed: seed,
		logr: logr,
		cron: cron.New(),
	}
}

// Start registers the cron job when SEED_CRON is configured; with no
// schedule the scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.SeedCron == "" {
		s.logr.Info("no seed schedule configured, ingestion is manual only")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.SeedCron, func() {
		result, err := s.seed.Seed(ctx, services.SeedRequest{Limit: s.cfg.SeedLimit})
		if err != nil {
			s.logr.Error("scheduled seed run failed", zap.Error(err))
			return
		}
		s.logr.Info("scheduled seed run finished",
			zap.Int("count", result.Count),
			zap.Strings("warnings", result.Warnings))
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", s.cfg.SeedCron, err)
	}

	s.cron.Start()
	s.logr.Info("seed scheduler started", zap.String("cron", s.cfg.SeedCron))
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
