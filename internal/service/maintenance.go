package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"meucarrim/internal/config"
	"meucarrim/internal/repository"
)

// MaintenanceService runs the scheduled housekeeping jobs: observation
// retention and the daily data summary log line.
type MaintenanceService struct {
	Repo   repository.Repository
	Logger *zap.Logger
	Config config.RetentionConfig
}

// PruneObservations deletes observations older than the configured maximum
// age. No-op unless retention is enabled.
func (s *MaintenanceService) PruneObservations(ctx context.Context) error {
	if s == nil || !s.Config.Enabled || s.Config.MaxAgeDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -s.Config.MaxAgeDays)
	n, err := s.Repo.DeleteObservationsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if n > 0 && s.Logger != nil {
		s.Logger.Info("pruned old price observations",
			zap.Int64("count", n),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}

// LogDailySummary emits one log line with table sizes.
func (s *MaintenanceService) LogDailySummary(ctx context.Context) {
	if s == nil || s.Logger == nil {
		return
	}
	users, err := s.Repo.CountUsers(ctx)
	if err != nil {
		s.Logger.Warn("daily summary failed", zap.Error(err))
		return
	}
	products, _ := s.Repo.CountProducts(ctx, repository.ListProductsParams{})
	markets, _ := s.Repo.CountMarkets(ctx, repository.ListMarketsParams{})
	observations, _ := s.Repo.CountObservations(ctx, repository.ListObservationsParams{})
	s.Logger.Info("daily summary",
		zap.Int64("users", users),
		zap.Int64("products", products),
		zap.Int64("markets", markets),
		zap.Int64("observations", observations),
	)
}
