package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Cleaner removes state that has outlived its usefulness
type Cleaner interface {
	CleanupExpired(ctx context.Context) (resetTokens int64, revoked int, err error)
}

// MaintenanceService periodically clears expired reset tokens and denylist entries
type MaintenanceService struct {
	cleaner  Cleaner
	interval time.Duration
}

// NewMaintenanceService creates a new MaintenanceService
func NewMaintenanceService(cleaner Cleaner, interval time.Duration) *MaintenanceService {
	return &MaintenanceService{cleaner: cleaner, interval: interval}
}

// RunOnce performs a single sweep
func (m *MaintenanceService) RunOnce(ctx context.Context) {
	resetTokens, revoked, err := m.cleaner.CleanupExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Maintenance sweep failed")
		return
	}

	log.Debug().
		Int64("reset_tokens_cleared", resetTokens).
		Int("denylist_pruned", revoked).
		Msg("Maintenance sweep completed")
}

// Start runs a sweep every interval until ctx is cancelled
func (m *MaintenanceService) Start(ctx context.Context) {
	if m.interval <= 0 {
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Maintenance stopped")
			return
		case <-ticker.C:
			m.RunOnce(ctx)
		}
	}
}
