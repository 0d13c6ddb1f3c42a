package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hedera-order-bot-go/internal/models"
)

// Reconciler sweeps thresholds stuck in executing after a process crash
// between acquire and release. A row executing longer than the stuck timeout
// is returned to pending and annotated, making it eligible for re-acquire.
type Reconciler struct {
	db           *gorm.DB
	logger       *zap.Logger
	interval     time.Duration
	stuckTimeout time.Duration
	now          func() time.Time
}

// NewReconciler creates a reconciliation sweep over the threshold store.
func NewReconciler(db *gorm.DB, logger *zap.Logger, interval, stuckTimeout time.Duration) *Reconciler {
	return &Reconciler{
		db:           db,
		logger:       logger.Named("reconciler"),
		interval:     interval,
		stuckTimeout: stuckTimeout,
		now:          time.Now,
	}
}

// Run sweeps periodically until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("Starting reconciliation sweep",
		zap.Duration("interval", r.interval),
		zap.Duration("stuck_timeout", r.stuckTimeout),
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Stopping reconciliation sweep...")
			return
		case <-ticker.C:
			if err := r.Sweep(); err != nil {
				r.logger.Error("Reconciliation sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep resets every threshold stuck in executing past the timeout. The
// conditional update keeps it safe against a concurrent legitimate release.
func (r *Reconciler) Sweep() error {
	cutoff := r.now().Add(-r.stuckTimeout)

	res := r.db.Model(&models.Threshold{}).
		Where("status = ? AND last_checked_at < ?", models.StatusExecuting, cutoff).
		Updates(map[string]interface{}{
			"status":     models.StatusPending,
			"last_error": "execution exceeded stuck timeout; reset by reconciler",
		})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected > 0 {
		r.logger.Warn("Reset stuck executing thresholds", zap.Int64("count", res.RowsAffected))
	}
	return nil
}
