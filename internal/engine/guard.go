package engine

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hedera-order-bot-go/internal/models"
)

// ExecutionCooldown is the fixed window after an execution during which the
// same threshold cannot fire again. It absorbs noisy price feeds that would
// otherwise re-trigger immediately.
const ExecutionCooldown = 5 * time.Minute

// Guard enforces the at-most-one-in-flight and cooldown invariants for a
// threshold. Acquisition is a single conditional update so that concurrent
// engine instances sharing the store cannot both acquire the same id.
type Guard struct {
	db       *gorm.DB
	recorder *Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewGuard creates an execution guard over the threshold store.
func NewGuard(db *gorm.DB, recorder *Recorder, logger *zap.Logger) *Guard {
	return &Guard{db: db, recorder: recorder, logger: logger, now: time.Now}
}

// TryAcquire checks eligibility and atomically transitions the threshold to
// executing. On success it returns the threshold as loaded before the
// transition. Failures before the conditional write never mutate the row.
func (g *Guard) TryAcquire(id string) (*models.Threshold, error) {
	var t models.Threshold
	if err := g.db.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load threshold %s: %w", id, err)
	}

	if !t.IsActive {
		return nil, ErrNotActive
	}
	if t.Status == models.StatusExecuting {
		return nil, ErrAlreadyExecuting
	}

	now := g.now()
	if t.LastExecutedAt != nil {
		if elapsed := now.Sub(*t.LastExecutedAt); elapsed < ExecutionCooldown {
			return nil, &CooldownError{Remaining: ExecutionCooldown - elapsed}
		}
	}

	// The compare-and-swap on status is the sole serialization point: two
	// concurrent callers both reach here, only one update matches.
	res := g.db.Model(&models.Threshold{}).
		Where("id = ? AND status <> ? AND is_active = ?", id, models.StatusExecuting, true).
		Updates(map[string]interface{}{
			"status":          models.StatusExecuting,
			"last_checked_at": now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to acquire threshold %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyExecuting
	}

	g.logger.Debug("Acquired threshold for execution", zap.String("threshold_id", id))
	return &t, nil
}

// Release transitions an acquired threshold to its terminal status. It must
// be called exactly once per successful TryAcquire; the write is delegated to
// the status recorder so release and result persistence are one update.
func (g *Guard) Release(id string, o Outcome) error {
	return g.recorder.Record(id, o)
}
