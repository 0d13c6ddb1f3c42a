package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"hedera-order-bot-go/internal/models"
)

// Outcome is the terminal result of one acquired execution attempt.
type Outcome struct {
	Status    models.ThresholdStatus // StatusExecuted or StatusFailed
	TxHash    string
	Err       error
	Submitted bool // a transaction actually reached the ledger
}

// Recorder persists the terminal status transition of an acquired threshold.
// This is the single durable write that releases the execution guard.
type Recorder struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder creates a status recorder over the threshold store.
func NewRecorder(db *gorm.DB, logger *zap.Logger) *Recorder {
	return &Recorder{db: db, logger: logger, now: time.Now}
}

// Record transitions an executing threshold to its terminal status in one
// update. An executed threshold is deactivated so it can never fire again.
func (r *Recorder) Record(id string, o Outcome) error {
	updates := map[string]interface{}{
		"status": o.Status,
	}

	if o.TxHash != "" {
		updates["tx_hash"] = o.TxHash
	}
	if o.Err != nil {
		updates["last_error"] = o.Err.Error()
	} else {
		updates["last_error"] = ""
	}
	if o.Submitted {
		updates["last_executed_at"] = r.now()
	}
	if o.Status == models.StatusExecuted {
		updates["is_active"] = false
	}

	res := r.db.Model(&models.Threshold{}).
		Where("id = ? AND status = ?", id, models.StatusExecuting).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to record outcome for threshold %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// The row left executing without us: a reconciler reset or a second
		// release. Surface it loudly, the guard contract forbids both.
		r.logger.Warn("Outcome write matched no executing threshold",
			zap.String("threshold_id", id),
			zap.String("status", string(o.Status)),
		)
		return fmt.Errorf("threshold %s was not in executing state", id)
	}

	r.logger.Info("Recorded execution outcome",
		zap.String("threshold_id", id),
		zap.String("status", string(o.Status)),
		zap.String("tx_hash", o.TxHash),
		zap.Bool("submitted", o.Submitted),
	)
	return nil
}
