package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hedera-order-bot-go/internal/models"
)

func TestReconciler_Sweep(t *testing.T) {
	db := setupTestDB(t)
	reconciler := NewReconciler(db, zap.NewNop(), time.Minute, 10*time.Minute)

	stuckSince := time.Now().Add(-time.Hour)
	seedThreshold(t, db, func(th *models.Threshold) {
		th.ID = "stuck"
		th.Status = models.StatusExecuting
		th.LastCheckedAt = &stuckSince
	})

	recentCheck := time.Now().Add(-time.Minute)
	seedThreshold(t, db, func(th *models.Threshold) {
		th.ID = "in-flight"
		th.Status = models.StatusExecuting
		th.LastCheckedAt = &recentCheck
	})

	seedThreshold(t, db, func(th *models.Threshold) {
		th.ID = "done"
		th.Status = models.StatusExecuted
		th.IsActive = false
	})

	require.NoError(t, reconciler.Sweep())

	stuck := loadThreshold(t, db, "stuck")
	assert.Equal(t, models.StatusPending, stuck.Status)
	assert.Contains(t, stuck.LastError, "reset by reconciler")

	// An execution still inside the stuck timeout is left alone.
	inFlight := loadThreshold(t, db, "in-flight")
	assert.Equal(t, models.StatusExecuting, inFlight.Status)

	done := loadThreshold(t, db, "done")
	assert.Equal(t, models.StatusExecuted, done.Status)
}

func TestReconciler_SweepResetMakesRowAcquirable(t *testing.T) {
	db := setupTestDB(t)
	reconciler := NewReconciler(db, zap.NewNop(), time.Minute, 10*time.Minute)
	recorder := NewRecorder(db, zap.NewNop())
	guard := NewGuard(db, recorder, zap.NewNop())

	stuckSince := time.Now().Add(-time.Hour)
	seedThreshold(t, db, func(th *models.Threshold) {
		th.Status = models.StatusExecuting
		th.LastCheckedAt = &stuckSince
	})

	_, err := guard.TryAcquire("t1")
	assert.ErrorIs(t, err, ErrAlreadyExecuting)

	require.NoError(t, reconciler.Sweep())

	_, err = guard.TryAcquire("t1")
	assert.NoError(t, err)
}
