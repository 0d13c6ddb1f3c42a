package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hedera-order-bot-go/internal/models"
)

func TestRecorder_Record(t *testing.T) {
	t.Run("FailedKeepsActive", func(t *testing.T) {
		db := setupTestDB(t)
		recorder := NewRecorder(db, zap.NewNop())
		seedThreshold(t, db, func(th *models.Threshold) {
			th.Status = models.StatusExecuting
		})

		err := recorder.Record("t1", Outcome{
			Status: models.StatusFailed,
			Err:    errors.New("contract reverted"),
		})
		require.NoError(t, err)

		stored := loadThreshold(t, db, "t1")
		assert.Equal(t, models.StatusFailed, stored.Status)
		assert.True(t, stored.IsActive)
		assert.Equal(t, "contract reverted", stored.LastError)
		// No transaction was submitted, so the audit timestamp stays unset.
		assert.Nil(t, stored.LastExecutedAt)
	})

	t.Run("FailedSubmittedSetsTimestamp", func(t *testing.T) {
		db := setupTestDB(t)
		recorder := NewRecorder(db, zap.NewNop())
		seedThreshold(t, db, func(th *models.Threshold) {
			th.Status = models.StatusExecuting
		})

		err := recorder.Record("t1", Outcome{
			Status:    models.StatusFailed,
			TxHash:    "0xdead",
			Err:       errors.New("contract reverted"),
			Submitted: true,
		})
		require.NoError(t, err)

		stored := loadThreshold(t, db, "t1")
		assert.Equal(t, models.StatusFailed, stored.Status)
		assert.Equal(t, "0xdead", stored.TxHash)
		assert.NotNil(t, stored.LastExecutedAt)
	})

	t.Run("ExecutedDeactivates", func(t *testing.T) {
		db := setupTestDB(t)
		recorder := NewRecorder(db, zap.NewNop())
		seedThreshold(t, db, func(th *models.Threshold) {
			th.Status = models.StatusExecuting
			th.LastError = "stale error from an earlier attempt"
		})

		err := recorder.Record("t1", Outcome{
			Status:    models.StatusExecuted,
			TxHash:    "0xabc",
			Submitted: true,
		})
		require.NoError(t, err)

		stored := loadThreshold(t, db, "t1")
		assert.Equal(t, models.StatusExecuted, stored.Status)
		assert.False(t, stored.IsActive)
		assert.Equal(t, "0xabc", stored.TxHash)
		assert.Empty(t, stored.LastError)
	})

	t.Run("NonExecutingRowRejected", func(t *testing.T) {
		db := setupTestDB(t)
		recorder := NewRecorder(db, zap.NewNop())
		seedThreshold(t, db, nil) // still pending

		err := recorder.Record("t1", Outcome{Status: models.StatusExecuted, TxHash: "0xabc"})
		assert.Error(t, err)

		stored := loadThreshold(t, db, "t1")
		assert.Equal(t, models.StatusPending, stored.Status)
	})
}
