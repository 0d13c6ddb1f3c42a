package engine

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hedera-order-bot-go/internal/config"
	"hedera-order-bot-go/internal/hedera"
	"hedera-order-bot-go/internal/metrics"
	"hedera-order-bot-go/internal/models"
	"hedera-order-bot-go/internal/router"
)

// MockLedgerClient is a mock implementation of hedera.LedgerClient.
type MockLedgerClient struct {
	mock.Mock
}

func (m *MockLedgerClient) SubmitCall(ctx context.Context, to common.Address, calldata []byte, value *big.Int, gasLimit uint64) (common.Hash, error) {
	args := m.Called(ctx, to, calldata, value, gasLimit)
	return args.Get(0).(common.Hash), args.Error(1)
}

func (m *MockLedgerClient) WaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	args := m.Called(ctx, hash)
	if r := args.Get(0); r != nil {
		return r.(*types.Receipt), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMirrorClient is a mock implementation of hedera.MirrorClientInterface.
type MockMirrorClient struct {
	mock.Mock
}

func (m *MockMirrorClient) GetToken(ctx context.Context, tokenID string) (*hedera.TokenInfo, error) {
	args := m.Called(ctx, tokenID)
	if r := args.Get(0); r != nil {
		return r.(*hedera.TokenInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMirrorClient) GetContractResult(ctx context.Context, txHash string) (*hedera.ContractResult, error) {
	args := m.Called(ctx, txHash)
	if r := args.Get(0); r != nil {
		return r.(*hedera.ContractResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// setupTestDB opens an isolated in-memory database. The pool is pinned to a
// single connection so every test goroutine sees the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Threshold{}))
	return db
}

// seedThreshold inserts a ready-to-fire threshold, optionally mutated first.
func seedThreshold(t *testing.T, db *gorm.DB, mutate func(*models.Threshold)) *models.Threshold {
	th := &models.Threshold{
		ID:             "t1",
		OwnerAccountID: "0.0.9001",
		TokenA:         "0.0.731861",
		TokenB:         "0.0.15058", // WHBAR
		TokenADecimals: 6,
		TokenBDecimals: 8,
		FeeTier:        3000,
		StopLossPrice:  0.07,
		BuyOrderPrice:  0.05,
		StopLossCap:    100,
		BuyOrderCap:    50,
		IsActive:       true,
		Status:         models.StatusPending,
	}
	if mutate != nil {
		mutate(th)
	}
	require.NoError(t, db.Create(th).Error)
	return th
}

func loadThreshold(t *testing.T, db *gorm.DB, id string) *models.Threshold {
	var th models.Threshold
	require.NoError(t, db.First(&th, "id = ?", id).Error)
	return &th
}

// newTestEngine wires a full engine over an in-memory store and mock clients.
func newTestEngine(t *testing.T, db *gorm.DB, ledger *MockLedgerClient, mirror *MockMirrorClient) *Engine {
	cfg := &config.Config{
		Trading: config.Trading{
			SlippageBps:  100,
			DeadlineSecs: 120,
			GasLimit:     900000,
		},
	}

	native, err := hedera.NewNativeSet([]string{"0.0.15058"})
	require.NoError(t, err)

	dispatcher, err := router.NewDispatcher("0.0.1414040", native.Canonical(), cfg.Trading.GasLimit)
	require.NoError(t, err)

	log := zap.NewNop()
	executor := NewTradeExecutor(ledger, mirror, log, 5*time.Second, false)
	recorder := NewRecorder(db, log)
	guard := NewGuard(db, recorder, log)
	m := metrics.New(prometheus.NewRegistry())

	return NewEngine(log, cfg, guard, dispatcher, executor, native, m)
}

func successReceipt() *types.Receipt {
	return &types.Receipt{
		Status:            types.ReceiptStatusSuccessful,
		GasUsed:           310000,
		EffectiveGasPrice: big.NewInt(620),
	}
}
