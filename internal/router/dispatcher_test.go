package router

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRouter = "0.0.1414040"
	testWhbar  = "0.0.15058"
	testTokenA = "0.0.731861"
	testTokenB = "0.0.456858"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	d, err := NewDispatcher(testRouter, testWhbar, 900000)
	require.NoError(t, err)
	return d
}

func TestDispatcher_TokenToToken(t *testing.T) {
	d := newTestDispatcher(t)
	recipient := common.HexToAddress("0x00000000000000000000000000000000000a1b2c")
	deadline := time.Now().Add(2 * time.Minute)

	intent, err := d.TokenToToken(10, testTokenA, testTokenB, 3000, recipient, deadline, 100, 6, 8)
	require.NoError(t, err)

	assert.Equal(t, TokenToTokenSwap, intent.Kind)
	assert.Nil(t, intent.Value)
	assert.Equal(t, uint64(900000), intent.GasLimit)
	assert.Equal(t, 10.0, intent.Notional)
	// 10 tokens at 6 decimals
	assert.Equal(t, big.NewInt(10_000_000), intent.AmountIn)
	assert.NotEmpty(t, intent.Calldata)
	// exactInput selector
	assert.Equal(t, routerABI.Methods["exactInput"].ID, intent.Calldata[:4])
}

func TestDispatcher_HbarToToken(t *testing.T) {
	d := newTestDispatcher(t)
	recipient := common.HexToAddress("0x00000000000000000000000000000000000a1b2c")
	deadline := time.Now().Add(2 * time.Minute)

	intent, err := d.HbarToToken(2.5, testTokenB, 1500, recipient, deadline, 50, 8)
	require.NoError(t, err)

	assert.Equal(t, HbarToTokenSwap, intent.Kind)
	// 2.5 HBAR in tinybar for the router amount...
	assert.Equal(t, big.NewInt(250_000_000), intent.AmountIn)
	// ...and in weibar for the attached value.
	expectedValue, _ := new(big.Int).SetString("2500000000000000000", 10)
	assert.Equal(t, expectedValue, intent.Value)
	assert.Equal(t, routerABI.Methods["multicall"].ID, intent.Calldata[:4])
}

func TestDispatcher_TokenToHbar(t *testing.T) {
	d := newTestDispatcher(t)
	recipient := common.HexToAddress("0x00000000000000000000000000000000000a1b2c")
	deadline := time.Now().Add(2 * time.Minute)

	intent, err := d.TokenToHbar(100, testTokenA, 3000, recipient, deadline, 100, 6)
	require.NoError(t, err)

	assert.Equal(t, TokenToHbarSwap, intent.Kind)
	assert.Nil(t, intent.Value)
	assert.Equal(t, big.NewInt(100_000_000), intent.AmountIn)
	assert.Equal(t, routerABI.Methods["multicall"].ID, intent.Calldata[:4])
}

func TestDispatcher_Validation(t *testing.T) {
	d := newTestDispatcher(t)
	recipient := common.HexToAddress("0x00000000000000000000000000000000000a1b2c")
	future := time.Now().Add(time.Minute)

	t.Run("ExpiredDeadline", func(t *testing.T) {
		_, err := d.TokenToToken(10, testTokenA, testTokenB, 3000, recipient, time.Now().Add(-time.Second), 100, 6, 8)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "deadline")
	})

	t.Run("ZeroAmount", func(t *testing.T) {
		_, err := d.TokenToToken(0, testTokenA, testTokenB, 3000, recipient, future, 100, 6, 8)
		assert.Error(t, err)
	})

	t.Run("SlippageOutOfRange", func(t *testing.T) {
		_, err := d.HbarToToken(1, testTokenB, 3000, recipient, future, 10000, 8)
		assert.Error(t, err)
	})

	t.Run("BadTokenIdentifier", func(t *testing.T) {
		_, err := d.TokenToToken(10, "not-a-token", testTokenB, 3000, recipient, future, 100, 6, 8)
		assert.Error(t, err)
	})
}

func TestMinAmountOut(t *testing.T) {
	// 100 units, 1% slippage, 8 decimals -> 99 * 10^8
	assert.Equal(t, big.NewInt(9_900_000_000), minAmountOut(100, 100, 8))
	// No slippage passes the full amount through.
	assert.Equal(t, big.NewInt(10_000_000_000), minAmountOut(100, 0, 8))
}
