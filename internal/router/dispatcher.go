package router

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"hedera-order-bot-go/internal/hedera"
)

// SwapKind tags which router primitive a transaction intent was built by.
type SwapKind int

const (
	TokenToTokenSwap SwapKind = iota
	HbarToTokenSwap
	TokenToHbarSwap
)

// String returns the primitive's name.
func (k SwapKind) String() string {
	switch k {
	case TokenToTokenSwap:
		return "tokenToToken"
	case HbarToTokenSwap:
		return "hbarToToken"
	case TokenToHbarSwap:
		return "tokenToHbar"
	}
	return fmt.Sprintf("SwapKind(%d)", int(k))
}

// TxIntent is an unsubmitted router call. Value is the attached payable
// amount and is only set for hbarToToken swaps.
type TxIntent struct {
	Kind     SwapKind
	To       common.Address
	Calldata []byte
	Value    *big.Int
	AmountIn *big.Int
	Notional float64 // display-unit input amount, validated against the order cap
	GasLimit uint64
}

// Dispatcher builds router transaction intents for the three swap primitives.
type Dispatcher struct {
	router   common.Address
	whbar    common.Address
	gasLimit uint64
	now      func() time.Time
}

// NewDispatcher creates a dispatcher targeting the given router contract.
// whbarToken is the canonical wrapped-HBAR token id used for native legs.
func NewDispatcher(routerAddress string, whbarToken string, gasLimit uint64) (*Dispatcher, error) {
	router, err := hedera.EVMAddress(routerAddress)
	if err != nil {
		return nil, fmt.Errorf("router address: %w", err)
	}
	whbar, err := hedera.EVMAddress(whbarToken)
	if err != nil {
		return nil, fmt.Errorf("wrapped-HBAR token: %w", err)
	}
	return &Dispatcher{
		router:   router,
		whbar:    whbar,
		gasLimit: gasLimit,
		now:      time.Now,
	}, nil
}

// exactInputParams matches the router ABI's exactInput tuple.
type exactInputParams struct {
	Path             []byte
	Recipient        common.Address
	Deadline         *big.Int
	AmountIn         *big.Int
	AmountOutMinimum *big.Int
}

// TokenToToken builds an exact-input swap between two HTS tokens.
func (d *Dispatcher) TokenToToken(amount float64, fromToken, toToken string, fee uint32, recipient common.Address, deadline time.Time, slippageBps int, fromDecimals, toDecimals int32) (*TxIntent, error) {
	if err := d.checkArgs(amount, slippageBps, deadline); err != nil {
		return nil, err
	}

	from, err := hedera.EVMAddress(fromToken)
	if err != nil {
		return nil, err
	}
	to, err := hedera.EVMAddress(toToken)
	if err != nil {
		return nil, err
	}

	path, err := EncodePath(from.Bytes(), to.Bytes(), fee)
	if err != nil {
		return nil, err
	}

	amountIn := baseUnits(amount, fromDecimals)
	calldata, err := routerABI.Pack("exactInput", exactInputParams{
		Path:             path,
		Recipient:        recipient,
		Deadline:         big.NewInt(deadline.Unix()),
		AmountIn:         amountIn,
		AmountOutMinimum: minAmountOut(amount, slippageBps, toDecimals),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pack exactInput: %w", err)
	}

	return &TxIntent{
		Kind:     TokenToTokenSwap,
		To:       d.router,
		Calldata: calldata,
		AmountIn: amountIn,
		Notional: amount,
		GasLimit: d.gasLimit,
	}, nil
}

// HbarToToken builds a swap spending native HBAR for an HTS token. The HBAR
// is attached as the payable value and routed through wrapped HBAR; any
// unspent remainder is refunded in the same call.
func (d *Dispatcher) HbarToToken(amount float64, toToken string, fee uint32, recipient common.Address, deadline time.Time, slippageBps int, toDecimals int32) (*TxIntent, error) {
	if err := d.checkArgs(amount, slippageBps, deadline); err != nil {
		return nil, err
	}

	to, err := hedera.EVMAddress(toToken)
	if err != nil {
		return nil, err
	}

	path, err := EncodePath(d.whbar.Bytes(), to.Bytes(), fee)
	if err != nil {
		return nil, err
	}

	amountIn := baseUnits(amount, hedera.HbarDecimals)
	swapCall, err := routerABI.Pack("exactInput", exactInputParams{
		Path:             path,
		Recipient:        recipient,
		Deadline:         big.NewInt(deadline.Unix()),
		AmountIn:         amountIn,
		AmountOutMinimum: minAmountOut(amount, slippageBps, toDecimals),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pack exactInput: %w", err)
	}
	refundCall, err := routerABI.Pack("refundETH")
	if err != nil {
		return nil, fmt.Errorf("failed to pack refundETH: %w", err)
	}
	calldata, err := routerABI.Pack("multicall", [][]byte{swapCall, refundCall})
	if err != nil {
		return nil, fmt.Errorf("failed to pack multicall: %w", err)
	}

	return &TxIntent{
		Kind:     HbarToTokenSwap,
		To:       d.router,
		Calldata: calldata,
		// The relay denominates attached value in weibar, not tinybar.
		Value:    baseUnits(amount, hedera.WeibarDecimals),
		AmountIn: amountIn,
		Notional: amount,
		GasLimit: d.gasLimit,
	}, nil
}

// TokenToHbar builds a swap selling an HTS token for native HBAR. The swap
// output is held by the router as wrapped HBAR and unwrapped to the
// recipient in the same call.
func (d *Dispatcher) TokenToHbar(amount float64, fromToken string, fee uint32, recipient common.Address, deadline time.Time, slippageBps int, fromDecimals int32) (*TxIntent, error) {
	if err := d.checkArgs(amount, slippageBps, deadline); err != nil {
		return nil, err
	}

	from, err := hedera.EVMAddress(fromToken)
	if err != nil {
		return nil, err
	}

	path, err := EncodePath(from.Bytes(), d.whbar.Bytes(), fee)
	if err != nil {
		return nil, err
	}

	amountIn := baseUnits(amount, fromDecimals)
	minOut := minAmountOut(amount, slippageBps, hedera.HbarDecimals)
	swapCall, err := routerABI.Pack("exactInput", exactInputParams{
		Path: path,
		// The router holds the wrapped output until unwrapWHBAR pays it out.
		Recipient:        d.router,
		Deadline:         big.NewInt(deadline.Unix()),
		AmountIn:         amountIn,
		AmountOutMinimum: minOut,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pack exactInput: %w", err)
	}
	unwrapCall, err := routerABI.Pack("unwrapWHBAR", minOut, recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to pack unwrapWHBAR: %w", err)
	}
	calldata, err := routerABI.Pack("multicall", [][]byte{swapCall, unwrapCall})
	if err != nil {
		return nil, fmt.Errorf("failed to pack multicall: %w", err)
	}

	return &TxIntent{
		Kind:     TokenToHbarSwap,
		To:       d.router,
		Calldata: calldata,
		AmountIn: amountIn,
		Notional: amount,
		GasLimit: d.gasLimit,
	}, nil
}

func (d *Dispatcher) checkArgs(amount float64, slippageBps int, deadline time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("trade amount must be positive, got %v", amount)
	}
	if slippageBps < 0 || slippageBps >= 10000 {
		return fmt.Errorf("slippage %d bps out of range [0, 10000)", slippageBps)
	}
	if !deadline.After(d.now()) {
		return fmt.Errorf("deadline %s is not in the future", deadline.Format(time.RFC3339))
	}
	return nil
}

// baseUnits converts a display-unit amount into token base units.
func baseUnits(amount float64, decimals int32) *big.Int {
	return decimal.NewFromFloat(amount).Shift(decimals).BigInt()
}

// minAmountOut applies the slippage tolerance to the trade amount and scales
// the result into the output token's base units.
func minAmountOut(amount float64, slippageBps int, decimals int32) *big.Int {
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromInt(int64(10000 - slippageBps))).
		Div(decimal.NewFromInt(10000)).
		Shift(decimals).
		BigInt()
}
