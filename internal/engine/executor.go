package engine

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"hedera-order-bot-go/internal/hedera"
	"hedera-order-bot-go/internal/router"
)

// TradeResult is a classified execution outcome.
type TradeResult struct {
	TxHash    string
	Fee       *big.Int // gas consumed * effective gas price, in weibar
	Submitted bool
	Simulated bool
}

// TradeExecutor submits a prepared router call, waits for consensus finality
// and classifies the receipt. It performs no retries: a revert must never be
// resubmitted automatically (the failed attempt already consumed fees), and
// transient failures re-enter through the guard if the caller retries.
type TradeExecutor struct {
	ledger  hedera.LedgerClient
	mirror  hedera.MirrorClientInterface
	logger  *zap.Logger
	timeout time.Duration
	dryRun  bool
}

// NewTradeExecutor creates an executor over the given ledger and mirror
// clients. timeout bounds each RPC interaction, not the swap's own deadline.
func NewTradeExecutor(ledger hedera.LedgerClient, mirror hedera.MirrorClientInterface, logger *zap.Logger, timeout time.Duration, dryRun bool) *TradeExecutor {
	return &TradeExecutor{
		ledger:  ledger,
		mirror:  mirror,
		logger:  logger,
		timeout: timeout,
		dryRun:  dryRun,
	}
}

// Execute validates the intent against the order cap, submits it and waits
// for the receipt. The returned TradeResult reports whether a transaction
// actually reached the ledger, which drives the lastExecutedAt audit field.
func (e *TradeExecutor) Execute(ctx context.Context, intent *router.TxIntent, capAmount float64) (*TradeResult, error) {
	if capAmount > 0 && intent.Notional > capAmount {
		return nil, fmt.Errorf("%w: amount %v > cap %v", ErrCapExceeded, intent.Notional, capAmount)
	}

	l := e.logger.With(
		zap.String("swap_kind", intent.Kind.String()),
		zap.String("router", intent.To.Hex()),
		zap.Float64("amount", intent.Notional),
	)

	if e.dryRun {
		l.Warn("Dry run enabled. No transaction will be submitted.")
		return &TradeResult{TxHash: "dry-run", Simulated: true}, nil
	}

	submitCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	hash, err := e.ledger.SubmitCall(submitCtx, intent.To, intent.Calldata, intent.Value, intent.GasLimit)
	if err != nil {
		l.Error("Transaction submission failed", zap.Error(err))
		return nil, &TransientError{Err: err}
	}

	l = l.With(zap.String("tx_hash", hash.Hex()))
	l.Info("Transaction submitted, awaiting consensus...")

	waitCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	receipt, err := e.ledger.WaitReceipt(waitCtx, hash)
	if err != nil {
		// The transaction is on the wire; only the wait failed.
		l.Error("Receipt wait failed", zap.Error(err))
		return &TradeResult{TxHash: hash.Hex(), Submitted: true}, &TransientError{Err: err}
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		reason := e.revertReason(ctx, hash.Hex())
		l.Error("Contract reverted", zap.String("reason", reason))
		return &TradeResult{TxHash: hash.Hex(), Submitted: true},
			&RevertError{TxHash: hash.Hex(), Reason: reason}
	}

	fee := new(big.Int).SetUint64(receipt.GasUsed)
	if receipt.EffectiveGasPrice != nil {
		fee.Mul(fee, receipt.EffectiveGasPrice)
	}

	l.Info("Swap executed successfully",
		zap.Uint64("gas_used", receipt.GasUsed),
		zap.String("fee", fee.String()),
	)
	return &TradeResult{TxHash: hash.Hex(), Fee: fee, Submitted: true}, nil
}

// revertReason asks the mirror node for the revert message, best effort.
func (e *TradeExecutor) revertReason(ctx context.Context, txHash string) string {
	mirrorCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, err := e.mirror.GetContractResult(mirrorCtx, txHash)
	if err != nil {
		e.logger.Debug("Could not fetch revert reason from mirror node",
			zap.String("tx_hash", txHash), zap.Error(err))
		return ""
	}
	return result.ErrorMessage
}
