package engine

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"hedera-order-bot-go/internal/config"
	"hedera-order-bot-go/internal/hedera"
	"hedera-order-bot-go/internal/metrics"
	"hedera-order-bot-go/internal/models"
	"hedera-order-bot-go/internal/router"
)

// ExecuteRequest is one validated invocation of the execution pipeline.
type ExecuteRequest struct {
	ThresholdID  string
	Kind         models.OrderKind
	CurrentPrice float64
}

// ExecuteResult is the successful outcome of a pipeline pass.
type ExecuteResult struct {
	TxHash    string
	Simulated bool
}

// Engine orchestrates one execution attempt: guard, condition re-check,
// direction resolution, intent construction, submission and the terminal
// status write. There is no retry loop; every external call is exactly one
// pass through the pipeline.
type Engine struct {
	logger     *zap.Logger
	cfg        *config.Config
	guard      *Guard
	dispatcher *router.Dispatcher
	executor   *TradeExecutor
	native     *hedera.NativeSet
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewEngine wires the pipeline components together.
func NewEngine(logger *zap.Logger, cfg *config.Config, guard *Guard, dispatcher *router.Dispatcher, executor *TradeExecutor, native *hedera.NativeSet, m *metrics.Metrics) *Engine {
	return &Engine{
		logger:     logger,
		cfg:        cfg,
		guard:      guard,
		dispatcher: dispatcher,
		executor:   executor,
		native:     native,
		metrics:    m,
		now:        time.Now,
	}
}

// ExecuteOrder runs the full pipeline for one threshold. Errors returned
// before acquisition leave the threshold untouched; every error after
// acquisition has already produced exactly one terminal failed write.
func (e *Engine) ExecuteOrder(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error) {
	start := e.now()
	l := e.logger.With(
		zap.String("threshold_id", req.ThresholdID),
		zap.String("order_kind", req.Kind.String()),
		zap.Float64("current_price", req.CurrentPrice),
	)

	t, err := e.guard.TryAcquire(req.ThresholdID)
	if err != nil {
		l.Info("Execution rejected by guard", zap.Error(err))
		e.metrics.ExecutionsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, &PipelineError{Step: "guard", Err: err}
	}

	l.Info("Threshold acquired, executing order",
		zap.String("token_a", t.TokenA),
		zap.String("token_b", t.TokenB),
	)

	if err := ValidateCondition(req.Kind, req.CurrentPrice, t); err != nil {
		return nil, e.fail(l, req.ThresholdID, "validate", err, Outcome{})
	}

	dir, err := ResolveDirection(req.Kind, t, e.native)
	if err != nil {
		return nil, e.fail(l, req.ThresholdID, "resolve", err, Outcome{})
	}

	amount := t.Cap(req.Kind)
	recipient, err := hedera.EVMAddress(t.OwnerAccountID)
	if err != nil {
		return nil, e.fail(l, req.ThresholdID, "resolve", err, Outcome{})
	}

	intent, err := e.buildIntent(dir, amount, recipient)
	if err != nil {
		return nil, e.fail(l, req.ThresholdID, "dispatch", err, Outcome{})
	}

	result, err := e.executor.Execute(ctx, intent, t.Cap(req.Kind))
	if err != nil {
		o := Outcome{}
		if result != nil {
			o.TxHash = result.TxHash
			o.Submitted = result.Submitted
		}
		return nil, e.fail(l, req.ThresholdID, "execute", err, o)
	}

	if err := e.guard.Release(req.ThresholdID, Outcome{
		Status:    models.StatusExecuted,
		TxHash:    result.TxHash,
		Submitted: result.Submitted,
	}); err != nil {
		// The swap is on-chain; surface the storage failure but report the
		// transaction to the caller regardless.
		l.Error("Failed to record executed status", zap.Error(err))
	}

	e.metrics.ExecutionsTotal.WithLabelValues(metrics.OutcomeExecuted).Inc()
	e.metrics.PipelineDuration.Observe(e.now().Sub(start).Seconds())

	l.Info("Order executed", zap.String("tx_hash", result.TxHash), zap.Bool("simulated", result.Simulated))
	return &ExecuteResult{TxHash: result.TxHash, Simulated: result.Simulated}, nil
}

// buildIntent dispatches to the swap primitive the resolved direction calls for.
func (e *Engine) buildIntent(dir Direction, amount float64, recipient common.Address) (*router.TxIntent, error) {
	deadline := e.now().Add(time.Duration(e.cfg.Trading.DeadlineSecs) * time.Second)
	slippage := e.cfg.Trading.SlippageBps
	fee := dir.FeeTier

	switch dir.Primitive {
	case router.HbarToTokenSwap:
		return e.dispatcher.HbarToToken(amount, dir.ToToken, fee, recipient, deadline, slippage, dir.ToDecimals)
	case router.TokenToHbarSwap:
		return e.dispatcher.TokenToHbar(amount, dir.FromToken, fee, recipient, deadline, slippage, dir.FromDecimals)
	default:
		return e.dispatcher.TokenToToken(amount, dir.FromToken, dir.ToToken, fee, recipient, deadline, slippage, dir.FromDecimals, dir.ToDecimals)
	}
}

// fail releases the guard with a failed outcome and wraps the step error.
// Called exactly once per failed pipeline pass, on the first error after a
// successful acquire.
func (e *Engine) fail(l *zap.Logger, id, step string, err error, o Outcome) error {
	l.Error("Pipeline step failed", zap.String("step", step), zap.Error(err))

	o.Status = models.StatusFailed
	o.Err = err
	if relErr := e.guard.Release(id, o); relErr != nil {
		l.Error("Failed to release guard after pipeline failure", zap.Error(relErr))
	}

	e.metrics.ExecutionsTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
	return &PipelineError{Step: step, Err: err}
}
