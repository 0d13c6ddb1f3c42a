package engine

import (
	"errors"
	"fmt"
	"time"
)

// Guard errors: the threshold was never acquired, so nothing is written back.
var (
	ErrNotFound         = errors.New("threshold not found")
	ErrNotActive        = errors.New("threshold is not active")
	ErrAlreadyExecuting = errors.New("threshold execution already in flight")
)

// Validation errors: the threshold was acquired, so they terminate the
// pipeline with a failed status write.
var (
	ErrConditionNotMet   = errors.New("price condition not met")
	ErrInvalidPairConfig = errors.New("invalid pair configuration")
	ErrCapExceeded       = errors.New("trade amount exceeds order cap")
)

// CooldownError rejects a call that arrived inside the post-execution
// cooldown window.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("threshold executed recently, %s of cooldown remaining", e.Remaining.Round(time.Second))
}

// RevertError means the swap reached consensus but the contract rejected it.
// Ledger fees were consumed; the call is never retried automatically.
type RevertError struct {
	TxHash string
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("contract reverted (tx %s)", e.TxHash)
	}
	return fmt.Sprintf("contract reverted (tx %s): %s", e.TxHash, e.Reason)
}

// TransientError wraps network and timeout failures around submission or the
// finality wait. Callers may retry, but every retry re-enters through the
// guard so the cooldown and duplicate checks apply uniformly.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient ledger error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PipelineError tags a failure with the pipeline step that produced it.
type PipelineError struct {
	Step string
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
