package models

import (
	"fmt"
	"time"
)

// ThresholdStatus is the lifecycle state of a threshold.
// Transitions only move forward: pending -> executing -> executed/failed.
// A failed threshold returns to pending only through an explicit operator reset.
type ThresholdStatus string

const (
	StatusPending   ThresholdStatus = "pending"
	StatusExecuting ThresholdStatus = "executing"
	StatusExecuted  ThresholdStatus = "executed"
	StatusFailed    ThresholdStatus = "failed"
)

// OrderKind is the semantic type of a price trigger.
type OrderKind int

const (
	StopLoss OrderKind = iota
	BuyOrder
	SellOrder
)

// String returns the wire name of the order kind.
func (k OrderKind) String() string {
	switch k {
	case StopLoss:
		return "stopLoss"
	case BuyOrder:
		return "buyOrder"
	case SellOrder:
		return "sellOrder"
	}
	return fmt.Sprintf("OrderKind(%d)", int(k))
}

// ParseOrderKind validates an incoming condition string at the boundary.
// Only "buy" and "sell" arrive over HTTP; "stopLoss" is internal shorthand
// for a sell triggered by the stop-loss price.
func ParseOrderKind(s string) (OrderKind, error) {
	switch s {
	case "buy":
		return BuyOrder, nil
	case "sell":
		return SellOrder, nil
	case "stopLoss":
		return StopLoss, nil
	}
	return 0, fmt.Errorf("unknown order condition %q", s)
}

// Threshold is a persisted price trigger for a token pair. It is created by
// the registration flow in pending state and from then on mutated only by the
// execution engine's guard and recorder.
type Threshold struct {
	ID             string `gorm:"primaryKey"`
	OwnerAccountID string `gorm:"not null"`

	TokenA         string `gorm:"not null"` // Hedera token id, e.g. "0.0.731861"
	TokenB         string `gorm:"not null"`
	TokenADecimals int32  `gorm:"not null"`
	TokenBDecimals int32  `gorm:"not null"`
	FeeTier        uint32 `gorm:"not null"` // router fee in hundredths of a bip, e.g. 3000

	StopLossPrice float64
	BuyOrderPrice float64
	StopLossCap   float64 // max notional a stop-loss / sell may move
	BuyOrderCap   float64 // max notional a buy may move

	// No column default: gorm would skip the zero value on insert and an
	// explicitly inactive threshold would come back active.
	IsActive bool            `gorm:"not null"`
	Status   ThresholdStatus `gorm:"not null;default:pending"`

	LastCheckedAt  *time.Time
	LastExecutedAt *time.Time
	LastError      string
	TxHash         string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TriggerPrice returns the stored price the given order kind compares against.
func (t *Threshold) TriggerPrice(kind OrderKind) float64 {
	if kind == BuyOrder {
		return t.BuyOrderPrice
	}
	return t.StopLossPrice
}

// Cap returns the maximum notional the given order kind may move.
func (t *Threshold) Cap(kind OrderKind) float64 {
	if kind == BuyOrder {
		return t.BuyOrderCap
	}
	return t.StopLossCap
}
