package engine

import (
	"fmt"

	"hedera-order-bot-go/internal/hedera"
	"hedera-order-bot-go/internal/models"
	"hedera-order-bot-go/internal/router"
)

// Direction is the resolved trade orientation for one execution: the
// effective from/to tokens, their decimals, and the swap primitive to use.
type Direction struct {
	FromToken    string
	ToToken      string
	FromDecimals int32
	ToDecimals   int32
	FeeTier      uint32
	Primitive    router.SwapKind
}

// ResolveDirection determines the effective trade direction and primitive.
// A buy order acquires the base asset with the quote asset, so the stored
// pair order is reversed; sell and stop-loss orders preserve it. The
// primitive follows from which side, if any, is wrapped HBAR.
func ResolveDirection(kind models.OrderKind, t *models.Threshold, native *hedera.NativeSet) (Direction, error) {
	d := Direction{
		FromToken:    t.TokenA,
		ToToken:      t.TokenB,
		FromDecimals: t.TokenADecimals,
		ToDecimals:   t.TokenBDecimals,
		FeeTier:      t.FeeTier,
	}
	if kind == models.BuyOrder {
		d.FromToken, d.ToToken = t.TokenB, t.TokenA
		d.FromDecimals, d.ToDecimals = t.TokenBDecimals, t.TokenADecimals
	}

	fromNative := native.Contains(d.FromToken)
	toNative := native.Contains(d.ToToken)

	switch {
	case fromNative && toNative:
		return Direction{}, fmt.Errorf("%w: both %s and %s are wrapped HBAR",
			ErrInvalidPairConfig, d.FromToken, d.ToToken)
	case fromNative:
		d.Primitive = router.HbarToTokenSwap
	case toNative:
		d.Primitive = router.TokenToHbarSwap
	default:
		d.Primitive = router.TokenToTokenSwap
	}

	return d, nil
}
