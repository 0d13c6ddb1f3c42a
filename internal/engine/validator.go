package engine

import (
	"fmt"

	"hedera-order-bot-go/internal/models"
)

// ValidateCondition re-checks the triggering price condition against the
// authoritative stored threshold. The monitor that invoked us evaluated the
// same condition against a possibly stale read; this second check closes the
// race between "price observed" and "threshold read".
func ValidateCondition(kind models.OrderKind, comparisonPrice float64, t *models.Threshold) error {
	switch kind {
	case models.BuyOrder:
		if comparisonPrice < t.BuyOrderPrice {
			return nil
		}
		return fmt.Errorf("%w: price %v is not below buy trigger %v",
			ErrConditionNotMet, comparisonPrice, t.BuyOrderPrice)
	case models.SellOrder, models.StopLoss:
		if comparisonPrice > t.StopLossPrice {
			return nil
		}
		return fmt.Errorf("%w: price %v is not above stop trigger %v",
			ErrConditionNotMet, comparisonPrice, t.StopLossPrice)
	}
	return fmt.Errorf("%w: unknown order kind %v", ErrConditionNotMet, kind)
}
