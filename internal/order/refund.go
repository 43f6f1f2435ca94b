package order

import (
	"github.com/shopspring/decimal"

	"github.com/DrGermanius/shoutout/internal/model"
)

var (
	fullRefund     = decimal.NewFromInt(1)
	acceptedRefund = decimal.New(9, -1)
	recordRefund   = decimal.New(5, -1)
	noRefund       = decimal.Zero
)

// RefundPercentage is a fraction in [0, 1]. Unknown reasons count as
// customer requests.
func RefundPercentage(o model.Order, reason model.CancellationReason) decimal.Decimal {
	switch reason {
	case model.ReasonCreatorCancelled, model.ReasonSystemError:
		return fullRefund
	}

	switch {
	case !isAccepted(o):
		return fullRefund
	case !isRecording(o):
		return acceptedRefund
	case !isProcessing(o):
		return recordRefund
	default:
		return noRefund
	}
}

func CalculateRefundAmount(o model.Order, reason model.CancellationReason, total decimal.Decimal) decimal.Decimal {
	return total.Mul(RefundPercentage(o, reason)).Round(0)
}
