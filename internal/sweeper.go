package internal

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

type refundRetrier interface {
	RetryRefunds(context.Context) (int, error)
}

// RefundSweeper periodically resends refunds left unconfirmed by a failed
// payment call.
type RefundSweeper struct {
	retrier  refundRetrier
	interval time.Duration
	logger   *zap.SugaredLogger
}

func NewRefundSweeper(retrier refundRetrier, interval time.Duration, logger *zap.SugaredLogger) *RefundSweeper {
	return &RefundSweeper{retrier: retrier, interval: interval, logger: logger}
}

// Start runs the sweep until ctx is done. The returned channel is closed
// once the loop has exited.
func (w *RefundSweeper) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.sweep(ctx)
			}
		}
	}()

	return done
}

func (w *RefundSweeper) sweep(ctx context.Context) {
	n, err := w.retrier.RetryRefunds(ctx)
	if errors.Is(err, ErrTooManyRequests) {
		w.logger.Warnf("RefundSweeper: payment system is rate limiting, %d refunds sent", n)
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Errorf("RefundSweeper error: %s", err.Error())
		return
	}
	if n > 0 {
		w.logger.Infof("RefundSweeper: %d refunds confirmed", n)
	}
}
