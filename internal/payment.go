package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/DrGermanius/shoutout/internal/model"
)

const paymentTimeout = 10 * time.Second

//go:generate mockgen -destination=mock/mock_payment.go -package=mock_internal . IPaymentClient

type IPaymentClient interface {
	Refund(context.Context, model.Refund) error
}

// PaymentClient asks the external payment system to move a refund back to
// the customer. The idempotency key lets the payment system drop retries.
type PaymentClient struct {
	logger *zap.SugaredLogger
	url    string
}

func NewPaymentClient(logger *zap.SugaredLogger, url string) *PaymentClient {
	return &PaymentClient{logger: logger, url: url}
}

// Refund gives up when ctx is done, and never waits past the ctx deadline.
func (p PaymentClient) Refund(ctx context.Context, r model.Refund) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := paymentTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	a := fiber.Post(p.url + "/api/refunds")
	a.Set("Idempotency-Key", r.IdempotencyKey)
	a.Timeout(timeout)
	a.JSON(refundRequest{
		Order:  r.OrderNumber,
		Amount: r.Amount.String(),
		Reason: string(r.Reason),
	})
	if err := a.Parse(); err != nil {
		return err
	}

	res := make(chan paymentResponse, 1)
	go func() {
		code, body, errs := a.Bytes()
		res <- paymentResponse{code: code, body: body, errs: errs}
	}()

	var pr paymentResponse
	select {
	case <-ctx.Done():
		return ctx.Err()
	case pr = <-res:
	}
	if len(pr.errs) > 0 {
		return pr.errs[0]
	}

	switch pr.code {
	case fiber.StatusOK, fiber.StatusCreated, fiber.StatusConflict:
		// conflict means the key was already processed
		return nil
	case fiber.StatusTooManyRequests:
		return ErrTooManyRequests
	default:
		p.logger.Errorf("Refund error: payment system answered %d: %s", pr.code, string(pr.body))
		return fmt.Errorf("%w: status %d", ErrRefundRejected, pr.code)
	}
}

type paymentResponse struct {
	code int
	body []byte
	errs []error
}

type refundRequest struct {
	Order  string `json:"order"`
	Amount string `json:"amount"`
	Reason string `json:"reason"`
}
