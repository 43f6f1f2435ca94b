// Package order holds the order lifecycle, pricing and refund rules.
package order

import (
	"time"

	"github.com/DrGermanius/shoutout/internal/model"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type Engine struct {
	clock   Clock
	numbers *NumberGenerator
}

func NewEngine(clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{clock: clock, numbers: NewNumberGenerator(clock)}
}

func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

func (e *Engine) DeliveryTime(responseTime string, rush bool) time.Time {
	return CalculateDeliveryTime(responseTime, rush, e.clock.Now())
}

func (e *Engine) TimeRemaining(deadline time.Time) TimeRemaining {
	return CalculateTimeRemaining(deadline, e.clock.Now())
}

func (e *Engine) CanCancel(o model.Order) bool {
	return CanCancelOrder(o, e.clock.Now())
}

func (e *Engine) OrderNumber(prefix string) string {
	return e.numbers.Next(prefix)
}

func (e *Engine) Describe(o model.Order) model.OrderView {
	return Describe(o, e.clock.Now())
}
