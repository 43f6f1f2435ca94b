package order

import (
	"errors"
	"time"

	"github.com/DrGermanius/shoutout/internal/model"
)

const RecordingCancelWindow = 30 * time.Minute

var ErrInvalidTransition = errors.New("invalid order transition")

func isCancelled(o model.Order) bool  { return o.CancelledAt != nil }
func isCompleted(o model.Order) bool  { return o.CompletedAt != nil }
func isProcessing(o model.Order) bool { return o.ProcessingStartedAt != nil }
func isRecording(o model.Order) bool  { return o.RecordingStartedAt != nil }
func isAccepted(o model.Order) bool   { return o.AcceptedAt != nil }

type statusRule struct {
	reached  func(model.Order) bool
	status   model.Status
	progress int
}

// statusRules is evaluated top-down, first match wins.
var statusRules = []statusRule{
	{isCancelled, model.OrderStatusCancelled, 0},
	{isCompleted, model.OrderStatusCompleted, 100},
	{isProcessing, model.OrderStatusProcessing, 75},
	{isRecording, model.OrderStatusRecording, 50},
	{isAccepted, model.OrderStatusAccepted, 25},
}

const pendingProgress = 10

// GetOrderStatus ignores the stored Status field.
func GetOrderStatus(o model.Order) model.Status {
	for _, r := range statusRules {
		if r.reached(o) {
			return r.status
		}
	}
	return model.OrderStatusPending
}

func GetOrderProgress(o model.Order) int {
	for _, r := range statusRules {
		if r.reached(o) {
			return r.progress
		}
	}
	return pendingProgress
}

// CanCancelOrder reports whether the order may still be cancelled at now.
// Once recording has started there is a short grace window.
func CanCancelOrder(o model.Order, now time.Time) bool {
	if isCancelled(o) || isCompleted(o) || isProcessing(o) {
		return false
	}
	if isRecording(o) {
		return now.Sub(*o.RecordingStartedAt) < RecordingCancelWindow
	}
	return true
}

var transitions = map[model.Event]struct {
	from model.Status
	to   model.Status
}{
	model.EventAccept:          {model.OrderStatusPending, model.OrderStatusAccepted},
	model.EventStartRecording:  {model.OrderStatusAccepted, model.OrderStatusRecording},
	model.EventStartProcessing: {model.OrderStatusRecording, model.OrderStatusProcessing},
	model.EventComplete:        {model.OrderStatusProcessing, model.OrderStatusCompleted},
}

// Step returns the status an event is valid from and the status it moves
// the order to.
func Step(e model.Event) (from, to model.Status, ok bool) {
	t, ok := transitions[e]
	return t.from, t.to, ok
}

// Transition validates a creator event against the derived status and
// returns the status the order moves to.
func Transition(o model.Order, e model.Event) (model.Status, error) {
	t, ok := transitions[e]
	if !ok || GetOrderStatus(o) != t.from {
		return "", ErrInvalidTransition
	}
	return t.to, nil
}

func Apply(o model.Order, e model.Event, at time.Time) (model.Order, error) {
	to, err := Transition(o, e)
	if err != nil {
		return o, err
	}

	switch e {
	case model.EventAccept:
		o.AcceptedAt = &at
	case model.EventStartRecording:
		o.RecordingStartedAt = &at
	case model.EventStartProcessing:
		o.ProcessingStartedAt = &at
	case model.EventComplete:
		o.CompletedAt = &at
	}
	o.Status = to
	return o, nil
}
