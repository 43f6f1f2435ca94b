package order

import (
	"time"

	"github.com/DrGermanius/shoutout/internal/model"
)

var statusDescriptors = map[model.Status]model.StatusDescriptor{
	model.OrderStatusPending:    {Label: "Pending Acceptance", Color: "yellow", Icon: "clock"},
	model.OrderStatusAccepted:   {Label: "Accepted", Color: "blue", Icon: "check"},
	model.OrderStatusRecording:  {Label: "Recording", Color: "purple", Icon: "video"},
	model.OrderStatusProcessing: {Label: "Processing", Color: "indigo", Icon: "refresh"},
	model.OrderStatusCompleted:  {Label: "Delivered", Color: "green", Icon: "check-circle"},
	model.OrderStatusCancelled:  {Label: "Cancelled", Color: "gray", Icon: "x-circle"},
	model.OrderStatusRefunded:   {Label: "Refunded", Color: "purple", Icon: "refresh"},
}

func FormatOrderStatus(s model.Status) model.StatusDescriptor {
	if d, ok := statusDescriptors[s]; ok {
		return d
	}
	return statusDescriptors[model.OrderStatusPending]
}

const (
	baseProcessingMinutes      = 5
	processingMinutesPerMinute = 2
	maxProcessingMinutes       = 30
)

// EstimateProcessingTime is in minutes.
func EstimateProcessingTime(durationSeconds int) int {
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	videoMinutes := (durationSeconds + 59) / 60

	minutes := baseProcessingMinutes + videoMinutes*processingMinutesPerMinute
	if minutes > maxProcessingMinutes {
		return maxProcessingMinutes
	}
	return minutes
}

func Describe(o model.Order, now time.Time) model.OrderView {
	status := GetOrderStatus(o)
	if o.Status == model.OrderStatusRefunded && status == model.OrderStatusCancelled {
		status = model.OrderStatusRefunded
	}

	v := model.OrderView{
		Number:        o.Number,
		CreatorID:     o.CreatorID,
		Occasion:      o.Occasion,
		RecipientName: o.RecipientName,
		Amount:        o.Amount,
		Status:        status,
		Display:       FormatOrderStatus(status),
		Progress:      GetOrderProgress(o),
		OrderedAt:     o.OrderedAt,
		DeliverBy:     o.DeliverBy,
		CanCancel:     CanCancelOrder(o, now),
	}

	// Terminal orders have no countdown.
	if !isCancelled(o) && !isCompleted(o) {
		tr := CalculateTimeRemaining(o.DeliverBy, now)
		v.TimeRemaining = tr.Text
		v.IsOverdue = tr.IsOverdue
	}

	if isProcessing(o) && !isCompleted(o) && !isCancelled(o) {
		v.EstimatedProcessingMinutes = EstimateProcessingTime(o.VideoDurationSeconds)
	}

	return v
}
