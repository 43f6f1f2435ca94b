package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	OrderStatusPending    Status = "pending"
	OrderStatusAccepted   Status = "accepted"
	OrderStatusRecording  Status = "recording"
	OrderStatusProcessing Status = "processing"
	OrderStatusCompleted  Status = "completed"
	OrderStatusCancelled  Status = "cancelled"
	OrderStatusRefunded   Status = "refunded"
)

type CancellationReason string

const (
	ReasonCreatorCancelled CancellationReason = "creator_cancelled"
	ReasonSystemError      CancellationReason = "system_error"
	ReasonCustomerRequest  CancellationReason = "customer_request"
)

// Event is a creator-side lifecycle step.
type Event string

const (
	EventAccept          Event = "accept"
	EventStartRecording  Event = "start_recording"
	EventStartProcessing Event = "start_processing"
	EventComplete        Event = "complete"
)

// Order is a personalized-video request. Lifecycle timestamps are nil until
// the matching event happens and are never cleared.
type Order struct {
	ID                   int             `json:"ID"`
	Number               string          `json:"number"`
	CustomerID           int             `json:"customerID"`
	CreatorID            string          `json:"creatorID"`
	Occasion             string          `json:"occasion"`
	RecipientName        string          `json:"recipientName"`
	Instructions         string          `json:"instructions"`
	Amount               decimal.Decimal `json:"amount"`
	Status               Status          `json:"status"`
	CreatorResponseTime  string          `json:"creatorResponseTime"`
	RushOrder            bool            `json:"rushOrder"`
	OrderedAt            time.Time       `json:"orderedAt"`
	DeliverBy            time.Time       `json:"deliverBy"`
	AcceptedAt           *time.Time      `json:"acceptedAt,omitempty"`
	RecordingStartedAt   *time.Time      `json:"recordingStartedAt,omitempty"`
	ProcessingStartedAt  *time.Time      `json:"processingStartedAt,omitempty"`
	CompletedAt          *time.Time      `json:"completedAt,omitempty"`
	CancelledAt          *time.Time      `json:"cancelledAt,omitempty"`
	VideoDurationSeconds int             `json:"videoDurationSeconds"`
	RefundAmount         decimal.Decimal `json:"refundAmount"`
}

type OrderRequest struct {
	CreatorID           string          `json:"creatorID"`
	Occasion            string          `json:"occasion"`
	RecipientName       string          `json:"recipientName"`
	Instructions        string          `json:"instructions"`
	Amount              decimal.Decimal `json:"amount"`
	CreatorResponseTime string          `json:"creatorResponseTime"`
	RushOrder           bool            `json:"rushOrder"`
}

type EventInput struct {
	Event                Event `json:"event"`
	VideoDurationSeconds int   `json:"videoDurationSeconds"`
}

type StatusDescriptor struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// OrderView is what the tracking pages render.
type OrderView struct {
	Number                     string           `json:"number"`
	CreatorID                  string           `json:"creatorID"`
	Occasion                   string           `json:"occasion"`
	RecipientName              string           `json:"recipientName"`
	Amount                     decimal.Decimal  `json:"amount"`
	Status                     Status           `json:"status"`
	Display                    StatusDescriptor `json:"display"`
	Progress                   int              `json:"progress"`
	OrderedAt                  time.Time        `json:"orderedAt"`
	DeliverBy                  time.Time        `json:"deliverBy"`
	TimeRemaining              string           `json:"timeRemaining"`
	IsOverdue                  bool             `json:"isOverdue"`
	CanCancel                  bool             `json:"canCancel"`
	EstimatedProcessingMinutes int              `json:"estimatedProcessingMinutes,omitempty"`
}

type Refund struct {
	OrderNumber    string             `json:"order"`
	UserID         int                `json:"userID"`
	Amount         decimal.Decimal    `json:"amount"`
	Reason         CancellationReason `json:"reason"`
	IdempotencyKey string             `json:"idempotencyKey"`
	ProcessedAt    time.Time          `json:"processedAt"`
}

type RefundOutput struct {
	OrderNumber string             `json:"order"`
	Amount      decimal.Decimal    `json:"amount"`
	Reason      CancellationReason `json:"reason"`
	Refunded    bool               `json:"refunded"`
}
