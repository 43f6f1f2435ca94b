package order

import (
	"strings"
	"unicode/utf8"

	"github.com/DrGermanius/shoutout/internal/model"
)

const (
	MaxRecipientNameLength = 100
	MinInstructionsLength  = 10
	MaxInstructionsLength  = 500
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func ValidateOrderRequest(r model.OrderRequest) error {
	if r.CreatorID == "" {
		return invalid("creatorID", "Creator is required")
	}
	if r.Occasion == "" {
		return invalid("occasion", "Occasion is required")
	}

	recipient := utf8.RuneCountInString(strings.TrimSpace(r.RecipientName))
	if recipient == 0 {
		return invalid("recipientName", "Recipient name is required")
	}
	if recipient > MaxRecipientNameLength {
		return invalid("recipientName", "Recipient name is too long (max 100 characters)")
	}

	if r.Instructions == "" {
		return invalid("instructions", "Instructions are required")
	}
	instructions := utf8.RuneCountInString(strings.TrimSpace(r.Instructions))
	if instructions < MinInstructionsLength {
		return invalid("instructions", "Instructions must be at least 10 characters")
	}
	if instructions > MaxInstructionsLength {
		return invalid("instructions", "Instructions are too long (max 500 characters)")
	}

	if !r.Amount.IsPositive() {
		return invalid("amount", "Invalid amount")
	}

	return nil
}
