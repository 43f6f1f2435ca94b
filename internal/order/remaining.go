package order

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

type TimeRemaining struct {
	Text      string `json:"timeRemaining"`
	IsOverdue bool   `json:"isOverdue"`
}

func CalculateTimeRemaining(deadline, now time.Time) TimeRemaining {
	diff := deadline.Sub(now)
	// a deadline equal to now is already overdue
	if diff <= 0 {
		return TimeRemaining{Text: formatOverdue(-diff), IsOverdue: true}
	}
	return TimeRemaining{Text: formatRemaining(diff)}
}

func formatRemaining(d time.Duration) string {
	days := int(d / day)
	hours := int(d % day / time.Hour)
	minutes := int(d % time.Hour / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return "Less than 1 minute"
	}
}

func formatOverdue(d time.Duration) string {
	days := int(d / day)
	hours := int(d % day / time.Hour)

	switch {
	case days > 0:
		return fmt.Sprintf("Overdue by %dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("Overdue by %dh", hours)
	default:
		return "Overdue by less than 1 hour"
	}
}
