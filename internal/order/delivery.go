package order

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

const (
	DefaultResponseTime = 48 * time.Hour
	MinRushWindow       = 12 * time.Hour
)

var responseTimeRe = regexp.MustCompile(`^(\d+)([hd])$`)

// ParseResponseTime turns "<N>h" or "<N>d" into a duration. Anything else,
// including values too large for a time.Duration, yields DefaultResponseTime.
func ParseResponseTime(responseTime string) time.Duration {
	m := responseTimeRe.FindStringSubmatch(responseTime)
	if m == nil {
		return DefaultResponseTime
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return DefaultResponseTime
	}

	unit := time.Hour
	if m[2] == "d" {
		unit = 24 * time.Hour
	}
	if n > math.MaxInt64/int64(unit) {
		return DefaultResponseTime
	}

	return time.Duration(n) * unit
}

func CalculateDeliveryTime(responseTime string, rush bool, base time.Time) time.Time {
	window := ParseResponseTime(responseTime)
	if rush {
		window /= 2
		if window < MinRushWindow {
			window = MinRushWindow
		}
	}
	return base.Add(window)
}
