package models

import "time"

// Timeframes the analyzer accepts. Anything else falls back to Default.
const (
	TF5m  = "5m"
	TF15m = "15m"
	TF1h  = "1h"
	TF4h  = "4h"

	DefaultTimeframe = TF15m
)

var allowedTimeframes = []string{TF5m, TF15m, TF1h, TF4h}

func Timeframes() []string {
	out := make([]string, len(allowedTimeframes))
	copy(out, allowedTimeframes)
	return out
}

func ValidTimeframe(tf string) bool {
	for _, v := range allowedTimeframes {
		if v == tf {
			return true
		}
	}
	return false
}

func TimeframeDuration(tf string) time.Duration {
	switch tf {
	case TF5m:
		return 5 * time.Minute
	case TF15m:
		return 15 * time.Minute
	case TF1h:
		return time.Hour
	case TF4h:
		return 4 * time.Hour
	default:
		return 0
	}
}
