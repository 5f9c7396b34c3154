package helpers

import (
	"time"

	"github.com/yigit/assessai/internal/pkg/logger"
)

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil || duration <= 0 {
		logger.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// DaysAgo returns the instant n days before now
func DaysAgo(now time.Time, n int) time.Time {
	return now.AddDate(0, 0, -n)
}
