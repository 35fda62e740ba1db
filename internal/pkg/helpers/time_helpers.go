package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Date layouts used in the organizations data file
const (
	// JoinedDateLayout is yyyy-MM-dd, used for member joined dates
	JoinedDateLayout = "2006-01-02"
	// OfficerStartDateLayout is MM/DD/YYYY, used for officer start dates
	OfficerStartDateLayout = "01/02/2006"
)

// Clock returns the current time; services take one so tests can pin the date
type Clock func() time.Time

// SystemClock is the wall clock
func SystemClock() time.Time { return time.Now() }

// Today formats the clock's current date as yyyy-MM-dd
func Today(clock Clock) string {
	if clock == nil {
		clock = SystemClock
	}
	return clock().Format(JoinedDateLayout)
}

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}
