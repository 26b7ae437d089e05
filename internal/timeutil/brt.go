package timeutil

import (
	"time"
)

// BRT is the Brasilia Time location (UTC-3). Orders, register sessions
// and closing reports are all stamped in restaurant-local time.
var BRT *time.Location

func init() {
	var err error
	BRT, err = time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		// Fallback: create fixed zone if America/Sao_Paulo not available
		BRT = time.FixedZone("BRT", -3*60*60) // UTC-3
	}
}

// Now returns the current time in BRT
func Now() time.Time {
	return time.Now().In(BRT)
}

// ToBRT converts any time to BRT
func ToBRT(t time.Time) time.Time {
	return t.In(BRT)
}

// StartOfDay returns the start of day (00:00:00) in BRT for the given time
func StartOfDay(t time.Time) time.Time {
	local := t.In(BRT)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, BRT)
}

// EndOfDay returns the end of day (23:59:59) in BRT for the given time
func EndOfDay(t time.Time) time.Time {
	local := t.In(BRT)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, BRT)
}

// Common layouts for BRT formatting
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 15:04"
)
