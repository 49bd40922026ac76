package schema

import (
	"time"
)

const (
	DateLayout            = "2006-01-02"
	DatetimeMinutesLayout = "2006-01-02 15:04"
	DatetimeSecondsLayout = "2006-01-02 15:04:05"
)

// ParseDate parses dates in the "YYYY-MM-DD" format.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// ParseDatetime parses timestamps. Depending on the length of the value, the time and the seconds are optional:
// "YYYY-MM-DD", "YYYY-MM-DD HH:MM" and "YYYY-MM-DD HH:MM:SS" are all valid.
func ParseDatetime(value string) (time.Time, error) {
	layout := DateLayout
	if len(value) > 10 {
		layout = DatetimeMinutesLayout
	}
	if len(value) > 16 {
		layout = DatetimeSecondsLayout
	}
	return time.ParseInLocation(layout, value, time.UTC)
}
