package domain

import "time"

// DateLayout is the calendar-day key used by attendance and streaks.
const DateLayout = "2006-01-02"

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceRest    AttendanceStatus = "rest"
)

func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceRest
}

// AttendanceEntry is one member-day. There is at most one entry per date.
type AttendanceEntry struct {
	Date   string           `json:"date"`
	Status AttendanceStatus `json:"status"`
}

// StreakRecord is derived from attendance; it is never set directly.
type StreakRecord struct {
	Current  int    `json:"current"`
	Best     int    `json:"best"`
	LastDate string `json:"lastDate,omitempty"`
}

// DateKey formats t as a calendar-day key in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}
