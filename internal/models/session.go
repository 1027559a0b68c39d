package models

import (
	"time"
)

// MaxRecentActivity is how many history entries the tracker keeps locally
const MaxRecentActivity = 3

// Status is the server-side state of an attendance session
type Status string

const (
	StatusActive    Status = "active"
	StatusBreak     Status = "break"
	StatusCompleted Status = "completed"
)

// Open reports whether a session in this status still counts as clocked in
func (s Status) Open() bool {
	return s == StatusActive || s == StatusBreak
}

// Session is the authoritative attendance period as returned by the API.
// Timestamps stay as raw strings; use the accessors to parse them.
type Session struct {
	ID                string   `json:"id" validate:"required"`
	ClockIn           string   `json:"clock_in"`
	ClockOut          *string  `json:"clock_out,omitempty"`
	BreakStart        *string  `json:"break_start,omitempty"`
	BreakEnd          *string  `json:"break_end,omitempty"`
	TotalBreakMinutes float64  `json:"total_break_minutes"`
	Status            Status   `json:"status" validate:"required,oneof=active break completed"`
	Location          *string  `json:"location,omitempty"`
	TotalHours        *float64 `json:"total_hours,omitempty"`
}

// ClockInTime parses the clock-in timestamp
func (s *Session) ClockInTime() (time.Time, bool) {
	return ParseTimestamp(s.ClockIn)
}

// BreakStartTime parses the break-start timestamp, if any
func (s *Session) BreakStartTime() (time.Time, bool) {
	if s.BreakStart == nil {
		return time.Time{}, false
	}
	return ParseTimestamp(*s.BreakStart)
}

// ActivityRecord is a read-only summary of a past session
type ActivityRecord struct {
	ID                string   `json:"id"`
	ClockIn           string   `json:"clock_in"`
	ClockOut          *string  `json:"clock_out,omitempty"`
	Status            Status   `json:"status"`
	TotalBreakMinutes float64  `json:"total_break_minutes"`
	TotalHours        *float64 `json:"total_hours,omitempty"`
	Location          *string  `json:"location,omitempty"`
}

// timestampLayouts are tried in order; servers disagree on fractional seconds and zones
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an API timestamp. Values without a zone are local
// time. ok is false when the value is empty or in no known layout.
func ParseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
