package schedule

import (
	"sort"
	"time"
)

// Status is the power state of a group within a time window.
type Status int

const (
	// StatusUnknown means no schedule data exists for the group/date.
	StatusUnknown Status = -1
	// StatusAvailable means power is on.
	StatusAvailable Status = 0
	// StatusUnavailable means a scheduled outage is in effect.
	StatusUnavailable Status = 1
	// StatusPossible means the provider marked the slot as a possible outage.
	StatusPossible Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusUnavailable:
		return "unavailable"
	case StatusPossible:
		return "possible"
	default:
		return "unknown"
	}
}

// DateLayout is the key format for dated day schedules.
const DateLayout = "2006-01-02"

// minutes in a full day; window End may equal this (exclusive bound).
const endOfDay = 24 * 60

// TimeWindow is a contiguous slot of one day with a single status.
// Start and End are minutes since midnight; the interval is half-open
// [Start, End), and End may be 1440 for "until midnight".
type TimeWindow struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Status Status `json:"status"`
}

// DaySchedule is the ordered, non-overlapping window list covering one
// calendar day from 00:00 to 24:00.
type DaySchedule []TimeWindow

// GroupSchedule maps a date (DateLayout) to that day's schedule.
type GroupSchedule map[string]DaySchedule

// Schedule is one immutable snapshot of the provider's published
// schedule. A refresh builds a whole new Schedule; nothing mutates an
// existing one.
type Schedule struct {
	Groups        map[string]GroupSchedule `json:"groups"`
	FetchedAt     time.Time                `json:"fetched_at"`
	SourceVersion string                   `json:"source_version,omitempty"`
}

// Empty returns the snapshot served before any fetch has succeeded.
func Empty() *Schedule {
	return &Schedule{Groups: map[string]GroupSchedule{}}
}

// GroupNames returns the group identifiers in sorted order.
func (s *Schedule) GroupNames() []string {
	names := make([]string, 0, len(s.Groups))
	for g := range s.Groups {
		names = append(names, g)
	}
	sort.Strings(names)
	return names
}

// Day returns the schedule for a group on a date, or nil if absent.
func (s *Schedule) Day(group, date string) DaySchedule {
	gs, ok := s.Groups[group]
	if !ok {
		return nil
	}
	return gs[date]
}
