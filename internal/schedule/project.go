package schedule

import (
	"sort"
	"time"
)

// Projection is the point-in-time view of one group: its status right
// now, how long the current window lasts, and what comes next. Derived
// on every evaluation, never stored.
type Projection struct {
	Status      Status
	Remaining   time.Duration // time left in the current window
	UntilChange time.Duration // time until the status changes
	NextStatus  Status
}

var unknownProjection = Projection{Status: StatusUnknown, NextStatus: StatusUnknown}

// Project evaluates the schedule for a group at an instant. If the
// group or its day has no data the result is StatusUnknown with zero
// durations. Windows are half-open, so an instant exactly on a boundary
// belongs to the window that starts there.
func Project(s *Schedule, group string, at time.Time) Projection {
	day := s.Day(group, at.Format(DateLayout))
	if day == nil {
		return unknownProjection
	}

	h, m, sec := at.Clock()
	secOfDay := h*3600 + m*60 + sec

	// First window ending after the instant; full-day coverage
	// guarantees it also starts at or before the instant.
	idx := sort.Search(len(day), func(i int) bool { return day[i].End*60 > secOfDay })
	if idx == len(day) {
		return unknownProjection
	}
	w := day[idx]

	remaining := time.Duration(w.End*60-secOfDay) * time.Second

	next := StatusUnknown
	if idx+1 < len(day) {
		next = day[idx+1].Status
	} else if tomorrow := s.Day(group, at.AddDate(0, 0, 1).Format(DateLayout)); tomorrow != nil {
		next = tomorrow[0].Status
	}

	return Projection{
		Status:      w.Status,
		Remaining:   remaining,
		UntilChange: remaining,
		NextStatus:  next,
	}
}
