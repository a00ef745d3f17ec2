package schedule

import (
	"testing"
	"time"
)

func testSchedule() *Schedule {
	return &Schedule{
		Groups: map[string]GroupSchedule{
			"G1": {
				"2026-08-29": {
					{Start: 0, End: 360, Status: StatusUnavailable},
					{Start: 360, End: 1440, Status: StatusAvailable},
				},
				"2026-08-30": {
					{Start: 0, End: 120, Status: StatusPossible},
					{Start: 120, End: 1440, Status: StatusAvailable},
				},
			},
		},
		FetchedAt: time.Now(),
	}
}

func at(hour, min int) time.Time {
	return time.Date(2026, 8, 29, hour, min, 0, 0, time.UTC)
}

func TestProjectInsideWindow(t *testing.T) {
	p := Project(testSchedule(), "G1", at(5, 30))

	if p.Status != StatusUnavailable {
		t.Fatalf("expected unavailable at 05:30, got %v", p.Status)
	}
	if p.Remaining != 30*time.Minute {
		t.Fatalf("expected 1800s remaining, got %s", p.Remaining)
	}
	if p.UntilChange != 30*time.Minute {
		t.Fatalf("expected 1800s until change, got %s", p.UntilChange)
	}
	if p.NextStatus != StatusAvailable {
		t.Fatalf("expected next status available, got %v", p.NextStatus)
	}
}

func TestProjectBoundaryBelongsToStartingWindow(t *testing.T) {
	// Half-open windows: 06:00 sharp is in [06:00, 24:00).
	p := Project(testSchedule(), "G1", at(6, 0))
	if p.Status != StatusAvailable {
		t.Fatalf("expected available exactly at 06:00, got %v", p.Status)
	}
}

func TestProjectLastWindowLooksAtNextDay(t *testing.T) {
	p := Project(testSchedule(), "G1", at(23, 0))

	if p.Status != StatusAvailable {
		t.Fatalf("expected available at 23:00, got %v", p.Status)
	}
	if p.Remaining != time.Hour {
		t.Fatalf("expected 1h remaining, got %s", p.Remaining)
	}
	if p.NextStatus != StatusPossible {
		t.Fatalf("expected next day's first status (possible), got %v", p.NextStatus)
	}
}

func TestProjectLastWindowWithoutNextDay(t *testing.T) {
	s := testSchedule()
	delete(s.Groups["G1"], "2026-08-30")

	p := Project(s, "G1", at(23, 0))
	if p.NextStatus != StatusUnknown {
		t.Fatalf("expected unknown next status without next-day data, got %v", p.NextStatus)
	}
}

func TestProjectUnknownGroupOrDay(t *testing.T) {
	s := testSchedule()

	p := Project(s, "no-such-group", at(12, 0))
	if p.Status != StatusUnknown || p.Remaining != 0 || p.UntilChange != 0 {
		t.Fatalf("expected zero unknown projection for missing group, got %+v", p)
	}

	p = Project(s, "G1", time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC))
	if p.Status != StatusUnknown {
		t.Fatalf("expected unknown for missing day, got %v", p.Status)
	}
}

func TestProjectEmptySchedule(t *testing.T) {
	p := Project(Empty(), "G1", at(12, 0))
	if p.Status != StatusUnknown {
		t.Fatalf("expected unknown on empty schedule, got %v", p.Status)
	}
}
