package schedule

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// ParseCategory classifies why a provider document was rejected.
type ParseCategory string

const (
	ParseMalformed    ParseCategory = "malformed-structure"
	ParseInvalidRange ParseCategory = "invalid-time-range"
	ParseOverlap      ParseCategory = "overlap-detected"
	ParseCoverageGap  ParseCategory = "coverage-gap"
)

// ParseError is a rejected provider document. The whole document is
// discarded; a caller keeps serving its previous snapshot instead.
type ParseError struct {
	Category ParseCategory
	Detail   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse schedule (%s): %s", e.Category, e.Detail)
}

// providerDocument is the upstream JSON shape: groups -> date -> slots.
type providerDocument struct {
	RegionID    string                                 `json:"regionId"`
	LastUpdated string                                 `json:"lastUpdated"`
	Groups      map[string]map[string][]providerWindow `json:"groups"`
}

type providerWindow struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Status string `json:"status"`
}

// statusFromProvider maps upstream status codes onto the internal enum.
// Unknown codes become StatusPossible rather than being dropped.
func statusFromProvider(code string) Status {
	switch code {
	case "on":
		return StatusAvailable
	case "off":
		return StatusUnavailable
	case "maybe":
		return StatusPossible
	default:
		return StatusPossible
	}
}

// Normalize validates a raw provider document and builds an immutable
// Schedule. Windows per group/day are sorted, adjacent same-status
// windows are merged, and every day must cover 00:00-24:00 with no
// overlaps or gaps. A day with zero windows is simply absent from the
// result, which is distinct from a day of all-available windows.
func Normalize(raw []byte, fetchedAt time.Time) (*Schedule, error) {
	var doc providerDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ParseError{Category: ParseMalformed, Detail: err.Error()}
	}
	if doc.Groups == nil {
		return nil, &ParseError{Category: ParseMalformed, Detail: "missing groups object"}
	}

	groups := make(map[string]GroupSchedule, len(doc.Groups))
	for group, days := range doc.Groups {
		gs := make(GroupSchedule, len(days))
		for date, slots := range days {
			if _, err := time.Parse(DateLayout, date); err != nil {
				return nil, &ParseError{
					Category: ParseMalformed,
					Detail:   fmt.Sprintf("group %s: bad date key %q", group, date),
				}
			}
			if len(slots) == 0 {
				continue // no data published for this day
			}
			day, err := normalizeDay(group, date, slots)
			if err != nil {
				return nil, err
			}
			gs[date] = day
		}
		groups[group] = gs
	}

	return &Schedule{
		Groups:        groups,
		FetchedAt:     fetchedAt,
		SourceVersion: doc.LastUpdated,
	}, nil
}

func normalizeDay(group, date string, slots []providerWindow) (DaySchedule, error) {
	windows := make(DaySchedule, 0, len(slots))
	for _, slot := range slots {
		start, err := parseClock(slot.Start, false)
		if err != nil {
			return nil, &ParseError{
				Category: ParseInvalidRange,
				Detail:   fmt.Sprintf("group %s %s: %v", group, date, err),
			}
		}
		end, err := parseClock(slot.End, true)
		if err != nil {
			return nil, &ParseError{
				Category: ParseInvalidRange,
				Detail:   fmt.Sprintf("group %s %s: %v", group, date, err),
			}
		}
		if start >= end {
			return nil, &ParseError{
				Category: ParseInvalidRange,
				Detail:   fmt.Sprintf("group %s %s: window %s-%s is empty or inverted", group, date, slot.Start, slot.End),
			}
		}
		windows = append(windows, TimeWindow{Start: start, End: end, Status: statusFromProvider(slot.Status)})
	}

	sort.Slice(windows, func(i, j int) bool { return windows[i].Start < windows[j].Start })

	for i := 1; i < len(windows); i++ {
		if windows[i].Start < windows[i-1].End {
			return nil, &ParseError{
				Category: ParseOverlap,
				Detail:   fmt.Sprintf("group %s %s: windows overlap at %s", group, date, clockString(windows[i].Start)),
			}
		}
	}

	if windows[0].Start != 0 || windows[len(windows)-1].End != endOfDay {
		return nil, &ParseError{
			Category: ParseCoverageGap,
			Detail:   fmt.Sprintf("group %s %s: day not covered from 00:00 to 24:00", group, date),
		}
	}
	for i := 1; i < len(windows); i++ {
		if windows[i].Start != windows[i-1].End {
			return nil, &ParseError{
				Category: ParseCoverageGap,
				Detail:   fmt.Sprintf("group %s %s: gap before %s", group, date, clockString(windows[i].Start)),
			}
		}
	}

	return mergeAdjacent(windows), nil
}

// mergeAdjacent coalesces touching windows with the same status so a
// window's successor always carries a different status.
func mergeAdjacent(windows DaySchedule) DaySchedule {
	merged := windows[:1]
	for _, w := range windows[1:] {
		last := &merged[len(merged)-1]
		if w.Status == last.Status {
			last.End = w.End
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// parseClock converts "HH:MM" to minutes since midnight. "24:00" is
// accepted only as a window end.
func parseClock(s string, allowMidnight bool) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("bad time %q", s)
	}
	if m < 0 || m > 59 {
		return 0, fmt.Errorf("bad time %q", s)
	}
	if h == 24 && m == 0 && allowMidnight {
		return endOfDay, nil
	}
	if h < 0 || h > 23 {
		return 0, fmt.Errorf("bad time %q", s)
	}
	return h*60 + m, nil
}

func clockString(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
