package schedule

import (
	"errors"
	"testing"
	"time"
)

func mustNormalize(t *testing.T, raw string) *Schedule {
	t.Helper()
	s, err := Normalize([]byte(raw), time.Now())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return s
}

func assertParseCategory(t *testing.T, raw string, want ParseCategory) {
	t.Helper()
	_, err := Normalize([]byte(raw), time.Now())
	if err == nil {
		t.Fatalf("expected %s error, got none", want)
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %T: %v", err, err)
	}
	if pe.Category != want {
		t.Fatalf("expected category %s, got %s", want, pe.Category)
	}
}

func TestNormalizeValidDocument(t *testing.T) {
	// Windows deliberately out of order; normalize must sort them.
	raw := `{
		"regionId": "kyiv",
		"lastUpdated": "v42",
		"groups": {
			"group_1": {
				"2026-08-29": [
					{"start": "06:00", "end": "24:00", "status": "on"},
					{"start": "00:00", "end": "06:00", "status": "off"}
				]
			}
		}
	}`
	s := mustNormalize(t, raw)

	if s.SourceVersion != "v42" {
		t.Fatalf("expected source version v42, got %q", s.SourceVersion)
	}
	day := s.Day("group_1", "2026-08-29")
	if len(day) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(day))
	}
	if day[0].Start != 0 || day[0].End != 360 || day[0].Status != StatusUnavailable {
		t.Fatalf("unexpected first window: %+v", day[0])
	}
	if day[1].Start != 360 || day[1].End != 1440 || day[1].Status != StatusAvailable {
		t.Fatalf("unexpected second window: %+v", day[1])
	}
}

func TestNormalizeUnknownStatusBecomesPossible(t *testing.T) {
	raw := `{"groups": {"g": {"2026-08-29": [
		{"start": "00:00", "end": "12:00", "status": "wat"},
		{"start": "12:00", "end": "24:00", "status": "on"}
	]}}}`
	s := mustNormalize(t, raw)
	if got := s.Day("g", "2026-08-29")[0].Status; got != StatusPossible {
		t.Fatalf("unknown status code should map to possible, got %v", got)
	}
}

func TestNormalizeMergesAdjacentSameStatus(t *testing.T) {
	raw := `{"groups": {"g": {"2026-08-29": [
		{"start": "00:00", "end": "06:00", "status": "off"},
		{"start": "06:00", "end": "12:00", "status": "off"},
		{"start": "12:00", "end": "24:00", "status": "on"}
	]}}}`
	day := mustNormalize(t, raw).Day("g", "2026-08-29")
	if len(day) != 2 {
		t.Fatalf("expected adjacent off windows merged, got %d windows", len(day))
	}
	if day[0].End != 720 {
		t.Fatalf("merged window should end at 12:00, got %d", day[0].End)
	}
}

func TestNormalizeEmptyDayIsAbsent(t *testing.T) {
	raw := `{"groups": {"g": {"2026-08-29": []}}}`
	s := mustNormalize(t, raw)
	if day := s.Day("g", "2026-08-29"); day != nil {
		t.Fatalf("day with zero windows should be absent, got %+v", day)
	}
	if _, ok := s.Groups["g"]; !ok {
		t.Fatal("group itself should still be present")
	}
}

func TestNormalizeRejectsOverlap(t *testing.T) {
	assertParseCategory(t, `{"groups": {"g": {"2026-08-29": [
		{"start": "00:00", "end": "07:00", "status": "off"},
		{"start": "06:00", "end": "24:00", "status": "on"}
	]}}}`, ParseOverlap)
}

func TestNormalizeRejectsGap(t *testing.T) {
	assertParseCategory(t, `{"groups": {"g": {"2026-08-29": [
		{"start": "00:00", "end": "06:00", "status": "off"},
		{"start": "07:00", "end": "24:00", "status": "on"}
	]}}}`, ParseCoverageGap)

	// Day not starting at midnight is also a gap.
	assertParseCategory(t, `{"groups": {"g": {"2026-08-29": [
		{"start": "01:00", "end": "24:00", "status": "on"}
	]}}}`, ParseCoverageGap)
}

func TestNormalizeRejectsInvalidRange(t *testing.T) {
	assertParseCategory(t, `{"groups": {"g": {"2026-08-29": [
		{"start": "08:00", "end": "06:00", "status": "off"}
	]}}}`, ParseInvalidRange)

	assertParseCategory(t, `{"groups": {"g": {"2026-08-29": [
		{"start": "25:00", "end": "26:00", "status": "off"}
	]}}}`, ParseInvalidRange)
}

func TestNormalizeRejectsMalformed(t *testing.T) {
	assertParseCategory(t, `not json`, ParseMalformed)
	assertParseCategory(t, `{"regionId": "kyiv"}`, ParseMalformed)
	assertParseCategory(t, `{"groups": {"g": {"someday": [
		{"start": "00:00", "end": "24:00", "status": "on"}
	]}}}`, ParseMalformed)
}
