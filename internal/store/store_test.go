package store

import (
	"testing"
	"time"

	"yasno-exporter/internal/schedule"
)

func TestSnapshotCodecRoundTrip(t *testing.T) {
	original := &schedule.Schedule{
		Groups: map[string]schedule.GroupSchedule{
			"group_1": {
				"2026-08-29": {
					{Start: 0, End: 360, Status: schedule.StatusUnavailable},
					{Start: 360, End: 1440, Status: schedule.StatusAvailable},
				},
			},
			"group_2": {},
		},
		FetchedAt:     time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC),
		SourceVersion: "v42",
	}

	payload, err := encodeSnapshot(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := decodeSnapshot(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !decoded.FetchedAt.Equal(original.FetchedAt) {
		t.Fatalf("fetchedAt changed: %s != %s", decoded.FetchedAt, original.FetchedAt)
	}
	if decoded.SourceVersion != "v42" {
		t.Fatalf("source version changed: %q", decoded.SourceVersion)
	}
	if len(decoded.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(decoded.Groups))
	}

	day := decoded.Day("group_1", "2026-08-29")
	if len(day) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(day))
	}
	if day[0] != (schedule.TimeWindow{Start: 0, End: 360, Status: schedule.StatusUnavailable}) {
		t.Fatalf("unexpected window after round trip: %+v", day[0])
	}
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	if _, err := decodeSnapshot([]byte("not json")); err == nil {
		t.Fatal("expected decode error")
	}
}
