package timeutil

import (
	"testing"
	"time"
)

func mustLoadLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("failed to load location %s: %v", name, err)
	}
	return loc
}

func TestLocalDayStart(t *testing.T) {
	t.Parallel()

	newYork := mustLoadLocation(t, "America/New_York")
	tokyo := mustLoadLocation(t, "Asia/Tokyo")

	tests := []struct {
		name      string
		now       time.Time
		loc       *time.Location
		startHour int
		want      time.Time
	}{
		{
			name:      "after boundary same day",
			now:       time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC),
			loc:       time.UTC,
			startHour: 5,
			want:      time.Date(2024, 6, 15, 5, 0, 0, 0, time.UTC),
		},
		{
			name:      "before boundary rolls back a day",
			now:       time.Date(2024, 6, 15, 3, 0, 0, 0, time.UTC),
			loc:       time.UTC,
			startHour: 5,
			want:      time.Date(2024, 6, 14, 5, 0, 0, 0, time.UTC),
		},
		{
			name:      "exactly at boundary",
			now:       time.Date(2024, 6, 15, 5, 0, 0, 0, time.UTC),
			loc:       time.UTC,
			startHour: 5,
			want:      time.Date(2024, 6, 15, 5, 0, 0, 0, time.UTC),
		},
		{
			name:      "nil location defaults to UTC",
			now:       time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
			loc:       nil,
			startHour: 5,
			want:      time.Date(2024, 6, 15, 5, 0, 0, 0, time.UTC),
		},
		{
			name:      "UTC instant evaluated in user zone",
			now:       time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC), // 10:00 in Tokyo
			loc:       tokyo,
			startHour: 5,
			want:      time.Date(2024, 6, 15, 5, 0, 0, 0, tokyo),
		},
		{
			name:      "midnight boundary",
			now:       time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC),
			loc:       time.UTC,
			startHour: 0,
			want:      time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "spring forward, after transition",
			// DST began 2024-03-10 02:00 in New York; 06:00 local is after
			// the jump and the 05:00 boundary still exists that day.
			now:       time.Date(2024, 3, 10, 6, 0, 0, 0, newYork),
			loc:       newYork,
			startHour: 5,
			want:      time.Date(2024, 3, 10, 5, 0, 0, 0, newYork),
		},
		{
			name: "spring forward, boundary hour skipped",
			// 02:00-03:00 did not exist on 2024-03-10 in New York. A 02:00
			// boundary normalizes to 03:00 EDT, which is still before 06:00.
			now:       time.Date(2024, 3, 10, 6, 0, 0, 0, newYork),
			loc:       newYork,
			startHour: 2,
			want:      time.Date(2024, 3, 10, 3, 0, 0, 0, newYork),
		},
		{
			name: "fall back, after transition",
			// DST ended 2024-11-03 02:00 in New York.
			now:       time.Date(2024, 11, 3, 12, 0, 0, 0, newYork),
			loc:       newYork,
			startHour: 5,
			want:      time.Date(2024, 11, 3, 5, 0, 0, 0, newYork),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := LocalDayStart(tt.now, tt.loc, tt.startHour)
			if !got.Equal(tt.want) {
				t.Errorf("LocalDayStart() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLocalDayStartNeverAfterNow(t *testing.T) {
	t.Parallel()

	newYork := mustLoadLocation(t, "America/New_York")

	// Sweep an entire year hour by hour, including both DST transitions.
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := now.AddDate(1, 0, 0)
	for ; now.Before(end); now = now.Add(time.Hour) {
		start := LocalDayStart(now, newYork, 5)
		if start.After(now) {
			t.Fatalf("day start %v is after now %v", start, now)
		}
		if now.Sub(start) > 25*time.Hour {
			t.Fatalf("day start %v is more than 25h before now %v", start, now)
		}
	}
}

func TestLocalDayEnd(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC)
	start := LocalDayStart(now, time.UTC, 5)
	dayEnd := LocalDayEnd(now, time.UTC, 5)

	if !dayEnd.Equal(start.AddDate(0, 0, 1)) {
		t.Errorf("LocalDayEnd() = %v, want %v", dayEnd, start.AddDate(0, 0, 1))
	}
	if !dayEnd.After(now) {
		t.Errorf("day end %v should be after now %v", dayEnd, now)
	}
}
