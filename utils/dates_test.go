package utils

import (
	"testing"
	"time"
)

func TestBeginningOfDay(t *testing.T) {
	in := time.Date(2026, 9, 15, 17, 42, 3, 0, time.UTC)
	got := BeginningOfDay(in)
	want := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("BeginningOfDay = %v, want %v", got, want)
	}
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2026, 9, 15, 23, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 18, 1, 0, 0, 0, time.UTC)
	if got := DaysBetween(start, end); got != 3 {
		t.Errorf("DaysBetween = %d, want 3", got)
	}
	if got := DaysBetween(end, start); got != -3 {
		t.Errorf("reversed DaysBetween = %d, want -3", got)
	}
}

func TestTimeWindow(t *testing.T) {
	cases := []struct {
		bucket     string
		start, end string
	}{
		{"morning", "09:00", "11:00"},
		{"afternoon", "13:00", "15:00"},
		{"evening", "17:00", "19:00"},
		{"unknown", "09:00", "11:00"},
	}
	for _, tc := range cases {
		start, end := TimeWindow(tc.bucket)
		if start != tc.start || end != tc.end {
			t.Errorf("TimeWindow(%q) = %s-%s, want %s-%s", tc.bucket, start, end, tc.start, tc.end)
		}
	}
}
