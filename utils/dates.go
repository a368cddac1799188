// utils/dates.go
package utils

import "time"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// TimeWindow maps a coarse time-of-day bucket from a service request to the
// concrete two-hour window an appointment is booked into. Unknown buckets
// fall back to the morning window.
func TimeWindow(bucket string) (start, end string) {
	switch bucket {
	case "afternoon":
		return "13:00", "15:00"
	case "evening":
		return "17:00", "19:00"
	default:
		return "09:00", "11:00"
	}
}
