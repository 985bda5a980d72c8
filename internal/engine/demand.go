package engine

import "time"

// NextDemandDate projects the contractual due-date cycle forward by one
// calendar month, preserving the day of month. When that day does not
// exist in the target month (the 31st into a 30-day month, or late
// January into February) the date clamps to the target month's last
// day.
func NextDemandDate(last time.Time) time.Time {
	year, month, day := last.Date()

	firstOfNext := time.Date(year, month, 1, 0, 0, 0, 0, last.Location()).AddDate(0, 1, 0)
	if lastDay := daysInMonth(firstOfNext.Year(), firstOfNext.Month()); day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, 0, 0, 0, 0, last.Location())
}

// daysInMonth exploits the normalization of day 0: it resolves to the
// last day of the previous month.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
