// Package timeutil provides calendar arithmetic for the review scheduler,
// most importantly the timezone-aware start-of-day boundary that the daily
// new-card limit is counted against.
package timeutil

import "time"

// DefaultStartOfDayHour is the hour (in the user's local time) at which a
// study day rolls over. It is deliberately not midnight: reviews done shortly
// after midnight should count toward the evening's session, so the boundary
// sits at an hour the user is most likely asleep.
const DefaultStartOfDayHour = 5

// LocalDayStart returns the instant the current study day began for the
// given local time zone and start-of-day hour: the most recent occurrence of
// startOfDayHour o'clock, local time, at or before now.
//
// The result is computed with time.Date in loc, so DST transitions are
// handled by the time package: if the boundary hour does not exist on a
// given date (spring forward) the boundary shifts forward with the clock,
// and if it occurs twice (fall back) the first occurrence is used.
func LocalDayStart(now time.Time, loc *time.Location, startOfDayHour int) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), startOfDayHour, 0, 0, 0, loc)
	if local.Before(start) {
		start = start.AddDate(0, 0, -1)
	}
	return start
}

// LocalDayEnd returns the instant the current study day ends: the next
// occurrence of startOfDayHour o'clock after LocalDayStart. Burials expire
// at this boundary.
func LocalDayEnd(now time.Time, loc *time.Location, startOfDayHour int) time.Time {
	return LocalDayStart(now, loc, startOfDayHour).AddDate(0, 0, 1)
}
