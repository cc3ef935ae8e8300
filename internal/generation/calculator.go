package generation

import (
	"fmt"
	"time"

	"github.com/taskloop/taskloop-api/internal/domain"
)

const (
	// disallowedWeekday is the weekday no generated task may fall on.
	disallowedWeekday = time.Sunday

	// dueHour is the normalized time-of-day for generated due dates. Noon is
	// deliberately distinct from midnight so the calendar-day dedup window is
	// unambiguous across timezone boundaries.
	dueHour = 12

	// maxWeekdayAdvances bounds the disallowed-weekday loop. The current rule
	// resolves in one step; the bound keeps a future rule change from
	// looping forever.
	maxWeekdayAdvances = 7
)

// NextDueDate computes the due date for the task a recurrence definition
// would generate at instant now, evaluated in loc.
//
// The candidate is always tomorrow relative to now's calendar day; frequency
// only extends the offset on top of that: Weekly adds six more days (landing
// exactly seven days after today) and Monthly shifts tomorrow forward one
// calendar month, clamping to the last day of shorter months. A candidate
// landing on the disallowed weekday is advanced one day at a time until it
// doesn't. The result is normalized to noon in loc.
//
// Returns ErrNotYetDue if the computed date precedes the definition's start
// date. The function is pure: no side effects, no store access.
func NextDueDate(def *domain.RecurrenceDefinition, now time.Time, loc *time.Location) (time.Time, error) {
	local := now.In(loc)
	year, month, day := local.Date()

	// Tomorrow at midnight. Calendar arithmetic via time.Date keeps this
	// correct across DST transitions, unlike adding 24h.
	due := time.Date(year, month, day+1, 0, 0, 0, 0, loc)

	switch def.Frequency {
	case domain.FrequencyDaily:
		// No further offset.
	case domain.FrequencyWeekly:
		due = due.AddDate(0, 0, 6)
	case domain.FrequencyMonthly:
		due = addOneMonthClamped(due)
	default:
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidFrequency, def.Frequency)
	}

	advances := 0
	for due.Weekday() == disallowedWeekday {
		if advances >= maxWeekdayAdvances {
			return time.Time{}, ErrNoAllowedWeekday
		}
		due = due.AddDate(0, 0, 1)
		advances++
	}

	due = time.Date(due.Year(), due.Month(), due.Day(), dueHour, 0, 0, 0, loc)

	if due.Before(def.StartDate) {
		return time.Time{}, ErrNotYetDue
	}

	return due, nil
}

// addOneMonthClamped shifts t forward one calendar month, keeping the
// day-of-month where possible and clamping to the target month's last day
// otherwise (Jan 31 -> Feb 28/29). Plain AddDate would normalize the
// overflow into the following month instead.
func addOneMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()

	firstOfTarget := time.Date(year, month+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// dayWindow returns the [start, end) calendar-day window containing due,
// evaluated in due's location. This is the dedup query window: one generated
// task per recurrence per day, regardless of time-of-day.
func dayWindow(due time.Time) (time.Time, time.Time) {
	year, month, day := due.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, due.Location())
	return start, start.AddDate(0, 0, 1)
}
