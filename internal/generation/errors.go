package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrNotYetDue is returned when the computed due date precedes the
	// recurrence's start date. The engine treats this as a normal skip, not a
	// failure: generation never back-dates to satisfy a future start.
	ErrNotYetDue = errors.New("computed due date precedes recurrence start date")

	// ErrNoAllowedWeekday is returned when a full week of single-day advances
	// failed to land on an allowed weekday. Unreachable while only Sunday is
	// disallowed; the bound protects a future rule change from looping forever.
	ErrNoAllowedWeekday = errors.New("no allowed weekday within a week of the computed due date")
)
