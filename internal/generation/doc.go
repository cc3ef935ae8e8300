// Package generation implements the recurring-task generation core: a pure
// due-date calculator and an idempotent generation engine that turns active
// recurrence definitions into concrete pending tasks, at most one per
// definition per calendar day.
package generation
