package generation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskloop/taskloop-api/internal/domain"
)

// newTestDefinition builds a valid active definition with the given frequency
// and a start date far enough in the past to never trip the bound check.
func newTestDefinition(t *testing.T, frequency domain.Frequency, startDate time.Time) *domain.RecurrenceDefinition {
	t.Helper()

	def, err := domain.NewRecurrenceDefinition(
		"water the plants",
		"",
		frequency,
		startDate,
		nil,
		uuid.New(),
		uuid.New(),
		domain.TaskTemplate{},
	)
	require.NoError(t, err)
	return def
}

func TestNextDueDate_FrequencyOffsets(t *testing.T) {
	t.Parallel()

	// Wednesday, 2025-06-11 21:30 UTC.
	now := time.Date(2025, time.June, 11, 21, 30, 0, 0, time.UTC)
	start := now.AddDate(0, -1, 0)

	tests := []struct {
		name      string
		frequency domain.Frequency
		want      time.Time
	}{
		{
			name:      "daily is tomorrow",
			frequency: domain.FrequencyDaily,
			want:      time.Date(2025, time.June, 12, 12, 0, 0, 0, time.UTC),
		},
		{
			name:      "weekly is seven days out",
			frequency: domain.FrequencyWeekly,
			want:      time.Date(2025, time.June, 18, 12, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly is tomorrow plus one month",
			frequency: domain.FrequencyMonthly,
			want:      time.Date(2025, time.July, 12, 12, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			def := newTestDefinition(t, tc.frequency, start)
			due, err := NextDueDate(def, now, time.UTC)

			require.NoError(t, err)
			assert.Equal(t, tc.want, due)
		})
	}
}

func TestNextDueDate_SkipsSunday(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		frequency domain.Frequency
		now       time.Time
		want      time.Time
	}{
		{
			// Saturday: tomorrow is Sunday, pushed to Monday.
			name:      "daily",
			frequency: domain.FrequencyDaily,
			now:       time.Date(2025, time.June, 14, 22, 0, 0, 0, time.UTC),
			want:      time.Date(2025, time.June, 16, 12, 0, 0, 0, time.UTC),
		},
		{
			// Sunday: tomorrow+6 is next Sunday, pushed to Monday.
			name:      "weekly",
			frequency: domain.FrequencyWeekly,
			now:       time.Date(2025, time.June, 15, 22, 0, 0, 0, time.UTC),
			want:      time.Date(2025, time.June, 23, 12, 0, 0, 0, time.UTC),
		},
		{
			// Sat Feb 1: tomorrow is Feb 2, one month later is Sun Mar 2,
			// pushed to Monday Mar 3.
			name:      "monthly",
			frequency: domain.FrequencyMonthly,
			now:       time.Date(2025, time.February, 1, 22, 0, 0, 0, time.UTC),
			want:      time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			def := newTestDefinition(t, tc.frequency, tc.now.AddDate(0, -2, 0))
			due, err := NextDueDate(def, tc.now, time.UTC)

			require.NoError(t, err)
			assert.Equal(t, tc.want, due)
			assert.NotEqual(t, time.Sunday, due.Weekday())
		})
	}
}

func TestNextDueDate_MonthEndClamp(t *testing.T) {
	t.Parallel()

	// Thursday Jan 30: tomorrow is Jan 31, which does not exist in February.
	now := time.Date(2025, time.January, 30, 22, 0, 0, 0, time.UTC)
	def := newTestDefinition(t, domain.FrequencyMonthly, now.AddDate(0, -2, 0))

	due, err := NextDueDate(def, now, time.UTC)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.February, 28, 12, 0, 0, 0, time.UTC), due)
}

func TestNextDueDate_RejectsBeforeStartDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 11, 21, 30, 0, 0, time.UTC)

	// Starts two weeks from now; the daily candidate (tomorrow) is too early.
	def := newTestDefinition(t, domain.FrequencyDaily, now.AddDate(0, 0, 14))

	_, err := NextDueDate(def, now, time.UTC)
	assert.ErrorIs(t, err, ErrNotYetDue)
}

func TestNextDueDate_DueDateSatisfiesFutureStart(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 11, 21, 30, 0, 0, time.UTC)

	// Starts tomorrow; the daily candidate lands exactly in-window.
	def := newTestDefinition(t, domain.FrequencyDaily, time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC))

	due, err := NextDueDate(def, now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.June, 12, 12, 0, 0, 0, time.UTC), due)
}

func TestNextDueDate_InvalidFrequency(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 11, 21, 30, 0, 0, time.UTC)
	def := newTestDefinition(t, domain.FrequencyDaily, now.AddDate(0, -1, 0))
	def.Frequency = "Fortnightly"

	_, err := NextDueDate(def, now, time.UTC)
	assert.ErrorIs(t, err, domain.ErrInvalidFrequency)
}

func TestAddOneMonthClamped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "plain shift keeps day of month",
			in:   time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.May, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "clamps to short february",
			in:   time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "clamps to leap february",
			in:   time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "december rolls into next year",
			in:   time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "thirty one to thirty",
			in:   time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, addOneMonthClamped(tc.in))
		})
	}
}
