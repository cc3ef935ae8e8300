package domain

import (
	"time"

	"github.com/google/uuid"
)

// GenerationRun records one completed generation pass. Runs are the
// persisted schedule state: on boot the scheduler inspects the most recent
// run to decide whether the current day's pass was missed while the process
// was down.
type GenerationRun struct {
	ID        uuid.UUID `json:"id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Generated int       `json:"generated"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}

// NewGenerationRun creates a run record for a pass that started at startedAt
// and just finished with the given counts.
func NewGenerationRun(startedAt time.Time, generated, skipped, failed int) *GenerationRun {
	return &GenerationRun{
		ID:        uuid.New(),
		StartedAt: startedAt,
		EndedAt:   time.Now().UTC(),
		Generated: generated,
		Skipped:   skipped,
		Failed:    failed,
	}
}
