package generation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taskloop/taskloop-api/internal/domain"
	"github.com/taskloop/taskloop-api/internal/store"
)

// MockRecurrenceStore implements store.RecurrenceStore for testing.
// Defaults are backed by an in-memory map; individual methods can be
// overridden through the Fn fields.
type MockRecurrenceStore struct {
	mutex            sync.RWMutex
	defs             map[uuid.UUID]*domain.RecurrenceDefinition
	FindActiveFn     func(ctx context.Context, now time.Time) ([]*domain.RecurrenceDefinition, error)
	UpdateBookkeepFn func(ctx context.Context, id uuid.UUID, lastGeneratedAt, nextRunAt time.Time) error
	BookkeepingCalls int
}

// NewMockRecurrenceStore creates a MockRecurrenceStore with default behavior.
func NewMockRecurrenceStore(defs ...*domain.RecurrenceDefinition) *MockRecurrenceStore {
	s := &MockRecurrenceStore{
		defs: make(map[uuid.UUID]*domain.RecurrenceDefinition),
	}
	for _, def := range defs {
		s.defs[def.ID] = def
	}

	s.FindActiveFn = func(ctx context.Context, now time.Time) ([]*domain.RecurrenceDefinition, error) {
		s.mutex.RLock()
		defer s.mutex.RUnlock()

		var active []*domain.RecurrenceDefinition
		for _, def := range s.defs {
			if !def.IsActive || def.StartDate.After(now) {
				continue
			}
			if def.EndDate != nil && def.EndDate.Before(now) {
				continue
			}
			active = append(active, def)
		}
		return active, nil
	}

	s.UpdateBookkeepFn = func(ctx context.Context, id uuid.UUID, lastGeneratedAt, nextRunAt time.Time) error {
		s.mutex.Lock()
		defer s.mutex.Unlock()

		def, exists := s.defs[id]
		if !exists {
			return store.ErrRecurrenceNotFound
		}
		def.LastGeneratedAt = &lastGeneratedAt
		def.NextRunAt = &nextRunAt
		return nil
	}

	return s
}

// Create adds a definition to the mock store.
func (s *MockRecurrenceStore) Create(ctx context.Context, def *domain.RecurrenceDefinition) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.defs[def.ID] = def
	return nil
}

// GetByID retrieves a definition by ID.
func (s *MockRecurrenceStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.RecurrenceDefinition, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	def, exists := s.defs[id]
	if !exists {
		return nil, store.ErrRecurrenceNotFound
	}
	return def, nil
}

// FindByAssignee retrieves definitions assigned to the given user.
func (s *MockRecurrenceStore) FindByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]*domain.RecurrenceDefinition, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var out []*domain.RecurrenceDefinition
	for _, def := range s.defs {
		if def.AssigneeID == assigneeID {
			out = append(out, def)
		}
	}
	return out, nil
}

// FindActive retrieves generation candidates for the given instant.
func (s *MockRecurrenceStore) FindActive(ctx context.Context, now time.Time) ([]*domain.RecurrenceDefinition, error) {
	return s.FindActiveFn(ctx, now)
}

// Update replaces a stored definition.
func (s *MockRecurrenceStore) Update(ctx context.Context, def *domain.RecurrenceDefinition) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.defs[def.ID]; !exists {
		return store.ErrRecurrenceNotFound
	}
	s.defs[def.ID] = def
	return nil
}

// UpdateBookkeeping persists the generation bookkeeping fields.
func (s *MockRecurrenceStore) UpdateBookkeeping(ctx context.Context, id uuid.UUID, lastGeneratedAt, nextRunAt time.Time) error {
	s.mutex.Lock()
	s.BookkeepingCalls++
	s.mutex.Unlock()
	return s.UpdateBookkeepFn(ctx, id, lastGeneratedAt, nextRunAt)
}

// Delete removes a definition.
func (s *MockRecurrenceStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, exists := s.defs[id]; !exists {
		return store.ErrRecurrenceNotFound
	}
	delete(s.defs, id)
	return nil
}

// MockTaskStore implements store.TaskStore for testing. It enforces the
// (recurrence, calendar day) uniqueness constraint the way the real store's
// unique index does, so idempotence races are observable in tests.
type MockTaskStore struct {
	mutex    sync.RWMutex
	tasks    []*domain.Task
	CreateFn func(ctx context.Context, task *domain.Task) error
	FindFn   func(ctx context.Context, recurrenceID uuid.UUID, dayStart, dayEnd time.Time) (*domain.Task, error)
}

// NewMockTaskStore creates a MockTaskStore with default behavior.
func NewMockTaskStore() *MockTaskStore {
	s := &MockTaskStore{}

	s.CreateFn = func(ctx context.Context, task *domain.Task) error {
		s.mutex.Lock()
		defer s.mutex.Unlock()

		if task.RecurrenceID != nil {
			for _, existing := range s.tasks {
				if existing.RecurrenceID != nil &&
					*existing.RecurrenceID == *task.RecurrenceID &&
					sameDay(existing.DueDate, task.DueDate) {
					return store.ErrGeneratedTaskExists
				}
			}
		}
		s.tasks = append(s.tasks, task)
		return nil
	}

	s.FindFn = func(ctx context.Context, recurrenceID uuid.UUID, dayStart, dayEnd time.Time) (*domain.Task, error) {
		s.mutex.RLock()
		defer s.mutex.RUnlock()

		for _, task := range s.tasks {
			if task.RecurrenceID != nil && *task.RecurrenceID == recurrenceID &&
				!task.DueDate.Before(dayStart) && task.DueDate.Before(dayEnd) {
				return task, nil
			}
		}
		return nil, store.ErrTaskNotFound
	}

	return s
}

// Create saves a task to the mock store.
func (s *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	return s.CreateFn(ctx, task)
}

// FindGenerated retrieves a generated task within the given day window.
func (s *MockTaskStore) FindGenerated(ctx context.Context, recurrenceID uuid.UUID, dayStart, dayEnd time.Time) (*domain.Task, error) {
	return s.FindFn(ctx, recurrenceID, dayStart, dayEnd)
}

// Tasks returns a snapshot of all stored tasks.
func (s *MockTaskStore) Tasks() []*domain.Task {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make([]*domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MockRunStore implements store.GenerationRunStore for testing.
type MockRunStore struct {
	mutex    sync.RWMutex
	runs     []*domain.GenerationRun
	CreateFn func(ctx context.Context, run *domain.GenerationRun) error
}

// NewMockRunStore creates a MockRunStore with default behavior.
func NewMockRunStore() *MockRunStore {
	s := &MockRunStore{}
	s.CreateFn = func(ctx context.Context, run *domain.GenerationRun) error {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		s.runs = append(s.runs, run)
		return nil
	}
	return s
}

// Create records a generation run.
func (s *MockRunStore) Create(ctx context.Context, run *domain.GenerationRun) error {
	return s.CreateFn(ctx, run)
}

// GetLatest retrieves the most recently started run.
func (s *MockRunStore) GetLatest(ctx context.Context) (*domain.GenerationRun, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if len(s.runs) == 0 {
		return nil, store.ErrNotFound
	}
	latest := s.runs[0]
	for _, run := range s.runs[1:] {
		if run.StartedAt.After(latest.StartedAt) {
			latest = run
		}
	}
	return latest, nil
}

// Runs returns a snapshot of all recorded runs.
func (s *MockRunStore) Runs() []*domain.GenerationRun {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make([]*domain.GenerationRun, len(s.runs))
	copy(out, s.runs)
	return out
}
