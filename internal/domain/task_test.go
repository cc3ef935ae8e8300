package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewGeneratedTask(t *testing.T) {
	assignee := uuid.New()
	creator := uuid.New()
	def, err := NewRecurrenceDefinition(
		"Take out the trash", "Bins by the gate",
		FrequencyWeekly, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), nil,
		assignee, creator, validTestTemplate(),
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	due := time.Date(2025, time.June, 18, 12, 0, 0, 0, time.UTC)
	task, err := NewGeneratedTask(def, due)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if task.Title != def.Title || task.Description != def.Description {
		t.Error("Expected title and description to be copied from the definition")
	}

	if task.Status != TaskStatusPending {
		t.Errorf("Expected status %s, got %s", TaskStatusPending, task.Status)
	}

	if !task.DueDate.Equal(due) {
		t.Errorf("Expected due date %v, got %v", due, task.DueDate)
	}

	// Generated tasks are self-assigned: the task creator is the assignee,
	// not the definition's creator.
	if task.AssigneeID != assignee {
		t.Errorf("Expected assignee %v, got %v", assignee, task.AssigneeID)
	}
	if task.CreatorID != assignee {
		t.Errorf("Expected creator %v (the assignee), got %v", assignee, task.CreatorID)
	}

	if task.RecurrenceID == nil || *task.RecurrenceID != def.ID {
		t.Error("Expected back-reference to the spawning definition")
	}

	if task.Priority != def.Template.Priority {
		t.Errorf("Expected priority %s, got %s", def.Template.Priority, task.Priority)
	}
	if task.StartTime != "09:00" || task.EndTime != "09:30" {
		t.Error("Expected template times to be copied")
	}

	if task.CompletedAt != nil {
		t.Error("Expected no completion time on a fresh task")
	}
}

func TestTaskValidate(t *testing.T) {
	valid := Task{
		ID:         uuid.New(),
		Title:      "Take out the trash",
		Status:     TaskStatusPending,
		Priority:   PriorityMedium,
		DueDate:    time.Date(2025, time.June, 18, 12, 0, 0, 0, time.UTC),
		AssigneeID: uuid.New(),
		CreatorID:  uuid.New(),
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid task, got %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Task)
		wantErr error
	}{
		{"nil ID", func(task *Task) { task.ID = uuid.Nil }, ErrTaskIDEmpty},
		{"empty title", func(task *Task) { task.Title = "" }, ErrTaskTitleEmpty},
		{"bad status", func(task *Task) { task.Status = TaskStatus("Paused") }, ErrInvalidTaskStatus},
		{"bad priority", func(task *Task) { task.Priority = Priority("Extreme") }, ErrInvalidPriority},
		{"zero due date", func(task *Task) { task.DueDate = time.Time{} }, ErrTaskDueDateZero},
		{"missing assignee", func(task *Task) { task.AssigneeID = uuid.Nil }, ErrTaskAssigneeEmpty},
		{"missing creator", func(task *Task) { task.CreatorID = uuid.Nil }, ErrTaskCreatorEmpty},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := valid
			tc.mutate(&task)
			if err := task.Validate(); err != tc.wantErr {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestPriorityAndStatusSets(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent} {
		if !p.IsValid() {
			t.Errorf("Expected %s to be valid", p)
		}
	}
	if Priority("Critical").IsValid() {
		t.Error("Expected Critical to be invalid")
	}

	for _, s := range []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled} {
		if !s.IsValid() {
			t.Errorf("Expected %s to be valid", s)
		}
	}
	if TaskStatus("Done").IsValid() {
		t.Error("Expected Done to be invalid")
	}
}
