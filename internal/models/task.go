package models

import "github.com/localnerve/crmdb/internal/types"

// Task statuses
const (
	TaskStatusPending    = "Pending"
	TaskStatusInProgress = "In Progress"
	TaskStatusCompleted  = "Completed"
)

// Task is a to-do assigned to a user by display name
type Task struct {
	Key         string     `json:"key"`
	Title       string     `json:"title"`
	DueDate     types.Date `json:"dueDate"`
	Priority    string     `json:"priority,omitempty"`
	Status      string     `json:"status"`
	Assignee    string     `json:"assignee,omitempty"`
	Description string     `json:"description,omitempty"`
}

func (t Task) RecordKey() string { return t.Key }

func (t Task) WithKey(key string) Task {
	t.Key = key
	return t
}

// Toggled flips a task between Completed and Pending. Any status other than
// Completed becomes Completed.
func (t Task) Toggled() Task {
	if t.Status == TaskStatusCompleted {
		t.Status = TaskStatusPending
	} else {
		t.Status = TaskStatusCompleted
	}
	return t
}
