package models

import (
	"math/rand"
	"time"
)

// TaskStatus represents the status of an async search task.
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// SearchTask represents an async product search submitted through the API.
type SearchTask struct {
	ID          string        `json:"id"`
	Query       string        `json:"query"`
	Filters     SearchFilters `json:"filters"`
	Status      TaskStatus    `json:"status"`
	Progress    int           `json:"progress"` // 0-100
	Message     string        `json:"message"`
	Result      []Product     `json:"result,omitempty"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// NewSearchTask creates a new queued search task.
func NewSearchTask(query string, filters SearchFilters) *SearchTask {
	return &SearchTask{
		ID:        generateTaskID(),
		Query:     query,
		Filters:   filters,
		Status:    TaskStatusQueued,
		Progress:  0,
		Message:   "Search queued for processing",
		CreatedAt: time.Now(),
	}
}

// Start marks the task as processing.
func (t *SearchTask) Start() {
	t.Status = TaskStatusProcessing
	t.Progress = 10
	t.Message = "Searching sources..."
	now := time.Now()
	t.StartedAt = &now
}

// Complete marks the task as completed with its products.
func (t *SearchTask) Complete(products []Product) {
	t.Status = TaskStatusCompleted
	t.Progress = 100
	t.Message = "Search completed"
	t.Result = products
	now := time.Now()
	t.CompletedAt = &now
}

// Fail marks the task as failed.
func (t *SearchTask) Fail(reason string) {
	t.Status = TaskStatusFailed
	t.Message = "Search failed"
	t.Error = reason
	now := time.Now()
	t.CompletedAt = &now
}

// IsCompleted returns true if the task is in a final state.
func (t *SearchTask) IsCompleted() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// IsActive returns true if the task is still queued or running.
func (t *SearchTask) IsActive() bool {
	return t.Status == TaskStatusQueued || t.Status == TaskStatusProcessing
}

// Duration returns how long the task has been (or was) running.
func (t *SearchTask) Duration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	endTime := time.Now()
	if t.CompletedAt != nil {
		endTime = *t.CompletedAt
	}
	return endTime.Sub(*t.StartedAt)
}

func generateTaskID() string {
	return "task_" + time.Now().Format("20060102150405") + "_" + randomString(8)
}

func randomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
