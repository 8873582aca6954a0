package models

import (
	"fmt"
	"strings"
	"time"
)

type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusRunning   TaskStatus = "running"
	StatusCompleted TaskStatus = "completed"
	StatusFailed    TaskStatus = "failed"
)

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return TaskStatus(s), nil
	}
	return "", fmt.Errorf("invalid task status: %q", s)
}

// Open reports whether the task still needs attention.
func (s TaskStatus) Open() bool {
	return s == StatusPending || s == StatusRunning
}

type Task struct {
	ID                  int64
	AddedAt             time.Time
	LastModifiedAt      time.Time
	ScheduledFor        *time.Time
	ScheduledForComment string
	Description         string
	Status              TaskStatus
	Comment             string
	FromMessage         *int64
}

func NewTask(description string, fromMessage *int64) Task {
	now := time.Now()
	return Task{
		AddedAt:        now,
		LastModifiedAt: now,
		Description:    description,
		Status:         StatusPending,
		FromMessage:    fromMessage,
	}
}

// String renders the task the way it is shown to the model, id first so
// a reply can refer back to it.
func (t Task) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task %d (added %s):\n", t.ID, t.AddedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "%s\n", t.Description)
	fmt.Fprintf(&b, "Status: %s\n", t.Status)
	if t.Comment != "" {
		fmt.Fprintf(&b, "Comment: %s\n", t.Comment)
	}
	if t.ScheduledFor != nil {
		fmt.Fprintf(&b, "Scheduled for: %s\n", t.ScheduledFor.Format("2006-01-02"))
	}
	if t.ScheduledForComment != "" {
		fmt.Fprintf(&b, "Scheduled for comment: %s\n", t.ScheduledForComment)
	}
	return b.String()
}
