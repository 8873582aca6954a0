package models

import (
	"fmt"
	"time"
)

type MutationKind string

const (
	MutationAdd    MutationKind = "add"
	MutationUpdate MutationKind = "update"
)

// Mutation is one change the reconciler extracted from a reply: either a
// new task or an update to an existing one. Updates never change the
// task id, so references stay valid across runs.
type Mutation struct {
	Kind                MutationKind
	TaskID              int64
	Description         string
	Status              TaskStatus
	Comment             string
	ScheduledFor        *time.Time
	ScheduledForComment string
}

func (m Mutation) Validate() error {
	if _, err := ParseTaskStatus(string(m.Status)); err != nil {
		return err
	}
	switch m.Kind {
	case MutationAdd:
		if m.Description == "" {
			return fmt.Errorf("add mutation requires a description")
		}
	case MutationUpdate:
		if m.TaskID == 0 {
			return fmt.Errorf("update mutation requires a task id")
		}
	default:
		return fmt.Errorf("invalid mutation kind: %q", m.Kind)
	}
	return nil
}
