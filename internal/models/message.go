package models

import (
	"fmt"
	"time"
)

type MessageDirection string

const (
	DirectionInbound  MessageDirection = "inbound"
	DirectionOutbound MessageDirection = "outbound"
)

// Message is one entry in the append-only conversation log: either a
// reminder we sent or a reply the user sent back.
type Message struct {
	ID        int64
	AddedAt   time.Time
	Direction MessageDirection
	Body      string
	RunID     string
}

func NewMessage(direction MessageDirection, body string, runID string) Message {
	return Message{
		AddedAt:   time.Now(),
		Direction: direction,
		Body:      body,
		RunID:     runID,
	}
}

func (m Message) String() string {
	return fmt.Sprintf("Message %d (%s, %s):\n%s", m.ID, m.AddedAt.Format("2006-01-02"), m.Direction, m.Body)
}
