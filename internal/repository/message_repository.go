package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/TWRT/task-reminder/internal/models"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append inserts a message. The log is append-only: existing rows are
// never updated or deleted.
func (r *MessageRepository) Append(msg *models.Message) (int64, error) {
	if msg.ID != 0 {
		return 0, fmt.Errorf("message id must be unset when appending")
	}

	query := `INSERT INTO messages (added_at, direction, body, run_id) VALUES (?, ?, ?, ?)`
	result, err := r.db.Exec(query,
		msg.AddedAt.Format(time.RFC3339),
		string(msg.Direction),
		msg.Body,
		msg.RunID,
	)
	if err != nil {
		return 0, fmt.Errorf("append message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append message: %w", err)
	}
	msg.ID = id
	return id, nil
}

// Recent returns the last n messages in insertion order, most recent
// last.
func (r *MessageRepository) Recent(n int) ([]models.Message, error) {
	query := `
		SELECT id, added_at, direction, body, run_id FROM (
			SELECT id, added_at, direction, body, run_id FROM messages ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC
	`

	rows, err := r.db.Query(query, n)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var (
			msg       models.Message
			addedAt   string
			direction string
		)
		if err := rows.Scan(&msg.ID, &addedAt, &direction, &msg.Body, &msg.RunID); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if msg.AddedAt, err = time.Parse(time.RFC3339, addedAt); err != nil {
			return nil, fmt.Errorf("parse added_at: %w", err)
		}
		msg.Direction = models.MessageDirection(direction)
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
