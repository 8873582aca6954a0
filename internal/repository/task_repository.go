package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/TWRT/task-reminder/internal/models"
)

const dateFormat = "2006-01-02"

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(task *models.Task) (int64, error) {
	if task.ID != 0 {
		return 0, fmt.Errorf("task id must be unset when inserting a new task")
	}

	query := `
		INSERT INTO tasks (added_at, last_modified_at, scheduled_for, scheduled_for_comment, description, status, comment, from_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		task.AddedAt.Format(dateFormat),
		task.LastModifiedAt.Format(dateFormat),
		formatNullableDate(task.ScheduledFor),
		task.ScheduledForComment,
		task.Description,
		string(task.Status),
		task.Comment,
		task.FromMessage,
	)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	task.ID = id
	return id, nil
}

func (r *TaskRepository) Get(id int64) (models.Task, error) {
	query := `SELECT id, added_at, last_modified_at, scheduled_for, scheduled_for_comment, description, status, comment, from_message FROM tasks WHERE id = ?`
	task, err := scanTask(r.db.QueryRow(query, id))
	if err != nil {
		return models.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}

func (r *TaskRepository) List() ([]models.Task, error) {
	return r.query(`SELECT id, added_at, last_modified_at, scheduled_for, scheduled_for_comment, description, status, comment, from_message FROM tasks ORDER BY id`)
}

// ListOpen returns the tasks still needing attention, oldest first.
func (r *TaskRepository) ListOpen() ([]models.Task, error) {
	return r.query(`SELECT id, added_at, last_modified_at, scheduled_for, scheduled_for_comment, description, status, comment, from_message FROM tasks WHERE status IN ('pending', 'running') ORDER BY id`)
}

func (r *TaskRepository) query(query string, args ...any) ([]models.Task, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// ApplyUpdates writes a batch of mutations in a single transaction.
// Updates mutate the existing row so task ids stay stable; an update
// referencing an unknown id fails the whole batch.
func (r *TaskRepository) ApplyUpdates(mutations []models.Mutation, fromMessage *int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, m := range mutations {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("invalid mutation: %w", err)
		}

		switch m.Kind {
		case models.MutationUpdate:
			if err := applyUpdate(tx, m, now); err != nil {
				return err
			}
		case models.MutationAdd:
			query := `
				INSERT INTO tasks (added_at, last_modified_at, scheduled_for, scheduled_for_comment, description, status, comment, from_message)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`
			_, err := tx.Exec(query,
				now.Format(dateFormat),
				now.Format(dateFormat),
				formatNullableDate(m.ScheduledFor),
				m.ScheduledForComment,
				m.Description,
				string(m.Status),
				m.Comment,
				fromMessage,
			)
			if err != nil {
				return fmt.Errorf("insert task: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit updates: %w", err)
	}
	return nil
}

func applyUpdate(tx *sql.Tx, m models.Mutation, now time.Time) error {
	query := `SELECT id, added_at, last_modified_at, scheduled_for, scheduled_for_comment, description, status, comment, from_message FROM tasks WHERE id = ?`
	task, err := scanTask(tx.QueryRow(query, m.TaskID))
	if err == sql.ErrNoRows {
		return fmt.Errorf("update references unknown task %d", m.TaskID)
	}
	if err != nil {
		return fmt.Errorf("load task %d: %w", m.TaskID, err)
	}

	task.Status = m.Status
	if m.Comment != "" {
		task.Comment = m.Comment
	}
	if m.ScheduledFor != nil {
		task.ScheduledFor = m.ScheduledFor
	}
	if m.ScheduledForComment != "" {
		task.ScheduledForComment = m.ScheduledForComment
	}

	update := `
		UPDATE tasks
		SET last_modified_at = ?, scheduled_for = ?, scheduled_for_comment = ?, status = ?, comment = ?
		WHERE id = ?
	`
	_, err = tx.Exec(update,
		now.Format(dateFormat),
		formatNullableDate(task.ScheduledFor),
		task.ScheduledForComment,
		string(task.Status),
		task.Comment,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %d: %w", task.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		task                models.Task
		addedAt             string
		lastModifiedAt      string
		scheduledFor        sql.NullString
		scheduledForComment sql.NullString
		status              string
		fromMessage         sql.NullInt64
	)

	err := row.Scan(
		&task.ID,
		&addedAt,
		&lastModifiedAt,
		&scheduledFor,
		&scheduledForComment,
		&task.Description,
		&status,
		&task.Comment,
		&fromMessage,
	)
	if err != nil {
		return models.Task{}, err
	}

	if task.AddedAt, err = time.Parse(dateFormat, addedAt); err != nil {
		return models.Task{}, fmt.Errorf("parse added_at: %w", err)
	}
	if task.LastModifiedAt, err = time.Parse(dateFormat, lastModifiedAt); err != nil {
		return models.Task{}, fmt.Errorf("parse last_modified_at: %w", err)
	}
	if scheduledFor.Valid {
		t, err := time.Parse(dateFormat, scheduledFor.String)
		if err != nil {
			return models.Task{}, fmt.Errorf("parse scheduled_for: %w", err)
		}
		task.ScheduledFor = &t
	}
	task.ScheduledForComment = scheduledForComment.String
	if task.Status, err = models.ParseTaskStatus(status); err != nil {
		return models.Task{}, err
	}
	if fromMessage.Valid {
		task.FromMessage = &fromMessage.Int64
	}

	return task, nil
}

func formatNullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateFormat)
}
