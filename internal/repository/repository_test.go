package repository

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/TWRT/task-reminder/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := InitDB(dbPath)
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func createTask(t *testing.T, repo *TaskRepository, description string, status models.TaskStatus) int64 {
	t.Helper()

	task := models.NewTask(description, nil)
	task.Status = status
	id, err := repo.Create(&task)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return id
}

func appendMessage(t *testing.T, repo *MessageRepository, direction models.MessageDirection, body string) int64 {
	t.Helper()

	msg := models.NewMessage(direction, body, "test-run")
	id, err := repo.Append(&msg)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	return id
}
