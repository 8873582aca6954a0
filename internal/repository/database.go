package repository

import (
	"database/sql"
	"fmt"

	"github.com/TWRT/task-reminder/internal/config"
	_ "modernc.org/sqlite"
)

func InitDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
    CREATE TABLE IF NOT EXISTS messages (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        added_at TEXT NOT NULL,
        direction TEXT NOT NULL,
        body TEXT NOT NULL,
        run_id TEXT NOT NULL DEFAULT ''
    );

    CREATE TABLE IF NOT EXISTS tasks (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        added_at TEXT NOT NULL,
        last_modified_at TEXT NOT NULL,
        scheduled_for TEXT,
        scheduled_for_comment TEXT,
        description TEXT NOT NULL,
        status TEXT NOT NULL,
        comment TEXT NOT NULL DEFAULT '',
        from_message INTEGER,
        FOREIGN KEY (from_message) REFERENCES messages(id)
    );
    `

	_, err := db.Exec(schema)
	return err
}

// Reset drops and recreates both tables. It is destructive and only
// allowed in development mode; the mode check lives here so a caller
// cannot bypass it.
func Reset(db *sql.DB, mode config.Mode) error {
	if mode != config.ModeDev {
		return fmt.Errorf("reset is only allowed in development mode (mode is %q)", mode)
	}

	if _, err := db.Exec("DROP TABLE IF EXISTS tasks;"); err != nil {
		return fmt.Errorf("drop tasks: %w", err)
	}
	if _, err := db.Exec("DROP TABLE IF EXISTS messages;"); err != nil {
		return fmt.Errorf("drop messages: %w", err)
	}

	return createTables(db)
}
