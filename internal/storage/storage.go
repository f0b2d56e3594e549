// Package storage persists the engine's task list as a SQLite snapshot.
// It is an optional collaborator: the engine owns ids and all semantics,
// the store only loads a snapshot at startup and replaces it after
// mutations.
package storage

import (
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"taskman/internal/task"
)

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY,
	owner_id INTEGER NOT NULL DEFAULT 0,
	title TEXT NOT NULL,
	description TEXT DEFAULT '',
	completed INTEGER NOT NULL DEFAULT 0,
	priority TEXT NOT NULL DEFAULT 'Medium',
	category TEXT NOT NULL DEFAULT 'Personal',
	due TEXT DEFAULT '',
	recurrence TEXT NOT NULL DEFAULT 'None',
	reminder_offset TEXT NOT NULL DEFAULT 'None',
	reminder_shown INTEGER NOT NULL DEFAULT 0,
	updated INTEGER NOT NULL DEFAULT 0
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.ensureTaskColumns()
}

// ensureTaskColumns backfills columns added after the first release so an
// old snapshot file keeps working.
func (s *Store) ensureTaskColumns() error {
	required := map[string]string{
		"recurrence":      "ALTER TABLE tasks ADD COLUMN recurrence TEXT NOT NULL DEFAULT 'None';",
		"reminder_offset": "ALTER TABLE tasks ADD COLUMN reminder_offset TEXT NOT NULL DEFAULT 'None';",
		"reminder_shown":  "ALTER TABLE tasks ADD COLUMN reminder_shown INTEGER NOT NULL DEFAULT 0;",
		"updated":         "ALTER TABLE tasks ADD COLUMN updated INTEGER NOT NULL DEFAULT 0;",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(tasks);`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

// LoadAll returns the persisted snapshot in id order, ready for
// Service.Seed.
func (s *Store) LoadAll() ([]task.Task, error) {
	rows, err := s.db.Query(`SELECT id, owner_id, title, description, completed, priority, category, due, recurrence, reminder_offset, reminder_shown, updated FROM tasks ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		var completed, shown, updated int
		var priority, category, recurrence, reminder string
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &completed,
			&priority, &category, &t.DueDate, &recurrence, &reminder, &shown, &updated); err != nil {
			return nil, err
		}
		t.Completed = completed == 1
		t.Priority = task.Priority(priority)
		t.Category = task.Category(category)
		t.Recurrence = task.Recurrence(recurrence)
		t.Reminder = task.ReminderOffset(reminder)
		t.ReminderShown = shown == 1
		t.Updated = updated == 1
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ReplaceAll overwrites the snapshot with the engine's current list.
func (s *Store) ReplaceAll(tasks []*task.Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM tasks;`); err != nil {
		tx.Rollback()
		return err
	}
	const ins = `INSERT INTO tasks (id, owner_id, title, description, completed, priority, category, due, recurrence, reminder_offset, reminder_shown, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	for _, t := range tasks {
		if _, err := tx.Exec(ins, t.ID, t.OwnerID, t.Title, t.Description, boolInt(t.Completed),
			string(t.Priority), string(t.Category), t.DueDate, string(t.Recurrence),
			string(t.Reminder), boolInt(t.ReminderShown), boolInt(t.Updated)); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
