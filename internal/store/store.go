// Package store keeps the list of recently opened sheets and an audit log of
// admin actions in a local sqlite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the sqlite database.
type Store struct {
	db   *sql.DB
	path string
}

// RecentSheet is one entry of the recently opened list.
type RecentSheet struct {
	Host     string
	SheetID  string
	Name     string
	Version  int
	OpenedAt time.Time
}

// ActionRecord is one audited admin action.
type ActionRecord struct {
	ID        int64
	SheetID   string
	Action    string
	Column    string
	Error     string
	CreatedAt time.Time
}

// Succeeded reports whether the action finished without error.
func (r ActionRecord) Succeeded() bool {
	return r.Error == ""
}

// Open opens (and migrates) the database in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "sheetadmin.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

func migrate(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS recent_sheets (
			host TEXT NOT NULL,
			sheet_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			version INTEGER NOT NULL DEFAULT 0,
			opened_at INTEGER NOT NULL,
			PRIMARY KEY (host, sheet_id)
		);`,
		`CREATE TABLE IF NOT EXISTS actions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sheet_id TEXT NOT NULL,
			action TEXT NOT NULL,
			column_name TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS actions_sheet ON actions (sheet_id, created_at);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}
	return nil
}

// Path is the database file.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// TouchSheet records that a sheet was opened.
func (s *Store) TouchSheet(sheet RecentSheet) error {
	if s == nil || s.db == nil {
		return nil
	}
	host := strings.TrimSpace(sheet.Host)
	id := strings.TrimSpace(sheet.SheetID)
	if id == "" {
		return nil
	}
	openedAt := sheet.OpenedAt
	if openedAt.IsZero() {
		openedAt = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO recent_sheets (host, sheet_id, name, version, opened_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(host, sheet_id) DO UPDATE SET name = excluded.name, version = excluded.version, opened_at = excluded.opened_at`,
		host, id, sheet.Name, sheet.Version, openedAt.UnixNano())
	return err
}

// RecentSheets lists sheets by most recent open, at most limit entries.
func (s *Store) RecentSheets(limit int) ([]RecentSheet, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT host, sheet_id, name, version, opened_at FROM recent_sheets
		ORDER BY opened_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sheets []RecentSheet
	for rows.Next() {
		var (
			rec      RecentSheet
			openedAt int64
		)
		if err := rows.Scan(&rec.Host, &rec.SheetID, &rec.Name, &rec.Version, &openedAt); err != nil {
			return nil, err
		}
		rec.OpenedAt = time.Unix(0, openedAt)
		sheets = append(sheets, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sheets, nil
}

// RecordAction appends an audited action. actionErr may be nil.
func (s *Store) RecordAction(sheetID, action, column string, actionErr error) error {
	if s == nil || s.db == nil {
		return nil
	}
	msg := ""
	if actionErr != nil {
		msg = actionErr.Error()
	}
	_, err := s.db.Exec(`INSERT INTO actions (sheet_id, action, column_name, error, created_at) VALUES (?, ?, ?, ?, ?)`,
		sheetID, action, column, msg, time.Now().UnixNano())
	return err
}

// Actions lists a sheet's audited actions, newest first.
func (s *Store) Actions(sheetID string, limit int) ([]ActionRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT id, sheet_id, action, column_name, error, created_at FROM actions
		WHERE sheet_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, sheetID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ActionRecord
	for rows.Next() {
		var (
			rec       ActionRecord
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.SheetID, &rec.Action, &rec.Column, &rec.Error, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(0, createdAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
