// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package searchlog records search activity in a SQLite database: who
// searched, for what, and how the search ended. Company results are never
// stored.
package searchlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"
)

const (
	dbFile        = "internscout.db"
	defaultRecent = 20

	// timeLayout is fixed-width so started_at sorts correctly as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// Outcome is how a logged search ended.
type Outcome string

const (
	OutcomeOK     Outcome = "ok"
	OutcomeFailed Outcome = "failed"
)

// Entry is one logged search.
type Entry struct {
	ID          string        `json:"id" yaml:"id"`
	SessionID   string        `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	RequesterIP string        `json:"requester_ip,omitempty" yaml:"requester_ip,omitempty"`
	City        string        `json:"city" yaml:"city"`
	Domains     []string      `json:"domains" yaml:"domains"`
	StartedAt   time.Time     `json:"started_at" yaml:"started_at"`
	Duration    time.Duration `json:"duration" yaml:"duration"`
	Results     int           `json:"results" yaml:"results"`
	Malformed   int           `json:"malformed" yaml:"malformed"`
	Outcome     Outcome       `json:"outcome" yaml:"outcome"`
	Error       string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Store manages the search log database.
type Store struct {
	db  *sql.DB
	dir string
}

// Open opens or creates dataDir/internscout.db and its schema.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataDir, dbFile)+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dataDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id TEXT PRIMARY KEY,
			session_id TEXT,
			requester_ip TEXT,
			city TEXT NOT NULL,
			domains TEXT,
			started_at TEXT NOT NULL,
			duration_ms INTEGER,
			results INTEGER,
			malformed INTEGER,
			outcome TEXT NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_started_at ON searches(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_city ON searches(city)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts e, assigning a new ID when e.ID is empty, and returns the ID.
func (s *Store) Record(ctx context.Context, e Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}
	domainsJSON, _ := json.Marshal(e.Domains)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO searches (id, session_id, requester_ip, city, domains, started_at, duration_ms, results, malformed, outcome, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.RequesterIP, e.City, string(domainsJSON),
		e.StartedAt.UTC().Format(timeLayout), e.Duration.Milliseconds(),
		e.Results, e.Malformed, string(e.Outcome), e.Error,
	)
	if err != nil {
		return "", fmt.Errorf("inserting search %s: %w", e.ID, err)
	}
	return e.ID, nil
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns
// the 20 most recent.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultRecent
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, requester_ip, city, domains, started_at, duration_ms, results, malformed, outcome, error
		 FROM searches ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                              Entry
			sessionID, ip, domains, errStr sql.NullString
			startedAt, outcome             string
			durationMS                     int64
		)
		if err := rows.Scan(&e.ID, &sessionID, &ip, &e.City, &domains, &startedAt,
			&durationMS, &e.Results, &e.Malformed, &outcome, &errStr); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		e.SessionID = sessionID.String
		e.RequesterIP = ip.String
		e.Error = errStr.String
		e.Outcome = Outcome(outcome)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		if t, err := time.Parse(timeLayout, startedAt); err == nil {
			e.StartedAt = t
		}
		if domains.Valid {
			_ = json.Unmarshal([]byte(domains.String), &e.Domains)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ExportYAML writes the most recent limit entries to dataDir/searches.yaml
// and returns the path.
func (s *Store) ExportYAML(ctx context.Context, limit int) (string, error) {
	entries, err := s.Recent(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	path := filepath.Join(s.dir, "searches.yaml")
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the most recent limit entries to dataDir/searches.json
// and returns the path.
func (s *Store) ExportJSON(ctx context.Context, limit int) (string, error) {
	entries, err := s.Recent(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	path := filepath.Join(s.dir, "searches.json")
	return path, os.WriteFile(path, data, 0o644)
}
