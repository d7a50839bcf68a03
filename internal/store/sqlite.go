package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/foldgrade/internal/domain"
)

//go:embed schema.sql
var schema string

// historyKey is the fixed key the whole history record lives under.
const historyKey = "history"

// Store persists the history log as a single durable record in sqlite.
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// record is the serialized shape of the durable history record.
type record struct {
	History        domain.History `json:"history"`
	FirstEntryTime *string        `json:"firstEntryTime"`
}

// Save writes the history log and session anchor under the fixed key,
// replacing whatever was there. Callers treat failures as best-effort:
// the in-memory log is already updated and is never rolled back.
func (s *Store) Save(history domain.History, firstEntryTime *time.Time) error {
	rec := record{History: history}
	if history == nil {
		rec.History = domain.History{}
	}
	if firstEntryTime != nil {
		anchor := firstEntryTime.Format(time.RFC3339Nano)
		rec.FirstEntryTime = &anchor
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO records (key, payload, updated_at) VALUES (?, ?, ?)",
		historyKey, string(payload), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Load reads the history log and session anchor back. An absent record
// yields an empty log and no anchor; a present but unparsable record is
// reported as an error so the caller can fall back to an empty log.
func (s *Store) Load() (domain.History, *time.Time, error) {
	var payload string
	err := s.db.QueryRow(
		"SELECT payload FROM records WHERE key = ?",
		historyKey,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return domain.History{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load history: %w", err)
	}

	var rec record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, nil, fmt.Errorf("decode history: %w", err)
	}

	var firstEntryTime *time.Time
	if rec.FirstEntryTime != nil {
		t, err := time.Parse(time.RFC3339Nano, *rec.FirstEntryTime)
		if err != nil {
			return nil, nil, fmt.Errorf("parse first entry time: %w", err)
		}
		firstEntryTime = &t
	}

	if rec.History == nil {
		rec.History = domain.History{}
	}
	return rec.History, firstEntryTime, nil
}
