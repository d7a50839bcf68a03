// Package history maintains the authoritative record of graded
// towel-folding episodes: an append-mostly log, the session anchor that
// tracks the first entry of the current day, and the retention
// operations that purge it.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/foldgrade/internal/domain"
	"github.com/rs/zerolog"
)

// Store is the persistence boundary the log saves through. A nil Store
// keeps the log in-memory only for the session.
type Store interface {
	Save(history domain.History, firstEntryTime *time.Time) error
	Load() (domain.History, *time.Time, error)
}

// Log is the history log. All mutations go through Record, ClearByDate
// and ClearAll; they are serialized behind a single mutex so exports can
// read a stable snapshot at any time.
type Log struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time

	mu             sync.Mutex
	entries        domain.History
	firstEntryTime *time.Time
}

// New creates a Log backed by s, loading whatever was persisted. A
// missing or unreadable record degrades to an empty log: persistence is
// best-effort in both directions.
func New(s Store, logger zerolog.Logger) *Log {
	l := &Log{
		store:   s,
		logger:  logger,
		now:     time.Now,
		entries: domain.History{},
	}

	if s != nil {
		entries, firstEntryTime, err := s.Load()
		if err != nil {
			logger.Warn().Err(err).Msg("could not load history, starting empty")
		} else {
			l.entries = entries
			l.firstEntryTime = firstEntryTime
		}
	}

	return l
}

// Record appends a grading entry stamped now and returns the updated
// log. The first entry of a new calendar day resets the log: displayed
// history does not carry across days, only the persisted record does
// until it is overwritten.
//
// Grade C callers are expected to pass Difficulty Easy and no difficulty
// tags; the log stores whatever it is given.
func (l *Log) Record(grade domain.Grade, difficulty domain.Difficulty, gradeTags, difficultyTags []string) domain.History {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry := domain.GradingEntry{
		ID:                     uuid.New().String(),
		Grade:                  grade,
		Difficulty:             difficulty,
		Timestamp:              now,
		SelectedGradeTags:      gradeTags,
		SelectedDifficultyTags: difficultyTags,
	}

	if l.firstEntryTime == nil || !domain.SameDay(*l.firstEntryTime, now) {
		l.entries = domain.History{entry}
		anchor := now
		l.firstEntryTime = &anchor
	} else {
		l.entries = append(l.entries, entry)
	}

	l.persist()
	return l.snapshot()
}

// Entries returns a copy of the current log.
func (l *Log) Entries() domain.History {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// FirstEntryTime returns the session anchor: the timestamp of the first
// grading entry of the current day, or nil when the log is empty.
func (l *Log) FirstEntryTime() *time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.firstEntryTime == nil {
		return nil
	}
	anchor := *l.firstEntryTime
	return &anchor
}

// snapshot copies the entry slice. Callers must hold l.mu.
func (l *Log) snapshot() domain.History {
	out := make(domain.History, len(l.entries))
	copy(out, l.entries)
	return out
}

// persist saves best-effort. Failures are logged and swallowed: the
// session continues in memory. Callers must hold l.mu.
func (l *Log) persist() {
	if l.store == nil {
		return
	}
	if err := l.store.Save(l.entries, l.firstEntryTime); err != nil {
		l.logger.Warn().Err(err).Msg("could not persist history")
	}
}
