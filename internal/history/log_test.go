package history

import (
	"errors"
	"testing"
	"time"

	"github.com/pbaille/foldgrade/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore records saves and serves a canned load, so log behavior can
// be tested without a database.
type stubStore struct {
	saveCount   int
	savedLog    domain.History
	savedAnchor *time.Time
	saveErr     error

	loadLog    domain.History
	loadAnchor *time.Time
	loadErr    error
}

func (s *stubStore) Save(history domain.History, firstEntryTime *time.Time) error {
	s.saveCount++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.savedLog = history
	s.savedAnchor = firstEntryTime
	return nil
}

func (s *stubStore) Load() (domain.History, *time.Time, error) {
	if s.loadErr != nil {
		return nil, nil, s.loadErr
	}
	if s.loadLog == nil {
		return domain.History{}, s.loadAnchor, nil
	}
	return s.loadLog, s.loadAnchor, nil
}

// testLog builds a log over a stub store with a controllable clock.
func testLog(t *testing.T, start time.Time) (*Log, *stubStore, *time.Time) {
	t.Helper()

	s := &stubStore{}
	l := New(s, zerolog.Nop())

	current := start
	l.now = func() time.Time { return current }
	return l, s, &current
}

func day(hour, min int) time.Time {
	return time.Date(2026, 8, 28, hour, min, 0, 0, time.Local)
}

func TestRecordAppendsInCallOrder(t *testing.T) {
	l, s, clock := testLog(t, day(9, 0))

	grades := []domain.Grade{domain.GradeA, domain.GradeB, domain.GradeC}
	for i, g := range grades {
		*clock = day(9, i)
		entries := l.Record(g, domain.DifficultyEasy, nil, nil)
		assert.Len(t, entries, i+1)
	}

	entries := l.Entries()
	require.Len(t, entries, len(grades))
	for i, g := range grades {
		e, ok := entries[i].(domain.GradingEntry)
		require.True(t, ok)
		assert.Equal(t, g, e.Grade)
		assert.NotEmpty(t, e.ID)
	}

	// Anchor is the first entry of the day.
	require.NotNil(t, l.FirstEntryTime())
	assert.True(t, l.FirstEntryTime().Equal(day(9, 0)))

	// Every record persisted.
	assert.Equal(t, len(grades), s.saveCount)
	assert.Len(t, s.savedLog, len(grades))
}

func TestRecordResetsOnNewDay(t *testing.T) {
	l, _, clock := testLog(t, day(22, 0))

	l.Record(domain.GradeA, domain.DifficultyHard, nil, nil)
	l.Record(domain.GradeB, domain.DifficultyEasy, nil, nil)
	require.Len(t, l.Entries(), 2)

	// First entry of the next calendar day starts a fresh log.
	*clock = day(22, 0).AddDate(0, 0, 1)
	entries := l.Record(domain.GradeC, domain.DifficultyEasy, nil, nil)

	require.Len(t, entries, 1)
	e, ok := entries[0].(domain.GradingEntry)
	require.True(t, ok)
	assert.Equal(t, domain.GradeC, e.Grade)

	require.NotNil(t, l.FirstEntryTime())
	assert.True(t, l.FirstEntryTime().Equal(*clock))
}

func TestRecordKeepsTagAuditTrail(t *testing.T) {
	l, _, _ := testLog(t, day(10, 0))

	l.Record(domain.GradeB, domain.DifficultyHard,
		[]string{"rolled edge"}, []string{"dropped corner"})

	e, ok := l.Entries()[0].(domain.GradingEntry)
	require.True(t, ok)
	assert.Equal(t, []string{"rolled edge"}, e.SelectedGradeTags)
	assert.Equal(t, []string{"dropped corner"}, e.SelectedDifficultyTags)
}

func TestRecordSurvivesSaveFailure(t *testing.T) {
	l, s, _ := testLog(t, day(10, 0))
	s.saveErr = errors.New("disk full")

	entries := l.Record(domain.GradeA, domain.DifficultyEasy, nil, nil)

	// Persistence is best-effort: the in-memory log is not rolled back.
	assert.Len(t, entries, 1)
	assert.Len(t, l.Entries(), 1)
}

func TestNewLoadsPersistedState(t *testing.T) {
	anchor := day(8, 30)
	s := &stubStore{
		loadLog: domain.History{
			domain.GradingEntry{Grade: domain.GradeA, Difficulty: domain.DifficultyEasy, Timestamp: anchor},
		},
		loadAnchor: &anchor,
	}

	l := New(s, zerolog.Nop())

	require.Len(t, l.Entries(), 1)
	require.NotNil(t, l.FirstEntryTime())
	assert.True(t, l.FirstEntryTime().Equal(anchor))
}

func TestNewFailsSoftOnLoadError(t *testing.T) {
	s := &stubStore{loadErr: errors.New("corrupt record")}

	l := New(s, zerolog.Nop())

	assert.Empty(t, l.Entries())
	assert.Nil(t, l.FirstEntryTime())
}

func TestNilStoreKeepsLogInMemory(t *testing.T) {
	l := New(nil, zerolog.Nop())
	l.now = func() time.Time { return day(9, 0) }

	l.Record(domain.GradeA, domain.DifficultyEasy, nil, nil)
	assert.Len(t, l.Entries(), 1)
}
