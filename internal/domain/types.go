package domain

import "time"

// Grade is the overall quality class assigned to one folding episode.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

// Valid reports whether g is one of the known grades.
func (g Grade) Valid() bool {
	return g == GradeA || g == GradeB || g == GradeC
}

// Difficulty is the assessed difficulty of one folding episode.
type Difficulty string

const (
	DifficultyEasy Difficulty = "Easy"
	DifficultyHard Difficulty = "Hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyHard
}

// Kind discriminates the two history entry variants.
type Kind string

const (
	KindGrading Kind = "grading"
	KindCount   Kind = "count"
)

// GradingEntry records one graded towel-folding episode.
// Grade C entries always carry Difficulty Easy and no difficulty tags:
// C-grade episodes skip the difficulty assessment entirely.
type GradingEntry struct {
	ID                     string     `json:"id,omitempty"`
	Grade                  Grade      `json:"grade"`
	Difficulty             Difficulty `json:"difficulty"`
	Timestamp              time.Time  `json:"timestamp"`
	SelectedGradeTags      []string   `json:"selectedGradeTags,omitempty"`
	SelectedDifficultyTags []string   `json:"selectedDifficultyTags,omitempty"`
}

// Kind implements HistoryEntry.
func (e GradingEntry) Kind() Kind { return KindGrading }

// Time implements HistoryEntry.
func (e GradingEntry) Time() time.Time { return e.Timestamp }

// CountEntry is a snapshot of the cumulative grading-entry count at a
// point in time. Synthesized at export time, never entered by a user.
type CountEntry struct {
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// Kind implements HistoryEntry.
func (e CountEntry) Kind() Kind { return KindCount }

// Time implements HistoryEntry.
func (e CountEntry) Time() time.Time { return e.Timestamp }

// HistoryEntry is the tagged union of GradingEntry and CountEntry.
// Entries are immutable once created.
type HistoryEntry interface {
	Kind() Kind
	Time() time.Time
}

// DateKey renders t's local calendar date in the form used to filter and
// purge history ("2006-01-02").
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
