package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/pbaille/foldgrade/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour, min int) time.Time {
	return time.Date(2026, 8, day, hour, min, 0, 0, time.Local)
}

func grading(ts time.Time, grade domain.Grade, difficulty domain.Difficulty) domain.GradingEntry {
	return domain.GradingEntry{Grade: grade, Difficulty: difficulty, Timestamp: ts}
}

func parseCSV(t *testing.T, text string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(text)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestFilterByDate(t *testing.T) {
	entries := domain.History{
		grading(at(27, 9, 0), domain.GradeA, domain.DifficultyEasy),
		domain.CountEntry{Count: 1, Timestamp: at(27, 9, 30)},
		grading(at(28, 9, 0), domain.GradeB, domain.DifficultyHard),
	}

	day27 := FilterByDate(entries, "2026-08-27")
	require.Len(t, day27, 2)
	for _, entry := range day27 {
		assert.Equal(t, "2026-08-27", domain.DateKey(entry.Time()))
	}

	assert.Len(t, FilterByDate(entries, "2026-08-28"), 1)
	assert.Len(t, FilterByDate(entries, AllDates), 3)
	assert.Empty(t, FilterByDate(entries, "2026-01-01"))
}

func TestSynthesizeIntervalsNoGradingEntries(t *testing.T) {
	entries := domain.History{
		domain.CountEntry{Count: 2, Timestamp: at(28, 9, 30)},
	}

	assert.Equal(t, entries, SynthesizeIntervals(entries, at(28, 12, 0)))
	assert.Empty(t, SynthesizeIntervals(domain.History{}, at(28, 12, 0)))
}

func TestSynthesizeIntervalsHalfHourBoundaries(t *testing.T) {
	entries := domain.History{
		grading(at(28, 9, 10), domain.GradeA, domain.DifficultyEasy),
		grading(at(28, 9, 50), domain.GradeB, domain.DifficultyHard),
	}

	out := SynthesizeIntervals(entries, at(28, 10, 5))

	// Boundaries at 09:30 and 10:00, interleaved in timestamp order.
	require.Len(t, out, 4)

	c1, ok := out[1].(domain.CountEntry)
	require.True(t, ok)
	assert.True(t, c1.Timestamp.Equal(at(28, 9, 30)))
	assert.Equal(t, 1, c1.Count)

	c2, ok := out[3].(domain.CountEntry)
	require.True(t, ok)
	assert.True(t, c2.Timestamp.Equal(at(28, 10, 0)))
	assert.Equal(t, 2, c2.Count)
}

func TestSynthesizeIntervalsExtendsToLastEntry(t *testing.T) {
	entries := domain.History{
		grading(at(28, 9, 10), domain.GradeA, domain.DifficultyEasy),
		grading(at(28, 11, 0), domain.GradeA, domain.DifficultyEasy),
	}

	// now is before the last entry; boundaries still run to 11:00.
	out := SynthesizeIntervals(entries, at(28, 9, 20))

	var boundaries []time.Time
	for _, entry := range out {
		if c, ok := entry.(domain.CountEntry); ok {
			boundaries = append(boundaries, c.Timestamp)
		}
	}
	require.Len(t, boundaries, 4)
	assert.True(t, boundaries[0].Equal(at(28, 9, 30)))
	assert.True(t, boundaries[3].Equal(at(28, 11, 0)))

	// The 11:00 snapshot includes the entry recorded at the boundary.
	last := out[len(out)-1].(domain.CountEntry)
	assert.Equal(t, 2, last.Count)
}

func TestSynthesizeIntervalsCountsFirstDayOnly(t *testing.T) {
	// All-dates export spanning midnight: the running count follows the
	// first grading entry's calendar day only.
	entries := domain.History{
		grading(at(27, 23, 50), domain.GradeA, domain.DifficultyEasy),
		grading(at(28, 0, 10), domain.GradeB, domain.DifficultyEasy),
	}

	out := SynthesizeIntervals(entries, at(28, 0, 20))

	var counts []domain.CountEntry
	for _, entry := range out {
		if c, ok := entry.(domain.CountEntry); ok {
			counts = append(counts, c)
		}
	}
	require.Len(t, counts, 1)
	assert.True(t, counts[0].Timestamp.Equal(at(28, 0, 0)))
	// The 00:10 entry is on a different day than the first entry and
	// never enters the running count.
	assert.Equal(t, 1, counts[0].Count)
}

func TestToCSVHeaderAndEmptyLog(t *testing.T) {
	text := ToCSV(domain.History{}, false, at(28, 12, 0))

	rows := parseCSV(t, text)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{
		"Type", "Final Grade", "Final Difficulty",
		"A Tags Selected", "B Tags Selected", "C Tags Selected",
		"Easy Tags Selected", "Hard Tags Selected",
		"Date", "Time", "Cumulative Count",
	}, rows[0])
}

func TestToCSVThreeCGrades(t *testing.T) {
	entries := domain.History{
		grading(at(28, 9, 0), domain.GradeC, domain.DifficultyEasy),
		grading(at(28, 9, 5), domain.GradeC, domain.DifficultyEasy),
		grading(at(28, 9, 10), domain.GradeC, domain.DifficultyEasy),
	}

	// now inside the same half hour, so no snapshots are synthesized.
	text := ToCSV(entries, true, at(28, 9, 20))
	rows := parseCSV(t, text)

	require.Len(t, rows, 5) // header + 3 grading rows + total
	for _, row := range rows[1:4] {
		assert.Equal(t, "Grading", row[0])
		assert.Equal(t, "C", row[1])
		// C grades skip difficulty assessment: column stays blank.
		assert.Equal(t, "", row[2])
		assert.Equal(t, "2026-08-28", row[8])
	}

	total := rows[4]
	assert.Equal(t, "Total (All Dates)", total[0])
	assert.Equal(t, "3", total[10])
}

func TestToCSVGradingRowOrderAndFields(t *testing.T) {
	entries := domain.History{
		grading(at(28, 9, 0), domain.GradeA, domain.DifficultyHard),
		grading(at(28, 9, 5), domain.GradeB, domain.DifficultyEasy),
	}

	text := ToCSV(entries, false, at(28, 9, 10))
	rows := parseCSV(t, text)

	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Grading", "A", "Hard"}, rows[1][:3])
	assert.Equal(t, []string{"Grading", "B", "Easy"}, rows[2][:3])
	assert.Equal(t, "09:00:00", rows[1][9])

	total := rows[3]
	assert.Equal(t, "Total", total[0])
	assert.Equal(t, "2", total[10])
}

func TestToCSVPartitionsTagsBySubstring(t *testing.T) {
	e := grading(at(28, 9, 0), domain.GradeB, domain.DifficultyHard)
	e.SelectedGradeTags = []string{
		"rolled edge",          // exact B tag
		"inefficient path",     // substring of a C tag
		"not a recognized tag", // matches nothing, lands nowhere
	}
	e.SelectedDifficultyTags = []string{"dropped corner"}

	text := ToCSV(domain.History{e}, false, at(28, 9, 5))
	rows := parseCSV(t, text)

	// Columns: A, B, C, Easy, Hard tag partitions.
	row := rows[1]
	assert.Equal(t, "", row[3])
	assert.Equal(t, "rolled edge", row[4])
	assert.Equal(t, "inefficient path", row[5])
	assert.Equal(t, "", row[6])
	assert.Equal(t, "dropped corner", row[7])
}

func TestToCSVJoinsMultipleTagsWithSemicolon(t *testing.T) {
	e := grading(at(28, 9, 0), domain.GradeB, domain.DifficultyEasy)
	e.SelectedGradeTags = []string{"rolled edge", "inaccurate placement"}

	text := ToCSV(domain.History{e}, false, at(28, 9, 5))
	rows := parseCSV(t, text)

	assert.Equal(t, "rolled edge;inaccurate placement", rows[1][4])
}

func TestToCSVCountRows(t *testing.T) {
	entries := domain.History{
		grading(at(28, 9, 10), domain.GradeA, domain.DifficultyEasy),
	}

	text := ToCSV(entries, false, at(28, 10, 5))
	rows := parseCSV(t, text)

	// header, grading, 09:30 count, 10:00 count, total
	require.Len(t, rows, 5)
	for _, row := range rows[2:4] {
		assert.Equal(t, "Count", row[0])
		assert.Equal(t, "", row[1])
		assert.Equal(t, "1", row[10])
	}

	// Synthesized snapshots do not inflate the total.
	assert.Equal(t, "1", rows[4][10])
}

func TestToCSVNoTotalWithoutGradingEntries(t *testing.T) {
	entries := domain.History{
		domain.CountEntry{Count: 4, Timestamp: at(28, 9, 30)},
	}

	text := ToCSV(entries, true, at(28, 10, 0))
	rows := parseCSV(t, text)

	require.Len(t, rows, 2)
	assert.Equal(t, "Count", rows[1][0])
}
