// Package export projects a date-scoped slice of the history log into a
// CSV document, synthesizing half-hourly cumulative-count snapshots
// along the way. Everything here is a pure function of its inputs.
package export

import (
	"encoding/csv"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pbaille/foldgrade/internal/domain"
)

// AllDates is the date key that selects the whole log.
const AllDates = "all"

const interval = 30 * time.Minute

// FilterByDate returns the entries whose local calendar date matches
// dateKey ("2006-01-02"), or all entries when dateKey is AllDates.
func FilterByDate(entries domain.History, dateKey string) domain.History {
	if dateKey == AllDates {
		return entries
	}

	filtered := make(domain.History, 0, len(entries))
	for _, entry := range entries {
		if domain.DateKey(entry.Time()) == dateKey {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// SynthesizeIntervals adds a CountEntry for every half-hour wall-clock
// boundary strictly after the first grading entry, up to the later of
// now and the last grading entry. Each snapshot counts the grading
// entries at or before its boundary that fall on the first grading
// entry's calendar day; in an all-dates export, entries from other days
// never contribute to the running count. The result is sorted ascending
// by timestamp. With no grading entries the input is returned unchanged.
func SynthesizeIntervals(entries domain.History, now time.Time) domain.History {
	var first, last *domain.GradingEntry
	for _, entry := range entries {
		e, ok := entry.(domain.GradingEntry)
		if !ok {
			continue
		}
		if first == nil {
			first = &e
		}
		last = &e
	}
	if first == nil {
		return entries
	}

	end := now
	if last.Timestamp.After(end) {
		end = last.Timestamp
	}

	out := make(domain.History, len(entries))
	copy(out, entries)

	for boundary := floorToInterval(first.Timestamp).Add(interval); !boundary.After(end); boundary = boundary.Add(interval) {
		count := 0
		for _, entry := range entries {
			e, ok := entry.(domain.GradingEntry)
			if !ok {
				continue
			}
			if !e.Timestamp.After(boundary) && domain.SameDay(e.Timestamp, first.Timestamp) {
				count++
			}
		}
		out = append(out, domain.CountEntry{Count: count, Timestamp: boundary})
	}

	slices.SortStableFunc(out, func(a, b domain.HistoryEntry) int {
		return a.Time().Compare(b.Time())
	})
	return out
}

// floorToInterval rounds t down to the preceding half-hour wall-clock
// mark in t's location.
func floorToInterval(t time.Time) time.Time {
	minute := t.Minute() - t.Minute()%30
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), minute, 0, 0, t.Location())
}

var csvHeader = []string{
	"Type",
	"Final Grade",
	"Final Difficulty",
	"A Tags Selected",
	"B Tags Selected",
	"C Tags Selected",
	"Easy Tags Selected",
	"Hard Tags Selected",
	"Date",
	"Time",
	"Cumulative Count",
}

// ToCSV renders the entries, plus synthesized interval snapshots, as a
// CSV document. A trailing total row is appended when the original
// entries contain at least one grading entry; synthesized snapshots are
// excluded from that total. allDates only changes the total row label.
func ToCSV(entries domain.History, allDates bool, now time.Time) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	w.Write(csvHeader)

	for _, entry := range SynthesizeIntervals(entries, now) {
		switch e := entry.(type) {
		case domain.GradingEntry:
			w.Write(gradingRow(e))
		case domain.CountEntry:
			w.Write([]string{
				"Count", "", "", "", "", "", "", "",
				e.Timestamp.Format("2006-01-02"),
				e.Timestamp.Format("15:04:05"),
				strconv.Itoa(e.Count),
			})
		}
	}

	if total := entries.GradingCount(); total > 0 {
		label := "Total"
		if allDates {
			label = "Total (All Dates)"
		}
		w.Write([]string{
			label, "", "", "", "", "", "", "", "", "",
			strconv.Itoa(total),
		})
	}

	w.Flush()
	return strings.TrimSuffix(sb.String(), "\n")
}

func gradingRow(e domain.GradingEntry) []string {
	// Grade C episodes skip difficulty assessment; the column stays blank.
	difficulty := string(e.Difficulty)
	if e.Grade == domain.GradeC {
		difficulty = ""
	}

	return []string{
		"Grading",
		string(e.Grade),
		difficulty,
		matchingTags(e.SelectedGradeTags, domain.GradeTags[domain.GradeA]),
		matchingTags(e.SelectedGradeTags, domain.GradeTags[domain.GradeB]),
		matchingTags(e.SelectedGradeTags, domain.GradeTags[domain.GradeC]),
		matchingTags(e.SelectedDifficultyTags, domain.DifficultyTags[domain.DifficultyEasy]),
		matchingTags(e.SelectedDifficultyTags, domain.DifficultyTags[domain.DifficultyHard]),
		e.Timestamp.Format("2006-01-02"),
		e.Timestamp.Format("15:04:05"),
		"",
	}
}

// matchingTags selects the recorded tags belonging to a category.
// Membership is a substring match against the canonical list, not an
// exact match, so an abbreviated tag still lands in its column.
func matchingTags(selected, canonical []string) string {
	var matched []string
	for _, tag := range selected {
		for _, c := range canonical {
			if strings.Contains(c, tag) {
				matched = append(matched, tag)
				break
			}
		}
	}
	return strings.Join(matched, ";")
}
