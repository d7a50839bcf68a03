package domain

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// History is an ordered sequence of history entries. Live order is
// insertion order; exports re-sort by timestamp after interval synthesis.
type History []HistoryEntry

// entryRecord is the serialized form of a HistoryEntry: a kind
// discriminator, the kind-specific fields, and the timestamp rendered as
// a sortable RFC 3339 string.
type entryRecord struct {
	Kind                   Kind       `json:"kind"`
	ID                     string     `json:"id,omitempty"`
	Grade                  Grade      `json:"grade,omitempty"`
	Difficulty             Difficulty `json:"difficulty,omitempty"`
	SelectedGradeTags      []string   `json:"selectedGradeTags,omitempty"`
	SelectedDifficultyTags []string   `json:"selectedDifficultyTags,omitempty"`
	Count                  int        `json:"count,omitempty"`
	Timestamp              string     `json:"timestamp"`
}

// MarshalJSON implements json.Marshaler.
func (h History) MarshalJSON() ([]byte, error) {
	records := make([]entryRecord, 0, len(h))
	for _, entry := range h {
		switch e := entry.(type) {
		case GradingEntry:
			records = append(records, entryRecord{
				Kind:                   KindGrading,
				ID:                     e.ID,
				Grade:                  e.Grade,
				Difficulty:             e.Difficulty,
				SelectedGradeTags:      e.SelectedGradeTags,
				SelectedDifficultyTags: e.SelectedDifficultyTags,
				Timestamp:              e.Timestamp.Format(time.RFC3339Nano),
			})
		case CountEntry:
			records = append(records, entryRecord{
				Kind:      KindCount,
				Count:     e.Count,
				Timestamp: e.Timestamp.Format(time.RFC3339Nano),
			})
		default:
			return nil, fmt.Errorf("unknown history entry type %T", entry)
		}
	}
	return json.Marshal(records)
}

// UnmarshalJSON implements json.Unmarshaler. Records written by older
// schemas may lack the selected-tag fields; those decode as absent.
func (h *History) UnmarshalJSON(data []byte) error {
	var records []entryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}

	entries := make(History, 0, len(records))
	for _, r := range records {
		ts, err := time.Parse(time.RFC3339Nano, r.Timestamp)
		if err != nil {
			return fmt.Errorf("parse timestamp %q: %w", r.Timestamp, err)
		}

		switch r.Kind {
		case KindGrading:
			entries = append(entries, GradingEntry{
				ID:                     r.ID,
				Grade:                  r.Grade,
				Difficulty:             r.Difficulty,
				Timestamp:              ts,
				SelectedGradeTags:      r.SelectedGradeTags,
				SelectedDifficultyTags: r.SelectedDifficultyTags,
			})
		case KindCount:
			entries = append(entries, CountEntry{
				Count:     r.Count,
				Timestamp: ts,
			})
		default:
			return fmt.Errorf("unknown history entry kind %q", r.Kind)
		}
	}

	*h = entries
	return nil
}

// GradingCount returns the number of grading entries in h.
func (h History) GradingCount() int {
	n := 0
	for _, entry := range h {
		if entry.Kind() == KindGrading {
			n++
		}
	}
	return n
}
