package history

import (
	"errors"

	"github.com/pbaille/foldgrade/internal/domain"
)

// ClearByDate removes every entry recorded on the given local calendar
// date ("2006-01-02") and returns the remaining log. The session anchor
// is cleared when no grading entries remain, otherwise recomputed as the
// earliest remaining grading entry's timestamp.
func (l *Log) ClearByDate(dateKey string) domain.History {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := make(domain.History, 0, len(l.entries))
	for _, entry := range l.entries {
		if domain.DateKey(entry.Time()) != dateKey {
			kept = append(kept, entry)
		}
	}
	l.entries = kept

	l.firstEntryTime = nil
	for _, entry := range l.entries {
		e, ok := entry.(domain.GradingEntry)
		if !ok {
			continue
		}
		if l.firstEntryTime == nil || e.Timestamp.Before(*l.firstEntryTime) {
			anchor := e.Timestamp
			l.firstEntryTime = &anchor
		}
	}

	l.persist()
	return l.snapshot()
}

// ClearAll empties the log unconditionally and clears the session anchor.
func (l *Log) ClearAll() domain.History {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = domain.History{}
	l.firstEntryTime = nil

	l.persist()
	return l.snapshot()
}

// DeleteState is a step in the guided delete workflow.
type DeleteState int

const (
	StateIdle DeleteState = iota
	StateAwaitingScopeChoice
	StateAwaitingConfirmation
)

// DeleteScope is the chosen extent of a pending delete.
type DeleteScope int

const (
	ScopeNone DeleteScope = iota
	ScopeDate
	ScopeAll
)

var errBadTransition = errors.New("delete workflow: step out of order")

// DeleteFlow models the guided delete workflow:
// Idle -> AwaitingScopeChoice -> AwaitingConfirmation -> Idle.
// Cancel at any step returns to Idle without touching the log; only
// Confirm mutates. User-driven, no timeout.
type DeleteFlow struct {
	log     *Log
	state   DeleteState
	scope   DeleteScope
	dateKey string
}

// NewDeleteFlow creates an idle delete workflow for log.
func NewDeleteFlow(log *Log) *DeleteFlow {
	return &DeleteFlow{log: log}
}

// State returns the current workflow step.
func (f *DeleteFlow) State() DeleteState { return f.state }

// Begin starts the workflow.
func (f *DeleteFlow) Begin() error {
	if f.state != StateIdle {
		return errBadTransition
	}
	f.state = StateAwaitingScopeChoice
	return nil
}

// ChooseDate scopes the pending delete to one calendar date.
func (f *DeleteFlow) ChooseDate(dateKey string) error {
	if f.state != StateAwaitingScopeChoice {
		return errBadTransition
	}
	f.scope = ScopeDate
	f.dateKey = dateKey
	f.state = StateAwaitingConfirmation
	return nil
}

// ChooseAll scopes the pending delete to the entire log.
func (f *DeleteFlow) ChooseAll() error {
	if f.state != StateAwaitingScopeChoice {
		return errBadTransition
	}
	f.scope = ScopeAll
	f.state = StateAwaitingConfirmation
	return nil
}

// Confirm executes the pending delete and returns the remaining log.
func (f *DeleteFlow) Confirm() (domain.History, error) {
	if f.state != StateAwaitingConfirmation {
		return nil, errBadTransition
	}

	var remaining domain.History
	switch f.scope {
	case ScopeDate:
		remaining = f.log.ClearByDate(f.dateKey)
	case ScopeAll:
		remaining = f.log.ClearAll()
	}

	f.reset()
	return remaining, nil
}

// Cancel abandons the workflow at any step without mutating the log.
func (f *DeleteFlow) Cancel() {
	f.reset()
}

func (f *DeleteFlow) reset() {
	f.state = StateIdle
	f.scope = ScopeNone
	f.dateKey = ""
}
