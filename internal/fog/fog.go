// Package fog keeps the fog-of-war paint log and composites it into a mask.
//
// The log is append-only and replayed in order: a hide painted after a
// reveal re-covers the area and vice versa. Actions never merge.
package fog

import "slices"

// MaxActions caps the log; the oldest action is evicted first.
const MaxActions = 4000

// Mode is the effect of a paint action.
type Mode string

const (
	Reveal Mode = "reveal"
	Hide   Mode = "hide"
)

// Action is one circle painted in world coordinates.
type Action struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Mode   Mode    `json:"mode"`
}

// Log is the ordered, capped list of paint actions.
type Log struct {
	actions  []Action
	revision uint64
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Push appends an action, evicting the oldest when the cap is exceeded.
func (l *Log) Push(a Action) {
	l.actions = append(l.actions, a)
	if len(l.actions) > MaxActions {
		l.actions = slices.Delete(l.actions, 0, len(l.actions)-MaxActions)
	}
	l.revision++
}

// Actions returns the actions in paint order. The slice must not be modified.
func (l *Log) Actions() []Action {
	return l.actions
}

// Len returns the number of actions.
func (l *Log) Len() int {
	return len(l.actions)
}

// Replace swaps the whole log, keeping only the newest MaxActions entries.
// Actions with an unknown mode or non-positive radius are dropped.
func (l *Log) Replace(actions []Action) {
	kept := make([]Action, 0, len(actions))
	for _, a := range actions {
		if (a.Mode != Reveal && a.Mode != Hide) || a.Radius <= 0 {
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) > MaxActions {
		kept = kept[len(kept)-MaxActions:]
	}
	l.actions = kept
	l.revision++
}

// Clear removes every action.
func (l *Log) Clear() {
	l.actions = nil
	l.revision++
}

// Revision changes every time the log changes.
func (l *Log) Revision() uint64 {
	return l.revision
}
