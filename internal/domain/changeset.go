package domain

import (
	"fmt"
	"strings"
)

// Change records a single field edit as a (field, from, to) tuple.
type Change struct {
	Field string
	From  string
	To    string
}

// ChangeSet accumulates field edits for a human-readable summary of what an
// edit operation touched. Fields are compared pairwise by the caller; there
// is no runtime introspection.
type ChangeSet struct {
	changes []Change
}

// Record adds a change when from and to differ.
func (cs *ChangeSet) Record(field, from, to string) {
	if from == to {
		return
	}
	cs.changes = append(cs.changes, Change{Field: field, From: from, To: to})
}

// RecordInt adds an integer-valued change when from and to differ.
func (cs *ChangeSet) RecordInt(field string, from, to int64) {
	if from == to {
		return
	}
	cs.changes = append(cs.changes, Change{
		Field: field,
		From:  fmt.Sprintf("%d", from),
		To:    fmt.Sprintf("%d", to),
	})
}

// Empty reports whether no field changed.
func (cs *ChangeSet) Empty() bool {
	return len(cs.changes) == 0
}

// Changes returns the recorded tuples in insertion order.
func (cs *ChangeSet) Changes() []Change {
	return cs.changes
}

// Summary renders the change set as "field: from → to" pairs joined by "; ".
func (cs *ChangeSet) Summary() string {
	parts := make([]string, len(cs.changes))
	for i, c := range cs.changes {
		parts[i] = fmt.Sprintf("%s: %s → %s", c.Field, c.From, c.To)
	}
	return strings.Join(parts, "; ")
}
