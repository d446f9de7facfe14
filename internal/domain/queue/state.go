package queue

import (
	"fmt"

	"github.com/danielgtaylor/huma/v2"
)

// State is the sync lifecycle position of a queued report. The set is closed:
// records can only ever hold one of the four values below, and transitions
// are restricted to the edges encoded in CanTransitionTo.
type State string

const (
	StatePending State = "pending"
	StateSyncing State = "syncing"
	StateSynced  State = "synced"
	StateFailed  State = "failed"
)

func (State) Schema() huma.Schema {
	return huma.Schema{
		Type: "string",
		Enum: []any{
			string(StatePending),
			string(StateSyncing),
			string(StateSynced),
			string(StateFailed),
		},
		Description: "Sync state of a locally queued report",
		Examples:    []any{StatePending},
	}
}

// Validate implements the huma.Validatable interface.
func (s State) Validate() error {
	switch s {
	case StatePending, StateSyncing, StateSynced, StateFailed:
		return nil
	}
	return fmt.Errorf("invalid queue state: %s", s)
}

// String returns the wire representation of the state.
func (s State) String() string {
	return string(s)
}

// DisplayName returns a human-readable state label.
func (s State) DisplayName() string {
	switch s {
	case StatePending:
		return "Pending Sync"
	case StateSyncing:
		return "Syncing"
	case StateSynced:
		return "Synced"
	case StateFailed:
		return "Sync Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateSynced
}

// CanTransitionTo reports whether the edge s -> next is part of the
// lifecycle. Failed never reverts to Pending: attempt history must persist.
func (s State) CanTransitionTo(next State) bool {
	switch s {
	case StatePending:
		return next == StateSyncing
	case StateSyncing:
		return next == StateSynced || next == StateFailed
	case StateFailed:
		return next == StateSyncing
	default:
		return false
	}
}
