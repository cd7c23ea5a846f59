package tasks

import (
	"fmt"
)

// WriteUpdate represents a progress event for a single document write.
type WriteUpdate struct {
	Phase Phase  // Write phase
	Path  string // Document path
	Err   error  // Set when Phase is [WriteFailed]
}

// Message returns a human-readable description for display.
func (u WriteUpdate) Message() string {
	switch u.Phase {
	case WriteStarted:
		return fmt.Sprintf("Saving %s...", u.Path)
	case WriteDone:
		return fmt.Sprintf("Saved %s", u.Path)
	case WriteFailed:
		return fmt.Sprintf("Failed to save %s: %v", u.Path, u.Err)
	case WriteCoalesced:
		return fmt.Sprintf("Replaced pending write for %s", u.Path)
	default:
		return u.Path
	}
}

// Write phase enumeration
type Phase int

const (
	WriteStarted Phase = iota
	WriteDone
	WriteFailed
	WriteCoalesced
)

func (p Phase) String() string {
	switch p {
	case WriteStarted:
		return "write_started"
	case WriteDone:
		return "write_done"
	case WriteFailed:
		return "write_failed"
	case WriteCoalesced:
		return "write_coalesced"
	default:
		return ""
	}
}

// Stats counts what the queue has done since it was created.
type Stats struct {
	Enqueued  int // Snapshots accepted by Enqueue
	Written   int // Successful writes
	Coalesced int // Queued snapshots replaced by a newer one before being written
	Failed    int // Writes that returned an error
	Dropped   int // Snapshots rejected because the queue was closed
}
