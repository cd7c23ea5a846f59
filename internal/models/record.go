package models

import "fmt"

const userDocumentPrefix = "users/"

// UserDocumentPath returns the document store key for a user's record.
func UserDocumentPath(userID string) string {
	return userDocumentPrefix + userID
}

// ScheduleEntry is an opaque schedule payload. The store never inspects it.
type ScheduleEntry map[string]any

// Title returns the "title" field when present, for display.
func (e ScheduleEntry) Title() string {
	if v, ok := e["title"]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

// UserRecord is the persisted document shape: exactly {liked, schedules}.
type UserRecord struct {
	Liked     []int           `json:"liked"`
	Schedules []ScheduleEntry `json:"schedules"`
}

// Normalize replaces missing sequences with empty ones.
func (r UserRecord) Normalize() UserRecord {
	if r.Liked == nil {
		r.Liked = []int{}
	}
	if r.Schedules == nil {
		r.Schedules = []ScheduleEntry{}
	}
	return r
}

// Snapshot is the result of reading a document. Value is meaningful only when Exists is true.
type Snapshot struct {
	Exists bool
	Value  UserRecord
}
