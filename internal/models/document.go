package model

import (
	"encoding/json"
	"time"
)

// Document is the whole persisted state. Collections this service does not model are
// carried as raw JSON so other clients' data survives a rewrite.
type Document struct {
	Version      uint64             `json:"version"`
	LastUpdated  time.Time          `json:"lastUpdated"`
	Tasks        []Task             `json:"tasks"`
	TimeEntries  []TimeEntry        `json:"timeEntries"`
	Attendance   []AttendanceRecord `json:"attendance"`
	ActiveTimers []ActiveTimer      `json:"activeTimers"`

	Phases        []json.RawMessage `json:"phases"`
	Milestones    []json.RawMessage `json:"milestones"`
	Notifications []json.RawMessage `json:"notifications"`
	Activities    []json.RawMessage `json:"activities"`
	ChatMessages  []json.RawMessage `json:"chatMessages"`
}

func NewDocument() *Document {
	return &Document{
		Tasks:         []Task{},
		TimeEntries:   []TimeEntry{},
		Attendance:    []AttendanceRecord{},
		ActiveTimers:  []ActiveTimer{},
		Phases:        []json.RawMessage{},
		Milestones:    []json.RawMessage{},
		Notifications: []json.RawMessage{},
		Activities:    []json.RawMessage{},
		ChatMessages:  []json.RawMessage{},
	}
}

// Clone copies every collection so a mutation of the copy never leaks into d.
// Pointer fields inside records are shared; callers replace them rather than write through.
func (d *Document) Clone() *Document {
	return &Document{
		Version:       d.Version,
		LastUpdated:   d.LastUpdated,
		Tasks:         cloneSlice(d.Tasks),
		TimeEntries:   cloneSlice(d.TimeEntries),
		Attendance:    cloneSlice(d.Attendance),
		ActiveTimers:  cloneSlice(d.ActiveTimers),
		Phases:        cloneSlice(d.Phases),
		Milestones:    cloneSlice(d.Milestones),
		Notifications: cloneSlice(d.Notifications),
		Activities:    cloneSlice(d.Activities),
		ChatMessages:  cloneSlice(d.ChatMessages),
	}
}

// Normalize replaces nil collections with empty ones so the JSON never carries null arrays.
func (d *Document) Normalize() {
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	if d.TimeEntries == nil {
		d.TimeEntries = []TimeEntry{}
	}
	if d.Attendance == nil {
		d.Attendance = []AttendanceRecord{}
	}
	if d.ActiveTimers == nil {
		d.ActiveTimers = []ActiveTimer{}
	}
	for _, raw := range []*[]json.RawMessage{&d.Phases, &d.Milestones, &d.Notifications, &d.Activities, &d.ChatMessages} {
		if *raw == nil {
			*raw = []json.RawMessage{}
		}
	}
}

func cloneSlice[T any](src []T) []T {
	dst := make([]T, len(src))
	copy(dst, src)
	return dst
}
