package model

import "time"

// TimeEntry is one completed work session against a task.
// Duration is a cached copy of EndTime-StartTime in minutes; use Minutes() to read it.
type TimeEntry struct {
	ID        string     `json:"id"`
	TaskID    string     `json:"taskId"`
	UserID    string     `json:"userId,omitempty"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Duration  float64    `json:"duration"`
	Date      string     `json:"date"`
}

// Minutes prefers the timestamps over the cached duration.
func (e TimeEntry) Minutes() float64 {
	if e.EndTime != nil && !e.StartTime.IsZero() {
		return MinutesBetween(e.StartTime, *e.EndTime)
	}
	return e.Duration
}

func MinutesBetween(start, end time.Time) float64 {
	return float64(end.Sub(start).Milliseconds()) / 60000
}
