package model

import "time"

// ActiveTimer is the open-session counterpart of TimeEntry: at most one per user.
type ActiveTimer struct {
	UserID    string    `json:"userId"`
	TaskID    string    `json:"taskId"`
	StartTime time.Time `json:"startTime"`
}

func (t ActiveTimer) ElapsedMinutes(now time.Time) float64 {
	if now.Before(t.StartTime) {
		return 0
	}
	return MinutesBetween(t.StartTime, now)
}
