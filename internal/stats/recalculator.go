package stats

import (
	"math"

	"worktracker.com/worktracker/internal/constants"
	model "worktracker.com/worktracker/internal/models"
)

type Stats struct {
	TotalTasks           int     `json:"totalTasks"`
	CompletedTasks       int     `json:"completedTasks"`
	InProgressTasks      int     `json:"inProgressTasks"`
	PendingTasks         int     `json:"pendingTasks"`
	TotalEstimatedHours  float64 `json:"totalEstimatedHours"`
	TotalActualHours     float64 `json:"totalActualHours"`
	CompletionPercentage int     `json:"completionPercentage"`
}

// Recalculate recomputes everything from the full collections.
// TotalActualHours comes from the entries, never from the per-task caches.
func Recalculate(tasks []model.Task, entries []model.TimeEntry) Stats {
	var s Stats
	s.TotalTasks = len(tasks)

	for _, t := range tasks {
		switch t.Status {
		case constants.StatusCompleted:
			s.CompletedTasks++
		case constants.StatusInProgress:
			s.InProgressTasks++
		default:
			s.PendingTasks++
		}
		s.TotalEstimatedHours += t.EstimatedHours
	}

	minutes := 0.0
	for _, e := range entries {
		minutes += e.Minutes()
	}
	s.TotalActualHours = minutes / 60

	if s.TotalTasks > 0 {
		s.CompletionPercentage = int(math.Round(float64(s.CompletedTasks) / float64(s.TotalTasks) * 100))
	}
	return s
}

// ActualHoursByTask is the value every task's ActualHours cache should hold.
func ActualHoursByTask(entries []model.TimeEntry) map[string]float64 {
	hours := make(map[string]float64)
	for taskID, minutes := range TotalsByTask(entries) {
		hours[taskID] = minutes / 60
	}
	return hours
}
