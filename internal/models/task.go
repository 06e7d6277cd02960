package model

import (
	"time"

	"worktracker.com/worktracker/internal/constants"
)

type Task struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	Status         constants.TaskStatus `json:"status"`
	EstimatedHours float64              `json:"estimatedHours"`
	ActualHours    float64              `json:"actualHours"`
	Version        uint                 `json:"version"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}
