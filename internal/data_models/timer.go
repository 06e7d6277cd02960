package dto

import "time"

type TimerRequest struct {
	UserID string `json:"userId" validate:"required"`
	TaskID string `json:"taskId" validate:"required"`
}

type TimerQuery struct {
	UserID string `query:"userId" validate:"required"`
}

type CreateTimeEntryRequest struct {
	UserID    string    `json:"userId" validate:"required"`
	TaskID    string    `json:"taskId" validate:"required"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required"`
}

type TimeEntryQuery struct {
	TaskID string `query:"taskId"`
	UserID string `query:"userId"`
	From   string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}
