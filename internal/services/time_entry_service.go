package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"worktracker.com/worktracker/internal/clock"
	"worktracker.com/worktracker/internal/constants"
	apperrors "worktracker.com/worktracker/internal/errors"
	model "worktracker.com/worktracker/internal/models"
	repository "worktracker.com/worktracker/internal/repositories"
	"worktracker.com/worktracker/internal/stats"
)

type EntryFilter struct {
	TaskID string
	UserID string
	From   string
	To     string
}

func (f EntryFilter) match(e model.TimeEntry) bool {
	if f.TaskID != "" && e.TaskID != f.TaskID {
		return false
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	return stats.Between(f.From, f.To)(e.Date)
}

type TimeEntryService struct {
	repo  *repository.Repository
	clock clock.Clock
}

func NewTimeEntryService(repo *repository.Repository, c clock.Clock) *TimeEntryService {
	return &TimeEntryService{repo: repo, clock: c}
}

// Create records a finished session entered by hand. Duration and date are derived from
// the timestamps. Returns created=false when the same (task, start) was already recorded.
func (s *TimeEntryService) Create(ctx context.Context, userID, taskID string, start, end time.Time) (*model.TimeEntry, bool, error) {
	if end.Before(start) {
		return nil, false, apperrors.ErrValidation.WithMessage("endTime is before startTime")
	}

	loc := s.clock.Now().Location()
	start, end = start.In(loc), end.In(loc)

	var entry model.TimeEntry
	var created bool
	err := s.repo.Update(ctx, func(tx *repository.Tx) error {
		if _, ok := tx.Tasks().Get(taskID); !ok {
			return apperrors.ErrTaskNotFound
		}
		entry, created = recordEntry(tx, userID, taskID, start, end, s.clock.Now())
		if !created {
			return repository.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &entry, created, nil
}

func (s *TimeEntryService) List(ctx context.Context, filter EntryFilter) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	err := s.repo.View(ctx, func(tx *repository.Tx) error {
		entries = tx.TimeEntries().ListWhere(filter.match)
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats.SortByStartDesc(entries)
	return entries, nil
}

func (s *TimeEntryService) Grouped(ctx context.Context, filter EntryFilter) ([]stats.DayGroup, error) {
	entries, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return stats.GroupByDate(entries), nil
}

// recordEntry appends a closed session unless one with the same task and exact start
// already exists, and bumps the task's ActualHours cache.
func recordEntry(tx *repository.Tx, userID, taskID string, start, end, now time.Time) (model.TimeEntry, bool) {
	existing, ok := tx.TimeEntries().First(func(e model.TimeEntry) bool {
		return e.TaskID == taskID && e.StartTime.Equal(start)
	})
	if ok {
		return existing, false
	}

	minutes := model.MinutesBetween(start, end)
	entry := model.TimeEntry{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		UserID:    userID,
		StartTime: start,
		EndTime:   &end,
		Duration:  minutes,
		Date:      start.Format(constants.DateLayout),
	}
	tx.TimeEntries().Put(entry)

	if task, ok := tx.Tasks().Get(taskID); ok {
		task.ActualHours += minutes / 60
		touch(&task, now)
		tx.Tasks().Put(task)
	}
	return entry, true
}

func touch(task *model.Task, now time.Time) {
	task.UpdatedAt = now
	task.Version++
}
