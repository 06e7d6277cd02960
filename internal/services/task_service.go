package services

import (
	"context"
	"log"
	"sort"

	"github.com/google/uuid"

	"worktracker.com/worktracker/internal/cache"
	"worktracker.com/worktracker/internal/clock"
	"worktracker.com/worktracker/internal/constants"
	apperrors "worktracker.com/worktracker/internal/errors"
	model "worktracker.com/worktracker/internal/models"
	repository "worktracker.com/worktracker/internal/repositories"
)

type TaskService struct {
	repo   *repository.Repository
	timers cache.TimerCache
	clock  clock.Clock
}

func NewTaskService(repo *repository.Repository, timers cache.TimerCache, c clock.Clock) *TaskService {
	return &TaskService{
		repo:   repo,
		timers: timers,
		clock:  c,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, title, description string, estimatedHours float64) (*model.Task, error) {
	now := s.clock.Now()
	task := model.Task{
		ID:             uuid.NewString(),
		Title:          title,
		Description:    description,
		Status:         constants.StatusPending,
		EstimatedHours: estimatedHours,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.repo.Update(ctx, func(tx *repository.Tx) error {
		tx.Tasks().Put(task)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := s.repo.View(ctx, func(tx *repository.Tx) error {
		found, ok := tx.Tasks().Get(id)
		if !ok {
			return apperrors.ErrTaskNotFound
		}
		task = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := s.repo.View(ctx, func(tx *repository.Tx) error {
		tasks = tx.Tasks().All()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *TaskService) UpdateStatus(ctx context.Context, id string, status constants.TaskStatus) (*model.Task, error) {
	if !status.Valid() {
		return nil, apperrors.ErrValidation.WithMessage("unknown task status " + string(status))
	}

	var task model.Task
	err := s.repo.Update(ctx, func(tx *repository.Tx) error {
		found, ok := tx.Tasks().Get(id)
		if !ok {
			return apperrors.ErrTaskNotFound
		}
		if found.Status == status {
			task = found
			return repository.ErrNoChange
		}
		found.Status = status
		touch(&found, s.clock.Now())
		tx.Tasks().Put(found)
		task = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes the task with its time entries and any timer running on it.
func (s *TaskService) DeleteTask(ctx context.Context, id string) (int, error) {
	var removedEntries int

	err := s.repo.Update(ctx, func(tx *repository.Tx) error {
		if _, ok := tx.Tasks().Get(id); !ok {
			return apperrors.ErrTaskNotFound
		}

		var stoppedUsers []string
		for _, timer := range tx.Timers().ListWhere(func(t model.ActiveTimer) bool { return t.TaskID == id }) {
			stoppedUsers = append(stoppedUsers, timer.UserID)
		}
		tx.AfterCommit(func() { s.evictTimers(ctx, id, stoppedUsers) })
		tx.Timers().DeleteWhere(func(t model.ActiveTimer) bool { return t.TaskID == id })
		removedEntries = tx.TimeEntries().DeleteWhere(func(e model.TimeEntry) bool { return e.TaskID == id })
		tx.Tasks().DeleteWhere(func(t model.Task) bool { return t.ID == id })
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("task %s deleted with %d time entries", id, removedEntries)
	return removedEntries, nil
}

func (s *TaskService) evictTimers(ctx context.Context, taskID string, userIDs []string) {
	for _, userID := range userIDs {
		if err := s.timers.Delete(ctx, userID); err != nil {
			log.Printf("task %s: failed to evict timer cache for %s: %v", taskID, userID, err)
		}
	}
}
