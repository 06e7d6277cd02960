package services

import (
	"context"
	"errors"
	"log"
	"time"

	"worktracker.com/worktracker/internal/cache"
	"worktracker.com/worktracker/internal/clock"
	"worktracker.com/worktracker/internal/constants"
	apperrors "worktracker.com/worktracker/internal/errors"
	model "worktracker.com/worktracker/internal/models"
	repository "worktracker.com/worktracker/internal/repositories"
)

// TimerState is what GET /timer reports; Timer is nil while idle.
type TimerState struct {
	Running        bool               `json:"running"`
	Timer          *model.ActiveTimer `json:"timer,omitempty"`
	ElapsedMinutes float64            `json:"elapsedMinutes"`
}

// StartResult carries the new timer and, when the user switched tasks, the entry that
// closed the previous session.
type StartResult struct {
	Timer   model.ActiveTimer `json:"timer"`
	Stopped *model.TimeEntry  `json:"stopped,omitempty"`
}

// TimerService is the per-user Idle/Running state machine. The running timer lives in
// the document; the cache only mirrors it for cheap polling.
type TimerService struct {
	repo  *repository.Repository
	cache cache.TimerCache
	clock clock.Clock
}

func NewTimerService(repo *repository.Repository, timers cache.TimerCache, c clock.Clock) *TimerService {
	return &TimerService{
		repo:  repo,
		cache: timers,
		clock: c,
	}
}

// Start begins a session on taskID. Starting the task that is already running is a no-op;
// starting another task first stops the running one and records its entry.
func (s *TimerService) Start(ctx context.Context, userID, taskID string) (*StartResult, error) {
	now := s.clock.Now()
	var result StartResult

	err := s.repo.Update(ctx, func(tx *repository.Tx) error {
		result = StartResult{}

		if _, ok := tx.Tasks().Get(taskID); !ok {
			return apperrors.ErrTaskNotFound
		}

		if current, ok := tx.Timers().Get(userID); ok {
			if current.TaskID == taskID {
				result.Timer = current
				tx.AfterCommit(func() { s.mirror(ctx, userID, &current) })
				return repository.ErrNoChange
			}
			entry, _ := finishSession(tx, current, now)
			result.Stopped = &entry
		}

		timer := model.ActiveTimer{UserID: userID, TaskID: taskID, StartTime: now}
		tx.Timers().Put(timer)
		result.Timer = timer
		tx.AfterCommit(func() { s.mirror(ctx, userID, &timer) })

		task, _ := tx.Tasks().Get(taskID)
		if task.Status != constants.StatusInProgress {
			task.Status = constants.StatusInProgress
			touch(&task, now)
			tx.Tasks().Put(task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Stopped != nil {
		log.Printf("timer: %s switched from task %s (%.2f min) to task %s", userID, result.Stopped.TaskID, result.Stopped.Duration, taskID)
	} else {
		log.Printf("timer: %s running on task %s since %s", userID, taskID, result.Timer.StartTime.Format(time.RFC3339))
	}

	return &result, nil
}

// Stop closes the user's session on taskID and returns the recorded entry.
// A stop for an idle user or for a different task returns (nil, nil).
func (s *TimerService) Stop(ctx context.Context, userID, taskID string) (*model.TimeEntry, error) {
	now := s.clock.Now()
	var entry *model.TimeEntry

	err := s.repo.Update(ctx, func(tx *repository.Tx) error {
		entry = nil

		current, ok := tx.Timers().Get(userID)
		if !ok {
			tx.AfterCommit(func() { s.mirror(ctx, userID, nil) })
			return repository.ErrNoChange
		}
		if current.TaskID != taskID {
			tx.AfterCommit(func() { s.mirror(ctx, userID, &current) })
			return repository.ErrNoChange
		}

		recorded, _ := finishSession(tx, current, now)
		entry = &recorded
		tx.AfterCommit(func() { s.mirror(ctx, userID, nil) })
		return nil
	})
	if err != nil {
		return nil, err
	}

	if entry != nil {
		log.Printf("timer: %s stopped task %s after %.2f min", userID, taskID, entry.Duration)
	}

	return entry, nil
}

// Current reads the cache first and falls back to the store, refilling the cache.
func (s *TimerService) Current(ctx context.Context, userID string) (TimerState, error) {
	timer, err := s.cache.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("timer: cache read for %s failed: %v", userID, err)
		}

		timer, err = s.refill(ctx, userID)
		if err != nil {
			return TimerState{}, err
		}
	}

	return s.state(timer), nil
}

// Reconcile rebuilds the cached state from the store.
func (s *TimerService) Reconcile(ctx context.Context, userID string) (TimerState, error) {
	timer, err := s.refill(ctx, userID)
	if err != nil {
		return TimerState{}, err
	}
	return s.state(timer), nil
}

// refill reads the timer from the store and mirrors it under the writer lock, so a
// concurrent Start or Stop cannot be overwritten by an older read.
func (s *TimerService) refill(ctx context.Context, userID string) (*model.ActiveTimer, error) {
	var timer *model.ActiveTimer
	err := s.repo.Update(ctx, func(tx *repository.Tx) error {
		timer = nil
		if current, ok := tx.Timers().Get(userID); ok {
			timer = &current
		}
		tx.AfterCommit(func() { s.mirror(ctx, userID, timer) })
		return repository.ErrNoChange
	})
	return timer, err
}

func (s *TimerService) state(timer *model.ActiveTimer) TimerState {
	if timer == nil {
		return TimerState{}
	}
	return TimerState{
		Running:        true,
		Timer:          timer,
		ElapsedMinutes: timer.ElapsedMinutes(s.clock.Now()),
	}
}

// mirror runs as an AfterCommit hook; a cache failure only costs a store read on the next poll.
func (s *TimerService) mirror(ctx context.Context, userID string, timer *model.ActiveTimer) {
	if err := s.cache.Set(ctx, userID, timer); err != nil {
		log.Printf("timer: cache write for %s failed: %v", userID, err)
		_ = s.cache.Delete(ctx, userID)
	}
}

func finishSession(tx *repository.Tx, timer model.ActiveTimer, end time.Time) (model.TimeEntry, bool) {
	entry, created := recordEntry(tx, timer.UserID, timer.TaskID, timer.StartTime, end, end)
	tx.Timers().DeleteWhere(func(t model.ActiveTimer) bool { return t.UserID == timer.UserID })
	return entry, created
}
