package services

import (
	"context"
	"log"
	"math"

	"worktracker.com/worktracker/internal/clock"
	"worktracker.com/worktracker/internal/constants"
	model "worktracker.com/worktracker/internal/models"
	repository "worktracker.com/worktracker/internal/repositories"
	"worktracker.com/worktracker/internal/stats"
)

const actualHoursTolerance = 1e-9

type Dashboard struct {
	UserID              string        `json:"userId"`
	Date                string        `json:"date"`
	Time                stats.Summary `json:"time"`
	AttendanceWeekHours float64       `json:"attendanceWeekHours"`
	Stats               stats.Stats   `json:"stats"`
}

type StatsService struct {
	repo  *repository.Repository
	clock clock.Clock
}

func NewStatsService(repo *repository.Repository, c clock.Clock) *StatsService {
	return &StatsService{repo: repo, clock: c}
}

func (s *StatsService) Stats(ctx context.Context) (stats.Stats, error) {
	var result stats.Stats
	err := s.repo.View(ctx, func(tx *repository.Tx) error {
		result = stats.Recalculate(tx.Tasks().All(), tx.TimeEntries().All())
		return nil
	})
	return result, err
}

// Reconcile rewrites every task ActualHours cache that drifted from its entries and
// returns how many tasks were fixed.
func (s *StatsService) Reconcile(ctx context.Context) (int, error) {
	var fixed int
	err := s.repo.Update(ctx, func(tx *repository.Tx) error {
		fixed = 0
		now := s.clock.Now()
		expected := stats.ActualHoursByTask(tx.TimeEntries().All())

		for _, task := range tx.Tasks().All() {
			want := expected[task.ID]
			if math.Abs(task.ActualHours-want) <= actualHoursTolerance {
				continue
			}
			log.Printf("stats: task %s actualHours %.6f -> %.6f", task.ID, task.ActualHours, want)
			task.ActualHours = want
			touch(&task, now)
			tx.Tasks().Put(task)
			fixed++
		}

		if fixed == 0 {
			return repository.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return fixed, nil
}

// Dashboard is one user's today/week/month totals, including the running session.
func (s *StatsService) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	now := s.clock.Now()
	dashboard := Dashboard{UserID: userID, Date: now.Format(constants.DateLayout)}

	err := s.repo.View(ctx, func(tx *repository.Tx) error {
		var active *model.ActiveTimer
		if timer, ok := tx.Timers().Get(userID); ok {
			active = &timer
		}

		entries := stats.ForUser(tx.TimeEntries().All(), userID)
		dashboard.Time = stats.Summarize(entries, active, now)

		inWeek := stats.InWeekOf(now)
		records := tx.Attendance().ListWhere(func(r model.AttendanceRecord) bool {
			return r.UserID == userID && inWeek(r.Date)
		})
		dashboard.AttendanceWeekHours = stats.AttendanceHours(records)

		dashboard.Stats = stats.Recalculate(tx.Tasks().All(), tx.TimeEntries().All())
		return nil
	})
	return dashboard, err
}
