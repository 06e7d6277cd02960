package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"worktracker.com/worktracker/internal/attendance"
	"worktracker.com/worktracker/internal/cache"
	"worktracker.com/worktracker/internal/clock"
	config "worktracker.com/worktracker/internal/configs"
	repository "worktracker.com/worktracker/internal/repositories"
	"worktracker.com/worktracker/internal/services"
	"worktracker.com/worktracker/internal/store"
)

const timerCacheTTL = 24 * time.Hour

// app holds the wired services shared by every command.
type app struct {
	cfg        config.Config
	clock      clock.Clock
	repo       *repository.Repository
	timers     cache.TimerCache
	tasks      *services.TaskService
	entries    *services.TimeEntryService
	timer      *services.TimerService
	attendance *services.AttendanceService
	stats      *services.StatsService

	closers []func() error
}

func newApp() (*app, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}

	cfg := config.Load()
	a := &app{
		cfg:   cfg,
		clock: clock.System{Location: cfg.Location()},
	}

	s, err := a.openStore()
	if err != nil {
		return nil, err
	}
	a.repo = repository.NewRepository(s, a.clock, repository.Policy(cfg.ConcurrencyPolicy), cfg.WriteRetries)
	a.closers = append(a.closers, a.repo.Close)

	a.timers = a.openTimerCache()

	policy := attendance.DefaultPolicy()
	if cfg.AttendancePolicyFile != "" {
		policy, err = attendance.LoadPolicy(cfg.AttendancePolicyFile)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("load attendance policy: %w", err)
		}
	}

	a.tasks = services.NewTaskService(a.repo, a.timers, a.clock)
	a.entries = services.NewTimeEntryService(a.repo, a.clock)
	a.timer = services.NewTimerService(a.repo, a.timers, a.clock)
	a.attendance = services.NewAttendanceService(a.repo, policy, a.clock)
	a.stats = services.NewStatsService(a.repo, a.clock)

	return a, nil
}

func (a *app) openStore() (store.Store, error) {
	switch a.cfg.StorageDriver {
	case "sqlite":
		log.Printf("storage: sqlite %s", a.cfg.DatabaseDSN)
		return store.NewSQLiteStore(config.NewDatabaseClient(a.cfg.DatabaseDSN))
	default:
		log.Printf("storage: document file %s", a.cfg.DocumentPath)
		return store.NewFileStore(a.cfg.DocumentPath)
	}
}

func (a *app) openTimerCache() cache.TimerCache {
	if a.cfg.TimerCache != "redis" {
		return cache.NewMemoryTimerCache()
	}

	log.Printf("timer cache: redis %s", a.cfg.RedisAddr)
	client := config.NewRedisClient(a.cfg.RedisAddr)
	a.closers = append(a.closers, func() error {
		client.Close()
		return nil
	})
	return cache.NewRedisTimerCache(client, a.cfg.RedisTimerKeyPrefix, timerCacheTTL)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("close: %v", err)
		}
	}
	a.closers = nil
}
