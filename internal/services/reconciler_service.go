package services

import (
	"context"
	"log"
	"sync"
	"time"
)

type ReconcileResult struct {
	TasksFixed        int `json:"tasksFixed"`
	AttendanceRemoved int `json:"attendanceRemoved"`
}

// ReconcilerService periodically repairs derived data: task ActualHours caches and
// corrupt attendance records.
type ReconcilerService struct {
	stats      *StatsService
	attendance *AttendanceService
	wg         sync.WaitGroup
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewReconcilerService starts the background loop when interval > 0.
func NewReconcilerService(stats *StatsService, attendance *AttendanceService, interval time.Duration) *ReconcilerService {
	r := &ReconcilerService{
		stats:      stats,
		attendance: attendance,
		stop:       make(chan struct{}),
	}

	if interval > 0 {
		r.wg.Add(1)
		go r.loop(interval)
	}

	return r
}

func (r *ReconcilerService) loop(interval time.Duration) {
	defer r.wg.Done()

	log.Printf("reconciler started, interval %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := r.RunOnce(context.Background()); err != nil {
				log.Printf("reconciler: %v", err)
			}
		case <-r.stop:
			log.Println("reconciler stopped")
			return
		}
	}
}

func (r *ReconcilerService) RunOnce(ctx context.Context) (ReconcileResult, error) {
	var result ReconcileResult

	fixed, err := r.stats.Reconcile(ctx)
	if err != nil {
		return result, err
	}
	result.TasksFixed = fixed

	removed, err := r.attendance.Cleanup(ctx)
	if err != nil {
		return result, err
	}
	result.AttendanceRemoved = removed

	return result, nil
}

func (r *ReconcilerService) Shutdown(ctx context.Context) {
	r.stopOnce.Do(func() { close(r.stop) })

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("reconciler shut down cleanly")
	case <-ctx.Done():
		log.Println("reconciler shutdown timed out")
	}
}
