package services

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"worktracker.com/worktracker/internal/attendance"
	"worktracker.com/worktracker/internal/clock"
	"worktracker.com/worktracker/internal/constants"
	apperrors "worktracker.com/worktracker/internal/errors"
	model "worktracker.com/worktracker/internal/models"
	repository "worktracker.com/worktracker/internal/repositories"
)

type AttendanceState string

const (
	NotClocked AttendanceState = "not_clocked"
	ClockedIn  AttendanceState = "clocked_in"
	ClockedOut AttendanceState = "clocked_out"
)

type AttendanceDay struct {
	UserID string                  `json:"userId"`
	Date   string                  `json:"date"`
	State  AttendanceState         `json:"state"`
	Record *model.AttendanceRecord `json:"record,omitempty"`
}

type AttendanceFilter struct {
	UserID string
	Date   string
	From   string
	To     string
}

func (f AttendanceFilter) match(r model.AttendanceRecord) bool {
	if !r.Valid() {
		return false
	}
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.Date != "" && r.Date != f.Date {
		return false
	}
	if f.From != "" && r.Date < f.From {
		return false
	}
	if f.To != "" && r.Date > f.To {
		return false
	}
	return true
}

// AttendanceService is the per (user, day) NotClocked -> ClockedIn -> ClockedOut machine.
type AttendanceService struct {
	repo   *repository.Repository
	policy attendance.Policy
	clock  clock.Clock
}

func NewAttendanceService(repo *repository.Repository, policy attendance.Policy, c clock.Clock) *AttendanceService {
	return &AttendanceService{
		repo:   repo,
		policy: policy,
		clock:  c,
	}
}

func (s *AttendanceService) Policy() attendance.Policy {
	return s.policy
}

// ClockIn opens a record for (userID, date). If one is already open it is returned along
// with ErrAlreadyClockedIn and nothing is written. Zero ts means now; empty date means
// the day of ts.
func (s *AttendanceService) ClockIn(ctx context.Context, userID, date string, ts time.Time) (*model.AttendanceRecord, error) {
	ts, date = s.resolve(date, ts)

	var record model.AttendanceRecord
	var alreadyOpen bool
	err := s.repo.Update(ctx, func(tx *repository.Tx) error {
		alreadyOpen = false
		if open, ok := findOpen(tx, userID, date); ok {
			record = open
			alreadyOpen = true
			return repository.ErrNoChange
		}

		clockIn := ts
		record = model.AttendanceRecord{
			ID:      uuid.NewString(),
			UserID:  userID,
			Date:    date,
			ClockIn: &clockIn,
		}
		tx.Attendance().Put(record)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if alreadyOpen {
		return &record, apperrors.ErrAlreadyClockedIn
	}

	log.Printf("attendance: %s clocked in for %s at %s", userID, date, ts.Format(time.RFC3339))
	return &record, nil
}

// ClockOut closes the open record for (userID, date) and classifies it.
func (s *AttendanceService) ClockOut(ctx context.Context, userID, date string, ts time.Time) (*model.AttendanceRecord, error) {
	ts, date = s.resolve(date, ts)

	var record model.AttendanceRecord
	err := s.repo.Update(ctx, func(tx *repository.Tx) error {
		open, ok := findOpen(tx, userID, date)
		if !ok {
			return apperrors.ErrNotClockedIn
		}
		if ts.Before(*open.ClockIn) {
			return apperrors.ErrClockOutBeforeClockIn
		}

		clockOut := ts
		open.ClockOut = &clockOut
		open.WorkHours = open.Hours()
		open.Status = s.policy.Classify(open.ClockIn.In(ts.Location()), clockOut, open.WorkHours)
		tx.Attendance().Put(open)
		record = open
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("attendance: %s clocked out for %s after %.2fh (%s)", userID, date, record.WorkHours, record.Status)
	return &record, nil
}

// Cleanup deletes records without a clock-in and returns how many were removed.
// Open records with a clock-in are legitimate and always kept.
func (s *AttendanceService) Cleanup(ctx context.Context) (int, error) {
	var removed int
	err := s.repo.Update(ctx, func(tx *repository.Tx) error {
		removed = tx.Attendance().DeleteWhere(func(r model.AttendanceRecord) bool { return !r.Valid() })
		if removed == 0 {
			return repository.ErrNoChange
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		log.Printf("attendance: cleanup removed %d corrupt records", removed)
	}
	return removed, nil
}

// List returns valid records, newest day first, latest clock-in first within a day.
func (s *AttendanceService) List(ctx context.Context, filter AttendanceFilter) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := s.repo.View(ctx, func(tx *repository.Tx) error {
		records = tx.Attendance().ListWhere(filter.match)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].ClockIn.After(*records[j].ClockIn)
	})
	return records, nil
}

func (s *AttendanceService) Today(ctx context.Context, userID string) (AttendanceDay, error) {
	date := s.clock.Now().Format(constants.DateLayout)
	day := AttendanceDay{UserID: userID, Date: date, State: NotClocked}

	records, err := s.List(ctx, AttendanceFilter{UserID: userID, Date: date})
	if err != nil {
		return AttendanceDay{}, err
	}

	for i := range records {
		if records[i].Open() {
			day.State = ClockedIn
			day.Record = &records[i]
			return day, nil
		}
	}
	if len(records) > 0 {
		day.State = ClockedOut
		day.Record = &records[0]
	}
	return day, nil
}

// resolve reads ts in the service's location so the day and the workday thresholds
// match what Today sees.
func (s *AttendanceService) resolve(date string, ts time.Time) (time.Time, string) {
	now := s.clock.Now()
	if ts.IsZero() {
		ts = now
	}
	ts = ts.In(now.Location())
	if date == "" {
		date = ts.Format(constants.DateLayout)
	}
	return ts, date
}

func findOpen(tx *repository.Tx, userID, date string) (model.AttendanceRecord, bool) {
	return tx.Attendance().First(func(r model.AttendanceRecord) bool {
		return r.UserID == userID && r.Date == date && r.Open()
	})
}
