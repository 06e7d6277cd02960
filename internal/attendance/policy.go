package attendance

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"worktracker.com/worktracker/internal/constants"
)

// Policy holds the thresholds clock-out classification is measured against.
type Policy struct {
	WorkdayStart string  `yaml:"workday_start"`
	WorkdayEnd   string  `yaml:"workday_end"`
	GraceMinutes int     `yaml:"grace_minutes"`
	MinimumHours float64 `yaml:"minimum_hours"`
}

func DefaultPolicy() Policy {
	return Policy{
		WorkdayStart: "09:00",
		WorkdayEnd:   "17:00",
		GraceMinutes: 0,
		MinimumHours: 4,
	}
}

// LoadPolicy reads a YAML policy file; keys missing from the file keep their defaults.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read attendance policy: %w", err)
	}

	if err := yaml.Unmarshal(data, &policy); err != nil {
		return Policy{}, fmt.Errorf("parse attendance policy: %w", err)
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

func (p Policy) Validate() error {
	if _, err := ParseTimeOnDate(time.Now(), p.WorkdayStart); err != nil {
		return fmt.Errorf("invalid workday_start %q: %w", p.WorkdayStart, err)
	}
	if _, err := ParseTimeOnDate(time.Now(), p.WorkdayEnd); err != nil {
		return fmt.Errorf("invalid workday_end %q: %w", p.WorkdayEnd, err)
	}
	if p.GraceMinutes < 0 {
		return fmt.Errorf("grace_minutes must not be negative")
	}
	if p.MinimumHours < 0 {
		return fmt.Errorf("minimum_hours must not be negative")
	}
	return nil
}

// Classify decides the status of a closed attendance record.
// Order matters: late wins over half-day, which wins over early-departure.
func (p Policy) Classify(clockIn, clockOut time.Time, workHours float64) constants.AttendanceStatus {
	start, end, err := p.window(clockIn)
	if err != nil {
		return constants.AttendancePresent
	}

	grace := time.Duration(p.GraceMinutes) * time.Minute

	switch {
	case clockIn.After(start.Add(grace)):
		return constants.AttendanceLate
	case workHours < p.MinimumHours:
		return constants.AttendanceHalfDay
	case clockOut.Before(end):
		return constants.AttendanceEarlyDeparture
	default:
		return constants.AttendancePresent
	}
}

// window returns the workday start and end on the day of clockIn.
func (p Policy) window(clockIn time.Time) (time.Time, time.Time, error) {
	day := time.Date(clockIn.Year(), clockIn.Month(), clockIn.Day(), 0, 0, 0, 0, clockIn.Location())

	start, err := ParseTimeOnDate(day, p.WorkdayStart)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseTimeOnDate(day, p.WorkdayEnd)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	// Night shifts finish the next day.
	if end.Before(start) {
		end = end.Add(24 * time.Hour)
	}
	return start, end, nil
}

// ParseTimeOnDate places an HH:MM or HH:MM:SS wall time on baseDate, in its location.
func ParseTimeOnDate(baseDate time.Time, timeStr string) (time.Time, error) {
	t, err := time.Parse("15:04", timeStr)
	if err != nil {
		t, err = time.Parse("15:04:05", timeStr)
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(baseDate.Year(), baseDate.Month(), baseDate.Day(), t.Hour(), t.Minute(), t.Second(), 0, baseDate.Location()), nil
}
