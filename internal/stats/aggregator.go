package stats

import (
	"sort"
	"time"

	"worktracker.com/worktracker/internal/constants"
	model "worktracker.com/worktracker/internal/models"
)

// DatePredicate selects date buckets ("2006-01-02").
type DatePredicate func(date string) bool

func OnDate(date string) DatePredicate {
	return func(d string) bool { return d == date }
}

// Between is inclusive on both ends; an empty bound is open.
func Between(from, to string) DatePredicate {
	return func(d string) bool {
		if from != "" && d < from {
			return false
		}
		if to != "" && d > to {
			return false
		}
		return true
	}
}

// InWeekOf matches the Monday-to-Sunday week containing t.
func InWeekOf(t time.Time) DatePredicate {
	start, end := WeekRange(t)
	return Between(start.Format(constants.DateLayout), end.Format(constants.DateLayout))
}

func InMonthOf(t time.Time) DatePredicate {
	prefix := t.Format("2006-01")
	return func(d string) bool { return len(d) >= 7 && d[:7] == prefix }
}

func WeekRange(t time.Time) (time.Time, time.Time) {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}
	start := t.AddDate(0, 0, -offset+1)
	end := start.AddDate(0, 0, 6)
	return start, end
}

// TotalForPeriod sums entry minutes for matching dates. The running timer counts too when
// the period contains today, so the total keeps moving while a session is open.
func TotalForPeriod(entries []model.TimeEntry, pred DatePredicate, active *model.ActiveTimer, now time.Time) float64 {
	total := 0.0
	for _, e := range entries {
		if pred(e.Date) {
			total += e.Minutes()
		}
	}
	if active != nil && pred(now.Format(constants.DateLayout)) {
		total += active.ElapsedMinutes(now)
	}
	return total
}

type DayGroup struct {
	Date         string            `json:"date"`
	TotalMinutes float64           `json:"totalMinutes"`
	Entries      []model.TimeEntry `json:"entries"`
}

// GroupByDate returns days newest first, each day's entries newest first.
func GroupByDate(entries []model.TimeEntry) []DayGroup {
	byDate := make(map[string][]model.TimeEntry)
	for _, e := range entries {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	groups := make([]DayGroup, 0, len(byDate))
	for date, dayEntries := range byDate {
		SortByStartDesc(dayEntries)
		total := 0.0
		for _, e := range dayEntries {
			total += e.Minutes()
		}
		groups = append(groups, DayGroup{Date: date, TotalMinutes: total, Entries: dayEntries})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Date > groups[j].Date
	})
	return groups
}

func SortByStartDesc(entries []model.TimeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartTime.After(entries[j].StartTime)
	})
}

func TotalsByTask(entries []model.TimeEntry) map[string]float64 {
	totals := make(map[string]float64)
	for _, e := range entries {
		totals[e.TaskID] += e.Minutes()
	}
	return totals
}

func ForUser(entries []model.TimeEntry, userID string) []model.TimeEntry {
	out := make([]model.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// Summary is what the dashboard shows for one user.
type Summary struct {
	TodayMinutes float64            `json:"todayMinutes"`
	WeekMinutes  float64            `json:"weekMinutes"`
	MonthMinutes float64            `json:"monthMinutes"`
	Running      *model.ActiveTimer `json:"running,omitempty"`
	ByTask       map[string]float64 `json:"byTask"`
}

func Summarize(entries []model.TimeEntry, active *model.ActiveTimer, now time.Time) Summary {
	return Summary{
		TodayMinutes: TotalForPeriod(entries, OnDate(now.Format(constants.DateLayout)), active, now),
		WeekMinutes:  TotalForPeriod(entries, InWeekOf(now), active, now),
		MonthMinutes: TotalForPeriod(entries, InMonthOf(now), active, now),
		Running:      active,
		ByTask:       TotalsByTask(entries),
	}
}

// AttendanceHours totals worked hours over valid, closed records.
func AttendanceHours(records []model.AttendanceRecord) float64 {
	total := 0.0
	for _, r := range records {
		if r.Valid() && r.ClockOut != nil {
			total += r.Hours()
		}
	}
	return total
}
