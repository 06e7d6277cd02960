package repository

import (
	model "worktracker.com/worktracker/internal/models"
)

// Tx is the unit of work handed to View and Update callbacks.
type Tx struct {
	doc         *model.Document
	afterCommit []func()
}

func newTx(doc *model.Document) *Tx {
	return &Tx{doc: doc}
}

func (tx *Tx) Tasks() *Collection[model.Task] {
	return newCollection(&tx.doc.Tasks, func(t model.Task) string { return t.ID })
}

func (tx *Tx) TimeEntries() *Collection[model.TimeEntry] {
	return newCollection(&tx.doc.TimeEntries, func(e model.TimeEntry) string { return e.ID })
}

func (tx *Tx) Attendance() *Collection[model.AttendanceRecord] {
	return newCollection(&tx.doc.Attendance, func(r model.AttendanceRecord) string { return r.ID })
}

// Timers is keyed by user id.
func (tx *Tx) Timers() *Collection[model.ActiveTimer] {
	return newCollection(&tx.doc.ActiveTimers, func(t model.ActiveTimer) string { return t.UserID })
}

func (tx *Tx) Document() *model.Document {
	return tx.doc
}

// AfterCommit registers fn to run once the unit of work has succeeded, still under the
// repository's writer lock, so follow-up side effects land in commit order.
// Hooks registered by an attempt that is retried or fails are dropped.
func (tx *Tx) AfterCommit(fn func()) {
	tx.afterCommit = append(tx.afterCommit, fn)
}

func (tx *Tx) runAfterCommit() {
	for _, fn := range tx.afterCommit {
		fn()
	}
}
