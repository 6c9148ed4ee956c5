// Package ledger is the attendance state machine. A record moves
// NoRecord -> Open (entry set) -> Closed (exit set); there is at most one
// record per (employee, calendar date) and the entry write is idempotent so
// repeated verification hits are safe.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"FACEGATE/models"
)

// ErrNoActiveEntry is returned by RecordExit when the employee has no open
// record to close.
var ErrNoActiveEntry = errors.New("no active entry")

// Repository is the store surface the ledger needs. Find methods return
// (nil, nil) when no row matches; errors are reserved for store failures.
type Repository interface {
	// CreateIfAbsent inserts the record unless one already exists for its
	// (employee, date) key. It reports whether the insert happened. The
	// check-and-create must be atomic at the store; two concurrent calls for
	// the same key yield exactly one row.
	CreateIfAbsent(rec *models.Attendance) (bool, error)
	FindByDate(employeeId int64, date string) (*models.Attendance, error)
	// FindOpenEntry returns the most recent record with no exit time,
	// regardless of date, so a shift crossing midnight can still be closed.
	FindOpenEntry(employeeId int64) (*models.Attendance, error)
	SetExit(rec *models.Attendance, at time.Time) error
	ListByCompany(companyId int64) ([]models.Attendance, error)
}

type Ledger struct {
	repo Repository
}

func New(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// DateOf formats the calendar date key for a timestamp.
func DateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// RecordEntryIfAbsent creates today's Open record for the employee, or returns
// the existing one when the employee already has a record for the date. The
// boolean reports whether a new record was created.
func (l *Ledger) RecordEntryIfAbsent(employeeId, groupId, companyId int64, now time.Time) (*models.Attendance, bool, error) {
	rec := &models.Attendance{
		EmployeeId: employeeId,
		GroupId:    groupId,
		CompanyId:  companyId,
		AttendDate: DateOf(now),
		EntryTime:  now,
	}

	created, err := l.repo.CreateIfAbsent(rec)
	if err != nil {
		return nil, false, fmt.Errorf("record entry: %w", err)
	}
	if created {
		return rec, true, nil
	}

	existing, err := l.repo.FindByDate(employeeId, rec.AttendDate)
	if err != nil {
		return nil, false, fmt.Errorf("record entry: %w", err)
	}
	if existing == nil {
		// The row we lost the insert race to has vanished. Treat as a store
		// failure so the caller retries instead of silently dropping the hit.
		return nil, false, fmt.Errorf("record entry: conflicting record for employee %d on %s not found", employeeId, rec.AttendDate)
	}
	return existing, false, nil
}

// RecordExit closes the employee's most recent open record.
func (l *Ledger) RecordExit(employeeId int64, now time.Time) (*models.Attendance, error) {
	rec, err := l.repo.FindOpenEntry(employeeId)
	if err != nil {
		return nil, fmt.Errorf("record exit: %w", err)
	}
	if rec == nil {
		return nil, ErrNoActiveEntry
	}
	if err := l.repo.SetExit(rec, now); err != nil {
		return nil, fmt.Errorf("record exit: %w", err)
	}
	return rec, nil
}

// ListByCompany returns the company's records, newest first.
func (l *Ledger) ListByCompany(companyId int64) ([]models.Attendance, error) {
	return l.repo.ListByCompany(companyId)
}
