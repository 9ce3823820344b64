package repository

import (
	"context"
	"time"

	"support-duty-bot/internal/domain/model"
)

// DutyRepository is the persistence port for Duty rows. Dates are pure
// calendar dates (model.DateOnly); at most one row exists per date.
type DutyRepository interface {
	// Upsert inserts the duty or, when the date is already assigned,
	// rebinds the existing row to the duty's employee. The notified flag
	// of an existing row is preserved.
	Upsert(ctx context.Context, tx Tx, d *model.Duty) error
	FindByDate(ctx context.Context, tx Tx, date time.Time) (*model.Duty, error)
	// FindUnnotifiedByDate returns domain.ErrNotFound when the date is
	// unassigned or its reminder was already delivered.
	FindUnnotifiedByDate(ctx context.Context, tx Tx, date time.Time) (*model.Duty, error)
	// ListUpcomingByEmployee returns duties with date >= from, ascending.
	ListUpcomingByEmployee(ctx context.Context, tx Tx, employeeID string, from time.Time) ([]*model.Duty, error)
	// DeleteByDate reports whether a row existed.
	DeleteByDate(ctx context.Context, tx Tx, date time.Time) (bool, error)
	DeleteByEmployee(ctx context.Context, tx Tx, employeeID string) (int64, error)
	MarkNotified(ctx context.Context, tx Tx, id string) error
}
