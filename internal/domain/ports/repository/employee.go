package repository

import (
	"context"

	"support-duty-bot/internal/domain/model"
)

// EmployeeRepository is the persistence port for Employee rows.
// Lookup misses return domain.ErrNotFound.
type EmployeeRepository interface {
	// Save inserts the employee or updates the existing row by id.
	Save(ctx context.Context, tx Tx, e *model.Employee) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Employee, error)
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.Employee, error)
	// FindByUsername matches the Telegram handle without the leading '@'.
	FindByUsername(ctx context.Context, tx Tx, username string) (*model.Employee, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.Employee, error)
	// Delete removes the row. Dependent duties are removed by the caller's
	// transaction (and backstopped by the FK cascade).
	Delete(ctx context.Context, tx Tx, id string) error
	// SetAdmins makes exactly the employees with the given telegram ids
	// admins, clearing the flag everywhere else.
	SetAdmins(ctx context.Context, tx Tx, tgIDs []int64) error
}
