package usecase

import (
	"context"
	"errors"
	"strings"

	"support-duty-bot/internal/domain"
	"support-duty-bot/internal/domain/model"
	"support-duty-bot/internal/domain/ports/repository"
	"support-duty-bot/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ EmployeeUseCase = (*employeeUC)(nil)

// EmployeeUseCase exposes roster membership operations used by bot flows.
type EmployeeUseCase interface {
	// RegisterOrFetch records first contact: a new row starts inactive
	// (known to the bot, not yet on the roster) with is_admin stamped
	// from the allowlist.
	RegisterOrFetch(ctx context.Context, tgID int64, username, fullName string) (*model.Employee, error)
	// Activate puts a previously seen handle on the roster.
	// Returns domain.ErrNotFound when the handle never talked to the bot.
	Activate(ctx context.Context, username string) (*model.Employee, error)
	// Remove deletes the employee and all their duties in one transaction.
	Remove(ctx context.Context, username string) (*model.Employee, error)
	ListActive(ctx context.Context) ([]*model.Employee, error)
	GetByTelegramID(ctx context.Context, tgID int64) (*model.Employee, error)
	// SyncAdmins makes the persisted is_admin flags match the allowlist.
	SyncAdmins(ctx context.Context) error
}

type employeeUC struct {
	employees repository.EmployeeRepository
	duties    repository.DutyRepository
	tm        repository.TransactionManager
	adminIDs  map[int64]struct{}
	log       *zerolog.Logger
}

func NewEmployeeUseCase(
	employees repository.EmployeeRepository,
	duties repository.DutyRepository,
	tm repository.TransactionManager,
	adminIDs []int64,
	logger *zerolog.Logger,
) *employeeUC {
	m := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		m[id] = struct{}{}
	}
	return &employeeUC{
		employees: employees,
		duties:    duties,
		tm:        tm,
		adminIDs:  m,
		log:       logger,
	}
}

func (u *employeeUC) RegisterOrFetch(ctx context.Context, tgID int64, username, fullName string) (*model.Employee, error) {
	defer logging.TraceDuration(u.log, "EmployeeUC.RegisterOrFetch")()

	var emp *model.Employee
	// Find and save run as one atomic step so two racing first contacts
	// from the same user cannot create duplicate rows.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		existing, err := u.employees.FindByTelegramID(ctx, tx, tgID)
		switch {
		case err == nil:
			changed := false
			if username != "" && existing.Username != username {
				existing.Username = username
				changed = true
			}
			if fullName != "" && existing.FullName != fullName {
				existing.FullName = fullName
				changed = true
			}
			if changed {
				if err := u.employees.Save(ctx, tx, existing); err != nil {
					return err
				}
			}
			emp = existing
			return nil
		case errors.Is(err, domain.ErrNotFound):
			ne, err := model.NewEmployee("", tgID, normalizeHandle(username), fullName)
			if err != nil {
				return err
			}
			_, ne.IsAdmin = u.adminIDs[tgID]
			if err := u.employees.Save(ctx, tx, ne); err != nil {
				return err
			}
			emp = ne
			return nil
		default:
			return err
		}
	})
	return emp, err
}

func (u *employeeUC) Activate(ctx context.Context, username string) (*model.Employee, error) {
	defer logging.TraceDuration(u.log, "EmployeeUC.Activate")()

	username = normalizeHandle(username)
	if username == "" {
		return nil, domain.ErrInvalidArgument
	}

	var emp *model.Employee
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		existing, err := u.employees.FindByUsername(ctx, tx, username)
		if err != nil {
			return err
		}
		if !existing.IsActive {
			existing.IsActive = true
			if err := u.employees.Save(ctx, tx, existing); err != nil {
				return err
			}
		}
		emp = existing
		return nil
	})
	return emp, err
}

func (u *employeeUC) Remove(ctx context.Context, username string) (*model.Employee, error) {
	defer logging.TraceDuration(u.log, "EmployeeUC.Remove")()

	username = normalizeHandle(username)
	if username == "" {
		return nil, domain.ErrInvalidArgument
	}

	var emp *model.Employee
	// Application-level cascade: duties go first, then the employee, in the
	// same transaction. The FK's ON DELETE CASCADE backstops this.
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		existing, err := u.employees.FindByUsername(ctx, tx, username)
		if err != nil {
			return err
		}
		removed, err := u.duties.DeleteByEmployee(ctx, tx, existing.ID)
		if err != nil {
			return err
		}
		if removed > 0 {
			u.log.Info().Str("employee_id", existing.ID).Int64("duties", removed).Msg("removed duties with employee")
		}
		if err := u.employees.Delete(ctx, tx, existing.ID); err != nil {
			return err
		}
		emp = existing
		return nil
	})
	return emp, err
}

func (u *employeeUC) ListActive(ctx context.Context) ([]*model.Employee, error) {
	defer logging.TraceDuration(u.log, "EmployeeUC.ListActive")()
	return u.employees.ListActive(ctx, repository.NoTX)
}

func (u *employeeUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.Employee, error) {
	defer logging.TraceDuration(u.log, "EmployeeUC.GetByTelegramID")()
	return u.employees.FindByTelegramID(ctx, repository.NoTX, tgID)
}

func (u *employeeUC) SyncAdmins(ctx context.Context) error {
	defer logging.TraceDuration(u.log, "EmployeeUC.SyncAdmins")()
	ids := make([]int64, 0, len(u.adminIDs))
	for id := range u.adminIDs {
		ids = append(ids, id)
	}
	return u.employees.SetAdmins(ctx, repository.NoTX, ids)
}

func normalizeHandle(username string) string {
	return strings.TrimPrefix(strings.TrimSpace(username), "@")
}
