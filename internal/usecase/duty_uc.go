package usecase

import (
	"context"
	"time"

	"support-duty-bot/internal/domain"
	"support-duty-bot/internal/domain/model"
	"support-duty-bot/internal/domain/ports/repository"
	"support-duty-bot/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ DutyUseCase = (*dutyUC)(nil)

// DutyUseCase exposes roster assignment operations.
type DutyUseCase interface {
	// SetDuty upserts the assignment for the date. Reassigning an already
	// assigned date rebinds it; a lost race surfaces domain.ErrConflict.
	SetDuty(ctx context.Context, date time.Time, username string) (*model.Duty, *model.Employee, error)
	// RemoveDuty reports whether an assignment existed for the date.
	RemoveDuty(ctx context.Context, date time.Time) (bool, error)
	// DutyOn returns domain.ErrNotFound when the date is unassigned.
	DutyOn(ctx context.Context, date time.Time) (*model.Duty, *model.Employee, error)
	// UpcomingFor lists duties with date >= from for the caller, ascending.
	UpcomingFor(ctx context.Context, tgID int64, from time.Time) ([]*model.Duty, error)
}

type dutyUC struct {
	duties    repository.DutyRepository
	employees repository.EmployeeRepository
	tm        repository.TransactionManager
	log       *zerolog.Logger
}

func NewDutyUseCase(
	duties repository.DutyRepository,
	employees repository.EmployeeRepository,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *dutyUC {
	return &dutyUC{duties: duties, employees: employees, tm: tm, log: logger}
}

func (u *dutyUC) SetDuty(ctx context.Context, date time.Time, username string) (*model.Duty, *model.Employee, error) {
	defer logging.TraceDuration(u.log, "DutyUC.SetDuty")()

	username = normalizeHandle(username)
	if username == "" || date.IsZero() {
		return nil, nil, domain.ErrInvalidArgument
	}
	date = model.DateOnly(date)

	var (
		duty *model.Duty
		emp  *model.Employee
	)
	// Serializable so concurrent assignments of the same date cannot both
	// pass the lookup; the loser maps to ErrConflict via the repo.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		e, err := u.employees.FindByUsername(ctx, tx, username)
		if err != nil {
			return err
		}
		if !e.IsActive {
			return domain.ErrNotFound
		}

		d, err := model.NewDuty("", e.ID, date)
		if err != nil {
			return err
		}
		if err := u.duties.Upsert(ctx, tx, d); err != nil {
			return err
		}
		duty, emp = d, e
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return duty, emp, nil
}

func (u *dutyUC) RemoveDuty(ctx context.Context, date time.Time) (bool, error) {
	defer logging.TraceDuration(u.log, "DutyUC.RemoveDuty")()
	if date.IsZero() {
		return false, domain.ErrInvalidArgument
	}
	return u.duties.DeleteByDate(ctx, repository.NoTX, date)
}

func (u *dutyUC) DutyOn(ctx context.Context, date time.Time) (*model.Duty, *model.Employee, error) {
	defer logging.TraceDuration(u.log, "DutyUC.DutyOn")()

	d, err := u.duties.FindByDate(ctx, repository.NoTX, date)
	if err != nil {
		return nil, nil, err
	}
	e, err := u.employees.FindByID(ctx, repository.NoTX, d.EmployeeID)
	if err != nil {
		return nil, nil, err
	}
	return d, e, nil
}

func (u *dutyUC) UpcomingFor(ctx context.Context, tgID int64, from time.Time) ([]*model.Duty, error) {
	defer logging.TraceDuration(u.log, "DutyUC.UpcomingFor")()

	e, err := u.employees.FindByTelegramID(ctx, repository.NoTX, tgID)
	if err != nil {
		return nil, err
	}
	return u.duties.ListUpcomingByEmployee(ctx, repository.NoTX, e.ID, from)
}
