package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"support-duty-bot/internal/domain"
	"support-duty-bot/internal/domain/model"
	"support-duty-bot/internal/domain/ports/repository"
)

var _ repository.DutyRepository = (*PostgresDutyRepo)(nil)

type PostgresDutyRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresDutyRepo(pool *pgxpool.Pool) *PostgresDutyRepo {
	return &PostgresDutyRepo{pool: pool}
}

const dutyColumns = `id, employee_id, date, notified, created_at`

// Upsert relies on uq_duties_date: a date already assigned is rebound to the
// new employee in place, so repeated /setduty never duplicates a date. The
// notified flag is deliberately not reset (it never reverts).
func (r *PostgresDutyRepo) Upsert(ctx context.Context, tx repository.Tx, d *model.Duty) error {
	const q = `
INSERT INTO duties (id, employee_id, date, notified, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT ON CONSTRAINT uq_duties_date
DO UPDATE SET employee_id = EXCLUDED.employee_id;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, d.ID, d.EmployeeID, model.DateOnly(d.Date), d.Notified, d.CreatedAt)
	return mapConflict(err)
}

func (r *PostgresDutyRepo) FindByDate(ctx context.Context, tx repository.Tx, date time.Time) (*model.Duty, error) {
	return r.findOne(ctx, tx, `SELECT `+dutyColumns+` FROM duties WHERE date=$1;`, model.DateOnly(date))
}

func (r *PostgresDutyRepo) FindUnnotifiedByDate(ctx context.Context, tx repository.Tx, date time.Time) (*model.Duty, error) {
	return r.findOne(ctx, tx, `SELECT `+dutyColumns+` FROM duties WHERE date=$1 AND NOT notified;`, model.DateOnly(date))
}

func (r *PostgresDutyRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.Duty, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var d model.Duty
	row := ex.QueryRow(ctx, q, arg)
	if err := row.Scan(&d.ID, &d.EmployeeID, &d.Date, &d.Notified, &d.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	d.Date = model.DateOnly(d.Date)
	return &d, nil
}

func (r *PostgresDutyRepo) ListUpcomingByEmployee(ctx context.Context, tx repository.Tx, employeeID string, from time.Time) ([]*model.Duty, error) {
	const q = `SELECT ` + dutyColumns + ` FROM duties WHERE employee_id=$1 AND date >= $2 ORDER BY date;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, employeeID, model.DateOnly(from))
	if err != nil {
		return nil, fmt.Errorf("list upcoming duties: %w", err)
	}
	defer rows.Close()

	var out []*model.Duty
	for rows.Next() {
		var d model.Duty
		if err := rows.Scan(&d.ID, &d.EmployeeID, &d.Date, &d.Notified, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Date = model.DateOnly(d.Date)
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r *PostgresDutyRepo) DeleteByDate(ctx context.Context, tx repository.Tx, date time.Time) (bool, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	tag, err := ex.Exec(ctx, `DELETE FROM duties WHERE date=$1;`, model.DateOnly(date))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresDutyRepo) DeleteByEmployee(ctx context.Context, tx repository.Tx, employeeID string) (int64, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	tag, err := ex.Exec(ctx, `DELETE FROM duties WHERE employee_id=$1;`, employeeID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresDutyRepo) MarkNotified(ctx context.Context, tx repository.Tx, id string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `UPDATE duties SET notified=true WHERE id=$1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
