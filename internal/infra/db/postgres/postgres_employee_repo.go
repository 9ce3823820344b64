package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"support-duty-bot/internal/domain"
	"support-duty-bot/internal/domain/model"
	"support-duty-bot/internal/domain/ports/repository"
)

var _ repository.EmployeeRepository = (*PostgresEmployeeRepo)(nil)

type PostgresEmployeeRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresEmployeeRepo(pool *pgxpool.Pool) *PostgresEmployeeRepo {
	return &PostgresEmployeeRepo{pool: pool}
}

const employeeColumns = `id, telegram_id, username, full_name, is_admin, is_active, created_at`

func (r *PostgresEmployeeRepo) Save(ctx context.Context, tx repository.Tx, e *model.Employee) error {
	const q = `
INSERT INTO employees (id, telegram_id, username, full_name, is_admin, is_active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  telegram_id=$2, username=$3, full_name=$4, is_admin=$5, is_active=$6;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, e.ID, e.TelegramID, e.Username, e.FullName, e.IsAdmin, e.IsActive, e.CreatedAt)
	return err
}

func (r *PostgresEmployeeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Employee, error) {
	return r.findOne(ctx, tx, `SELECT `+employeeColumns+` FROM employees WHERE id=$1;`, id)
}

func (r *PostgresEmployeeRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.Employee, error) {
	return r.findOne(ctx, tx, `SELECT `+employeeColumns+` FROM employees WHERE telegram_id=$1;`, tgID)
}

func (r *PostgresEmployeeRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.Employee, error) {
	return r.findOne(ctx, tx, `SELECT `+employeeColumns+` FROM employees WHERE lower(username)=lower($1);`, username)
}

func (r *PostgresEmployeeRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.Employee, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var e model.Employee
	row := ex.QueryRow(ctx, q, arg)
	if err := row.Scan(&e.ID, &e.TelegramID, &e.Username, &e.FullName, &e.IsAdmin, &e.IsActive, &e.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *PostgresEmployeeRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Employee, error) {
	const q = `SELECT ` + employeeColumns + ` FROM employees WHERE is_active ORDER BY full_name, username;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	defer rows.Close()

	var out []*model.Employee
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.TelegramID, &e.Username, &e.FullName, &e.IsAdmin, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *PostgresEmployeeRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `DELETE FROM employees WHERE id=$1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresEmployeeRepo) SetAdmins(ctx context.Context, tx repository.Tx, tgIDs []int64) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, `UPDATE employees SET is_admin = (telegram_id = ANY($1));`, tgIDs)
	return err
}
