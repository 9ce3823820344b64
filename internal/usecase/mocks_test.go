//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"time"

	"support-duty-bot/internal/domain"
	"support-duty-bot/internal/domain/model"
	"support-duty-bot/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func dateOf(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// ---- MockTxManager ----

type MockTxManager struct{}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// ---- MockEmployeeRepo ----

// MockEmployeeRepo is an in-memory EmployeeRepository. Default behavior
// works against the internal map; any method can be overridden per test via
// its Func field.
type MockEmployeeRepo struct {
	mu        sync.Mutex
	employees map[string]*model.Employee

	SaveFunc             func(ctx context.Context, tx repository.Tx, e *model.Employee) error
	FindByIDFunc         func(ctx context.Context, tx repository.Tx, id string) (*model.Employee, error)
	FindByTelegramIDFunc func(ctx context.Context, tx repository.Tx, tgID int64) (*model.Employee, error)
	FindByUsernameFunc   func(ctx context.Context, tx repository.Tx, username string) (*model.Employee, error)
	ListActiveFunc       func(ctx context.Context, tx repository.Tx) ([]*model.Employee, error)
	DeleteFunc           func(ctx context.Context, tx repository.Tx, id string) error
	SetAdminsFunc        func(ctx context.Context, tx repository.Tx, tgIDs []int64) error
}

func NewMockEmployeeRepo() *MockEmployeeRepo {
	return &MockEmployeeRepo{employees: make(map[string]*model.Employee)}
}

func (m *MockEmployeeRepo) Save(ctx context.Context, tx repository.Tx, e *model.Employee) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.employees[e.ID] = &cp
	return nil
}

func (m *MockEmployeeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Employee, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.employees[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockEmployeeRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.Employee, error) {
	if m.FindByTelegramIDFunc != nil {
		return m.FindByTelegramIDFunc(ctx, tx, tgID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.employees {
		if e.TelegramID == tgID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockEmployeeRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.Employee, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, tx, username)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.employees {
		if e.Username == username {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockEmployeeRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Employee, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Employee
	for _, e := range m.employees {
		if e.IsActive {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockEmployeeRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.employees[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.employees, id)
	return nil
}

func (m *MockEmployeeRepo) SetAdmins(ctx context.Context, tx repository.Tx, tgIDs []int64) error {
	if m.SetAdminsFunc != nil {
		return m.SetAdminsFunc(ctx, tx, tgIDs)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[int64]struct{}, len(tgIDs))
	for _, id := range tgIDs {
		ids[id] = struct{}{}
	}
	for _, e := range m.employees {
		_, e.IsAdmin = ids[e.TelegramID]
	}
	return nil
}

// ---- MockDutyRepo ----

type MockDutyRepo struct {
	mu     sync.Mutex
	duties map[string]*model.Duty // keyed by date (YYYY-MM-DD)

	UpsertFunc               func(ctx context.Context, tx repository.Tx, d *model.Duty) error
	FindByDateFunc           func(ctx context.Context, tx repository.Tx, date time.Time) (*model.Duty, error)
	FindUnnotifiedByDateFunc func(ctx context.Context, tx repository.Tx, date time.Time) (*model.Duty, error)
	MarkNotifiedFunc         func(ctx context.Context, tx repository.Tx, id string) error
}

func NewMockDutyRepo() *MockDutyRepo {
	return &MockDutyRepo{duties: make(map[string]*model.Duty)}
}

func dayKey(t time.Time) string { return model.DateOnly(t).Format("2006-01-02") }

func (m *MockDutyRepo) Upsert(ctx context.Context, tx repository.Tx, d *model.Duty) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dayKey(d.Date)
	if existing, ok := m.duties[key]; ok {
		existing.EmployeeID = d.EmployeeID
		return nil
	}
	cp := *d
	m.duties[key] = &cp
	return nil
}

func (m *MockDutyRepo) FindByDate(ctx context.Context, tx repository.Tx, date time.Time) (*model.Duty, error) {
	if m.FindByDateFunc != nil {
		return m.FindByDateFunc(ctx, tx, date)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.duties[dayKey(date)]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockDutyRepo) FindUnnotifiedByDate(ctx context.Context, tx repository.Tx, date time.Time) (*model.Duty, error) {
	if m.FindUnnotifiedByDateFunc != nil {
		return m.FindUnnotifiedByDateFunc(ctx, tx, date)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.duties[dayKey(date)]; ok && !d.Notified {
		cp := *d
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockDutyRepo) ListUpcomingByEmployee(ctx context.Context, tx repository.Tx, employeeID string, from time.Time) ([]*model.Duty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Duty
	for _, d := range m.duties {
		if d.EmployeeID == employeeID && !d.Date.Before(model.DateOnly(from)) {
			cp := *d
			out = append(out, &cp)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Date.Before(out[i].Date) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (m *MockDutyRepo) DeleteByDate(ctx context.Context, tx repository.Tx, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dayKey(date)
	if _, ok := m.duties[key]; !ok {
		return false, nil
	}
	delete(m.duties, key)
	return true, nil
}

func (m *MockDutyRepo) DeleteByEmployee(ctx context.Context, tx repository.Tx, employeeID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for key, d := range m.duties {
		if d.EmployeeID == employeeID {
			delete(m.duties, key)
			n++
		}
	}
	return n, nil
}

func (m *MockDutyRepo) MarkNotified(ctx context.Context, tx repository.Tx, id string) error {
	if m.MarkNotifiedFunc != nil {
		return m.MarkNotifiedFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.duties {
		if d.ID == id {
			d.Notified = true
			return nil
		}
	}
	return domain.ErrNotFound
}

// ---- MockBot ----

// MockBot records outbound messages; SendFunc can force failures.
type MockBot struct {
	mu   sync.Mutex
	sent []sentMessage

	SendFunc func(ctx context.Context, tgID int64, text string) error
}

type sentMessage struct {
	TgID int64
	Text string
}

func NewMockBot() *MockBot { return &MockBot{} }

func (m *MockBot) StartPolling(ctx context.Context) error { <-ctx.Done(); return ctx.Err() }
func (m *MockBot) StopPolling()                           {}

func (m *MockBot) SendMessage(ctx context.Context, tgID int64, text string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, tgID, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{TgID: tgID, Text: text})
	return nil
}

func (m *MockBot) Sent() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}
