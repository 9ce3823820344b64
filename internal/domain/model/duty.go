package model

import (
	"time"

	"support-duty-bot/internal/domain"

	"github.com/google/uuid"
)

// Duty is a single calendar date's on-call assignment, bound to exactly
// one employee. At most one duty exists per date, system-wide.
type Duty struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Notified   bool
	CreatedAt  time.Time
}

func NewDuty(id, employeeID string, date time.Time) (*Duty, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if employeeID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if date.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	return &Duty{
		ID:         id,
		EmployeeID: employeeID,
		Date:       DateOnly(date),
		Notified:   false,
		CreatedAt:  time.Now(),
	}, nil
}

// MarkNotified flips the notified flag. The transition is one-way: the
// reminder job never resets it.
func (d *Duty) MarkNotified() { d.Notified = true }

// DateOnly strips the time-of-day component so duty dates compare and
// store as pure calendar dates regardless of the caller's location.
func DateOnly(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
