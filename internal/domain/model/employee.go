package model

import (
	"time"

	"support-duty-bot/internal/domain"

	"github.com/google/uuid"
)

// Employee is a domain entity representing a support team member.
// A row is created on first contact with the bot; IsActive marks
// membership in the duty roster and is flipped by admin commands.
type Employee struct {
	ID         string
	TelegramID int64
	Username   string
	FullName   string
	IsAdmin    bool
	IsActive   bool
	CreatedAt  time.Time
}

func NewEmployee(id string, tgID int64, username, fullName string) (*Employee, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if fullName == "" {
		fullName = username
	}
	if fullName == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Employee{
		ID:         id,
		TelegramID: tgID,
		Username:   username,
		FullName:   fullName,
		IsAdmin:    false,
		IsActive:   false,
		CreatedAt:  time.Now(),
	}, nil
}

func (e *Employee) IsZero() bool { return e == nil || e.ID == "" }

// DisplayName prefers the @username form when one exists.
func (e *Employee) DisplayName() string {
	if e.Username != "" {
		return "@" + e.Username
	}
	return e.FullName
}
