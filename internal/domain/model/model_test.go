//go:build !integration

package model_test

import (
	"errors"
	"testing"
	"time"

	"support-duty-bot/internal/domain"
	"support-duty-bot/internal/domain/model"
)

func TestNewEmployee(t *testing.T) {
	t.Run("generates an id and starts inactive", func(t *testing.T) {
		e, err := model.NewEmployee("", 42, "alice", "Alice A.")
		if err != nil {
			t.Fatalf("NewEmployee failed: %v", err)
		}
		if e.ID == "" {
			t.Error("expected a generated id")
		}
		if e.IsActive || e.IsAdmin {
			t.Errorf("expected inactive non-admin employee, got %+v", e)
		}
	})

	t.Run("falls back to the username for an empty full name", func(t *testing.T) {
		e, err := model.NewEmployee("", 42, "alice", "")
		if err != nil {
			t.Fatalf("NewEmployee failed: %v", err)
		}
		if e.FullName != "alice" {
			t.Errorf("full name = %q, want alice", e.FullName)
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		if _, err := model.NewEmployee("", 0, "alice", "Alice"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("zero tg id: expected ErrInvalidArgument, got %v", err)
		}
		if _, err := model.NewEmployee("", -1, "alice", "Alice"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("negative tg id: expected ErrInvalidArgument, got %v", err)
		}
		if _, err := model.NewEmployee("", 42, "", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("no name at all: expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestEmployee_DisplayName(t *testing.T) {
	withHandle := &model.Employee{Username: "alice", FullName: "Alice A."}
	if got := withHandle.DisplayName(); got != "@alice" {
		t.Errorf("DisplayName = %q, want @alice", got)
	}

	noHandle := &model.Employee{FullName: "Alice A."}
	if got := noHandle.DisplayName(); got != "Alice A." {
		t.Errorf("DisplayName = %q, want full name", got)
	}
}

func TestNewDuty(t *testing.T) {
	t.Run("normalizes the date and starts unnotified", func(t *testing.T) {
		msk := time.FixedZone("MSK", 3*3600)
		d, err := model.NewDuty("", "emp-1", time.Date(2026, 3, 1, 15, 42, 7, 0, msk))
		if err != nil {
			t.Fatalf("NewDuty failed: %v", err)
		}
		want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		if !d.Date.Equal(want) {
			t.Errorf("date = %v, want %v", d.Date, want)
		}
		if d.Notified {
			t.Error("expected new duty to be unnotified")
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		if _, err := model.NewDuty("", "", time.Now()); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("empty employee id: expected ErrInvalidArgument, got %v", err)
		}
		if _, err := model.NewDuty("", "emp-1", time.Time{}); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("zero date: expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestDuty_MarkNotified(t *testing.T) {
	d, _ := model.NewDuty("", "emp-1", time.Now())
	d.MarkNotified()
	if !d.Notified {
		t.Error("expected Notified to be set")
	}
}

func TestDateOnly(t *testing.T) {
	cases := []time.Time{
		time.Date(2026, 3, 1, 23, 59, 59, 999, time.FixedZone("X", -11*3600)),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("Y", 9*3600)),
	}
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range cases {
		if got := model.DateOnly(in); !got.Equal(want) {
			t.Errorf("DateOnly(%v) = %v, want %v", in, got, want)
		}
	}
}
