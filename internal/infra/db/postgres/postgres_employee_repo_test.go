//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"support-duty-bot/internal/domain"
	"support-duty-bot/internal/domain/model"
)

func TestEmployeeRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewPostgresEmployeeRepo(testPool)
	ctx := context.Background()

	t.Run("should perform full CRUD cycle", func(t *testing.T) {
		cleanup(t)

		newEmp, err := model.NewEmployee("", 123456789, "integration_user", "Integration User")
		if err != nil {
			t.Fatalf("model.NewEmployee() failed: %v", err)
		}
		if err := repo.Save(ctx, nil, newEmp); err != nil {
			t.Fatalf("Failed to save new employee: %v", err)
		}

		found, err := repo.FindByTelegramID(ctx, nil, 123456789)
		if err != nil {
			t.Fatalf("Failed to find employee by telegram ID: %v", err)
		}
		if found.ID != newEmp.ID {
			t.Errorf("Expected employee ID to be %s, got %s", newEmp.ID, found.ID)
		}
		if found.IsActive {
			t.Error("expected a fresh employee to be inactive")
		}

		found.Username = "updated_user"
		found.IsActive = true
		if err := repo.Save(ctx, nil, found); err != nil {
			t.Fatalf("Failed to update employee: %v", err)
		}

		updated, err := repo.FindByID(ctx, nil, found.ID)
		if err != nil {
			t.Fatalf("Failed to find employee by ID: %v", err)
		}
		if updated.Username != "updated_user" || !updated.IsActive {
			t.Errorf("update not persisted: %+v", updated)
		}

		if err := repo.Delete(ctx, nil, found.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := repo.FindByID(ctx, nil, found.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("should find by username case-insensitively", func(t *testing.T) {
		cleanup(t)

		emp, _ := model.NewEmployee("", 111, "Alice_B", "Alice B.")
		if err := repo.Save(ctx, nil, emp); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		found, err := repo.FindByUsername(ctx, nil, "alice_b")
		if err != nil {
			t.Fatalf("FindByUsername failed: %v", err)
		}
		if found.ID != emp.ID {
			t.Errorf("expected %s, got %s", emp.ID, found.ID)
		}
	})

	t.Run("should enforce telegram id uniqueness", func(t *testing.T) {
		cleanup(t)

		first, _ := model.NewEmployee("", 222, "first", "First")
		if err := repo.Save(ctx, nil, first); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		dup, _ := model.NewEmployee("", 222, "second", "Second")
		if err := repo.Save(ctx, nil, dup); err == nil {
			t.Error("expected a uniqueness violation for a duplicate telegram id")
		}
	})

	t.Run("should list only active employees in order", func(t *testing.T) {
		cleanup(t)

		active1, _ := model.NewEmployee("", 301, "zoe", "Zoe")
		active1.IsActive = true
		active2, _ := model.NewEmployee("", 302, "adam", "Adam")
		active2.IsActive = true
		inactive, _ := model.NewEmployee("", 303, "lurker", "Lurker")

		for _, e := range []*model.Employee{active1, active2, inactive} {
			if err := repo.Save(ctx, nil, e); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}

		got, err := repo.ListActive(ctx, nil)
		if err != nil {
			t.Fatalf("ListActive failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 active employees, got %d", len(got))
		}
		if got[0].FullName != "Adam" || got[1].FullName != "Zoe" {
			t.Errorf("expected ordering by name, got %s then %s", got[0].FullName, got[1].FullName)
		}
	})

	t.Run("SetAdmins should stamp the allowlist and clear stale flags", func(t *testing.T) {
		cleanup(t)

		a, _ := model.NewEmployee("", 401, "a", "A")
		b, _ := model.NewEmployee("", 402, "b", "B")
		b.IsAdmin = true
		for _, e := range []*model.Employee{a, b} {
			if err := repo.Save(ctx, nil, e); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}

		if err := repo.SetAdmins(ctx, nil, []int64{401}); err != nil {
			t.Fatalf("SetAdmins failed: %v", err)
		}

		savedA, _ := repo.FindByTelegramID(ctx, nil, 401)
		savedB, _ := repo.FindByTelegramID(ctx, nil, 402)
		if !savedA.IsAdmin {
			t.Error("expected 401 to become admin")
		}
		if savedB.IsAdmin {
			t.Error("expected 402's stale admin flag to be cleared")
		}
	})
}
