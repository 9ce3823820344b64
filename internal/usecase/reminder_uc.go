package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"support-duty-bot/internal/domain"
	"support-duty-bot/internal/domain/ports/adapter"
	"support-duty-bot/internal/domain/ports/repository"
	"support-duty-bot/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ReminderUseCase = (*reminderUC)(nil)

type ReminderUseCase interface {
	// SendDailyReminder notifies the employee on duty for the given date if
	// the duty has not been notified yet. Returns whether a reminder was
	// delivered. Finding no pending duty is not an error.
	SendDailyReminder(ctx context.Context, date time.Time) (bool, error)
}

type reminderUC struct {
	duties    repository.DutyRepository
	employees repository.EmployeeRepository
	tm        repository.TransactionManager
	bot       adapter.TelegramBotAdapter
	log       *zerolog.Logger
}

func NewReminderUseCase(
	duties repository.DutyRepository,
	employees repository.EmployeeRepository,
	tm repository.TransactionManager,
	bot adapter.TelegramBotAdapter,
	logger *zerolog.Logger,
) *reminderUC {
	return &reminderUC{duties: duties, employees: employees, tm: tm, bot: bot, log: logger}
}

func (u *reminderUC) SendDailyReminder(ctx context.Context, date time.Time) (bool, error) {
	defer logging.TraceDuration(u.log, "ReminderUC.SendDailyReminder")()

	sent := false
	// The send happens inside the transaction and notified is only set after
	// it succeeds: a failed send rolls back and the duty stays pending, so
	// delivery is at-least-once and a reminder is never silently lost.
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		duty, err := u.duties.FindUnnotifiedByDate(ctx, tx, date)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		emp, err := u.employees.FindByID(ctx, tx, duty.EmployeeID)
		if err != nil {
			return err
		}

		text := fmt.Sprintf("⏰ Reminder: you are on duty today (%s).", duty.Date.Format("2006-01-02"))
		if err := u.bot.SendMessage(ctx, emp.TelegramID, text); err != nil {
			return fmt.Errorf("send reminder: %w", err)
		}
		if err := u.duties.MarkNotified(ctx, tx, duty.ID); err != nil {
			return err
		}
		u.log.Info().Int64("tg_id", emp.TelegramID).Str("date", duty.Date.Format("2006-01-02")).Msg("duty reminder sent")
		sent = true
		return nil
	})
	return sent, err
}
