package sched

import (
	"context"
	"time"

	"support-duty-bot/internal/infra/metrics"
	"support-duty-bot/internal/usecase"

	"github.com/rs/zerolog"
)

// ReminderWorker fires the daily duty reminder at a fixed wall time in the
// configured location. Ticks missed while the process was down are not
// backfilled: the next tick is always the next upcoming hh:mm.
type ReminderWorker struct {
	hour, minute int
	loc          *time.Location
	reminderUC   usecase.ReminderUseCase
	log          *zerolog.Logger
}

func NewReminderWorker(hour, minute int, loc *time.Location, reminderUC usecase.ReminderUseCase, logger *zerolog.Logger) *ReminderWorker {
	if loc == nil {
		loc = time.UTC
	}
	compLog := logger.With().Str("component", "ReminderWorker").Logger()
	return &ReminderWorker{
		hour:       hour,
		minute:     minute,
		loc:        loc,
		reminderUC: reminderUC,
		log:        &compLog,
	}
}

func (w *ReminderWorker) Run(ctx context.Context) error {
	w.log.Info().Int("hour", w.hour).Int("minute", w.minute).Str("tz", w.loc.String()).Msg("starting reminder worker")

	for {
		next := w.nextRun(time.Now().In(w.loc))
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			w.log.Info().Msg("stopping reminder worker")
			return ctx.Err()
		case <-timer.C:
			w.fire(ctx)
		}
	}
}

func (w *ReminderWorker) fire(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	today := time.Now().In(w.loc)
	sent, err := w.reminderUC.SendDailyReminder(runCtx, today)
	switch {
	case err != nil:
		metrics.ReminderRun("error")
		w.log.Error().Err(err).Msg("reminder run failed")
	case sent:
		metrics.ReminderRun("sent")
	default:
		metrics.ReminderRun("empty")
	}
}

// nextRun returns the next hh:mm strictly after now, today or tomorrow.
func (w *ReminderWorker) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), w.hour, w.minute, 0, 0, w.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
