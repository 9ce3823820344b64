package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"support-duty-bot/internal/application"
	"support-duty-bot/internal/config"
	"support-duty-bot/internal/domain/ports/adapter"
	"support-duty-bot/internal/infra/logging"
	"support-duty-bot/internal/infra/metrics"
	red "support-duty-bot/internal/infra/redis"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter uses tgbotapi to poll updates and delegates to
// BotFacade. Updates are handled by a bounded worker pool; each update gets
// a trace id and a per-update error boundary that always answers the user.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, facade *application.BotFacade, rateLimiter *red.RateLimiter, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	compLog := logger.With().Str("component", "TelegramAdapter").Logger()
	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		rateLimiter:   rateLimiter,
		log:           &compLog,
		updateWorkers: workers,
	}, nil
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					r.handleUpdate(ctx, up)
				}
			}
		}(i)
	}

	r.log.Info().Int("workers", r.updateWorkers).Msg("polling started")
	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(tgID, text)
	_, err := r.bot.Send(msg)
	return err
}

// handleUpdate is the per-update error boundary: every path ends with a
// reply to the user and internal failures never escape the worker.
func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	tgUser := update.Message.From
	text := update.Message.Text
	if strings.TrimSpace(text) == "" {
		return
	}

	ctx = logging.WithTraceID(ctx, uuid.NewString())
	ctx = logging.WithTgID(ctx, tgUser.ID)
	log := logging.With(ctx, r.log)

	verb := "message"
	if fields := strings.Fields(text); len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
		verb = fields[0]
	}

	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(tgUser.ID, verb), 20, time.Minute)
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			metrics.IncRateLimited()
			r.reply(ctx, log, tgUser.ID, "Rate limit exceeded. Please try again later.")
			return
		}
	}

	sender := application.Sender{
		TelegramID: tgUser.ID,
		Username:   tgUser.UserName,
		FullName:   strings.TrimSpace(tgUser.FirstName + " " + tgUser.LastName),
	}

	start := time.Now()
	reply, err := r.facade.HandleCommand(ctx, sender, text)
	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.ObserveCommand(verb, "error", elapsed)
		log.Error().Err(err).Str("command", verb).Msg("command failed")
		r.reply(ctx, log, tgUser.ID, "Something went wrong. Please try again later.")
		return
	}
	metrics.ObserveCommand(verb, "ok", elapsed)
	r.reply(ctx, log, tgUser.ID, reply)
}

func (r *RealTelegramBotAdapter) reply(ctx context.Context, log *zerolog.Logger, tgID int64, text string) {
	if err := r.SendMessage(ctx, tgID, text); err != nil {
		log.Error().Err(err).Msg("send reply failed")
	}
}
