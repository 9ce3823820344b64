package adapter

import "context"

// TelegramBotAdapter is the outbound port to the chat platform. The rest of
// the system addresses people by their Telegram id and sends plain text.
type TelegramBotAdapter interface {
	// StartPolling blocks until ctx is cancelled or polling fails.
	StartPolling(ctx context.Context) error
	StopPolling()
	SendMessage(ctx context.Context, tgID int64, text string) error
}
