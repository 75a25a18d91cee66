package bot

import (
	"context"

	"community-bot-backend/internal/platform/telegram"
)

// Transport is the outbound side of the chat platform. The real
// implementation is the Bot API client; tests inject a fake.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) (*telegram.Message, error)
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// UpdateSource produces inbound updates; the real implementation long-polls
// the Bot API.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
}
