package bot

import (
	"context"
	"strconv"
	"time"

	"community-bot-backend/internal/common/logger"
	adminservice "community-bot-backend/internal/features/admin/service"
	userservice "community-bot-backend/internal/features/user/service"
	verifservice "community-bot-backend/internal/features/verification/service"
	"community-bot-backend/internal/platform/telegram"
)

// Options carries the community-facing knobs the handlers need.
type Options struct {
	AdminContact    string
	ChannelLink     string
	PromoCode       string
	SessionDuration time.Duration
}

// Engine is the conversation controller: it owns the per-user dialogue
// state, routes inbound updates to handlers, and drives the registry, the
// verification queue and the session manager.
//
// Updates are handled strictly one at a time (Run consumes them
// sequentially), so the state map needs no locking.
type Engine struct {
	transport     Transport
	users         userservice.RegistryService
	verifications verifservice.QueueService
	sessions      adminservice.SessionService
	opts          Options

	states map[string]State
	now    func() time.Time
}

func NewEngine(transport Transport, users userservice.RegistryService, verifications verifservice.QueueService, sessions adminservice.SessionService, opts Options) *Engine {
	if opts.SessionDuration <= 0 {
		opts.SessionDuration = adminservice.DefaultSessionDuration
	}
	return &Engine{
		transport:     transport,
		users:         users,
		verifications: verifications,
		sessions:      sessions,
		opts:          opts,
		states:        make(map[string]State),
		now:           time.Now,
	}
}

// Run consumes updates from the source until ctx is cancelled. One update is
// fully handled before the next is dequeued.
func (e *Engine) Run(ctx context.Context, source UpdateSource, pollTimeout int) {
	var offset int64

	for {
		if ctx.Err() != nil {
			return
		}

		updates, err := source.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error().Err(err).Msg("Failed to fetch updates")
			time.Sleep(3 * time.Second)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			e.HandleUpdate(ctx, upd)
		}
	}
}

// HandleUpdate routes one inbound event through the state machine.
func (e *Engine) HandleUpdate(ctx context.Context, upd telegram.Update) {
	switch {
	case upd.CallbackQuery != nil:
		e.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil && upd.Message.From != nil:
		e.handleMessage(ctx, upd.Message)
	}
}

// StateOf returns the current dialogue state for a user id.
func (e *Engine) StateOf(userID string) State {
	return e.states[userID]
}

func (e *Engine) setState(userID string, s State) {
	if s == StateIdle {
		delete(e.states, userID)
		return
	}
	e.states[userID] = s
}

// displayName mirrors the platform convention: prefer the username handle,
// fall back to the first name.
func displayName(u *telegram.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

func userKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// reply sends text to the chat; a failed send is logged and swallowed, it
// never aborts the handler.
func (e *Engine) reply(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) {
	if _, err := e.transport.SendMessage(ctx, chatID, text, keyboard); err != nil {
		logger.Error().Int64("chat_id", chatID).Err(err).Msg("Failed to send reply")
	}
}
