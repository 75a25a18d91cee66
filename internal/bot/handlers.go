package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"community-bot-backend/internal/common/logger"
	adminservice "community-bot-backend/internal/features/admin/service"
	"community-bot-backend/internal/platform/telegram"
)

func (e *Engine) handleMessage(ctx context.Context, msg *telegram.Message) {
	userID := userKey(msg.From.ID)
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/start":
		// /start abandons any active flow.
		e.setState(userID, StateIdle)
		e.handleStart(ctx, chatID, userID, msg.From)
	case text == "/exit":
		e.setState(userID, StateIdle)
		e.reply(ctx, chatID, replyConversationEnd, nil)
	case strings.HasPrefix(text, "/"):
		logger.Debug().Str("user_id", userID).Str("command", text).Msg("Ignoring unknown command")
	default:
		e.handleText(ctx, chatID, userID, text, msg.From)
	}
}

func (e *Engine) handleStart(ctx context.Context, chatID int64, userID string, from *telegram.User) {
	user, isNew, err := e.users.EnsureRegistered(ctx, userID, from.FirstName)
	if err != nil {
		logger.Error().Str("user_id", userID).Err(err).Msg("Failed to register user")
		e.reply(ctx, chatID, replyInternalError, nil)
		return
	}

	if isNew {
		logger.Info().Str("user_id", userID).Msg("New user registered")
		e.reply(ctx, chatID, greetingNew(user.Name, e.opts.ChannelLink, e.opts.PromoCode), newUserKeyboard())
		return
	}
	e.reply(ctx, chatID, greetingKnown(user.Name), knownUserKeyboard())
}

func (e *Engine) handleText(ctx context.Context, chatID int64, userID, text string, from *telegram.User) {
	switch e.StateOf(userID) {
	case StateAwaitingPlayerID:
		e.handlePlayerID(ctx, chatID, userID, text, from)
	case StateAwaitingAdminCode:
		e.handleCodeEntry(ctx, chatID, userID, text, from)
	default:
		e.handleStrayText(ctx, chatID, userID)
	}
}

func (e *Engine) handlePlayerID(ctx context.Context, chatID int64, userID, playerID string, from *telegram.User) {
	if _, err := e.verifications.Submit(ctx, userID, playerID, displayName(from)); err != nil {
		logger.Error().Str("user_id", userID).Err(err).Msg("Failed to record submission")
		e.reply(ctx, chatID, replyInternalError, nil)
		return
	}
	if err := e.users.MarkPending(ctx, userID); err != nil {
		logger.Error().Str("user_id", userID).Err(err).Msg("Failed to mark user pending")
	}

	e.setState(userID, StateIdle)
	e.reply(ctx, chatID, replySubmissionAck, nil)
}

// handleStrayText is the deliberate dual-purpose entry point: free text
// outside any active flow is read as an attempted admin login.
func (e *Engine) handleStrayText(ctx context.Context, chatID int64, userID string) {
	active, err := e.sessions.IsActive(ctx, userID, e.now())
	if err != nil {
		logger.Error().Str("user_id", userID).Err(err).Msg("Failed to check admin session")
		e.reply(ctx, chatID, replyInternalError, nil)
		return
	}

	if active {
		e.setState(userID, StateAdminMenu)
		e.reply(ctx, chatID, replyAdminAlready, adminMenuKeyboard())
		return
	}
	e.setState(userID, StateAwaitingAdminCode)
	e.reply(ctx, chatID, replyAskAdminCode, nil)
}

func (e *Engine) handleCodeEntry(ctx context.Context, chatID int64, userID, code string, from *telegram.User) {
	switch e.sessions.VerifyCode(userID, code) {
	case adminservice.CodeAccepted:
		if _, err := e.sessions.Grant(ctx, userID, displayName(from), e.now(), e.opts.SessionDuration); err != nil {
			logger.Error().Str("user_id", userID).Err(err).Msg("Failed to grant admin session")
			e.reply(ctx, chatID, replyInternalError, nil)
			return
		}
		logger.Info().Str("user_id", userID).Msg("Admin session granted")
		e.setState(userID, StateAdminMenu)
		e.reply(ctx, chatID, adminGrantedReply(e.opts.SessionDuration), adminMenuKeyboard())
	case adminservice.CodeThrottled:
		logger.Warn().Str("user_id", userID).Msg("Admin code attempts throttled")
		e.setState(userID, StateIdle)
		e.reply(ctx, chatID, replyAdminThrottled, nil)
	default:
		e.setState(userID, StateIdle)
		e.reply(ctx, chatID, replyAdminWrongCode, nil)
	}
}

func (e *Engine) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	if err := e.transport.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		logger.Warn().Str("callback_id", cb.ID).Err(err).Msg("Failed to answer callback")
	}

	userID := userKey(cb.From.ID)
	chatID := cb.From.ID
	if cb.Message != nil {
		chatID = cb.Message.Chat.ID
		// Best effort: the message may already be gone or undeletable.
		if err := e.transport.DeleteMessage(ctx, chatID, cb.Message.MessageID); err != nil {
			logger.Warn().Int64("chat_id", chatID).Int64("message_id", cb.Message.MessageID).Err(err).Msg("Failed to delete button message")
		}
	}

	data := cb.Data
	switch {
	case data == callbackVerifyPromo:
		e.setState(userID, StateAwaitingPlayerID)
		e.reply(ctx, chatID, replyAskPlayerID, nil)
	case data == callbackNoCode:
		e.setState(userID, StateIdle)
		e.reply(ctx, chatID, noCodeReply(e.opts.AdminContact), nil)
	case data == callbackAccessBots:
		e.setState(userID, StateIdle)
		e.reply(ctx, chatID, replyAccessBots, nil)
	case data == callbackExit:
		e.setState(userID, StateIdle)
		e.reply(ctx, chatID, replyLeftMenu, nil)
	case data == callbackPending:
		if e.requireAdmin(ctx, chatID, userID) {
			e.listPending(ctx, chatID, userID)
		}
	case strings.HasPrefix(data, callbackApprovePrefix):
		if e.requireAdmin(ctx, chatID, userID) {
			e.approve(ctx, chatID, strings.TrimPrefix(data, callbackApprovePrefix))
		}
	case strings.HasPrefix(data, callbackRejectPrefix):
		if e.requireAdmin(ctx, chatID, userID) {
			e.rejectSubmission(ctx, chatID, strings.TrimPrefix(data, callbackRejectPrefix))
		}
	default:
		// Unhandled identifiers are a terminal no-op.
		logger.Debug().Str("user_id", userID).Str("data", data).Msg("Unhandled callback")
		e.setState(userID, StateIdle)
	}
}

// requireAdmin re-checks the session before every admin action; a lapsed
// session drops the user back to Idle.
func (e *Engine) requireAdmin(ctx context.Context, chatID int64, userID string) bool {
	active, err := e.sessions.IsActive(ctx, userID, e.now())
	if err != nil {
		logger.Error().Str("user_id", userID).Err(err).Msg("Failed to check admin session")
		e.reply(ctx, chatID, replyInternalError, nil)
		return false
	}
	if !active {
		e.setState(userID, StateIdle)
		e.reply(ctx, chatID, replyAdminExpired, nil)
		return false
	}
	e.setState(userID, StateAdminMenu)
	return true
}

func (e *Engine) listPending(ctx context.Context, chatID int64, userID string) {
	entries, err := e.verifications.List(ctx)
	if err != nil {
		logger.Error().Str("user_id", userID).Err(err).Msg("Failed to list pending verifications")
		e.reply(ctx, chatID, replyInternalError, nil)
		return
	}

	if len(entries) == 0 {
		e.reply(ctx, chatID, replyNoPending, adminMenuKeyboard())
		return
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		entry := entries[id]
		text := fmt.Sprintf(
			"Player ID %q submitted by %s on %s",
			entry.PlayerID, entry.Username, entry.SubmittedAt.Format("2006-01-02 15:04"),
		)
		e.reply(ctx, chatID, text, reviewKeyboard(id))
	}
}

func (e *Engine) approve(ctx context.Context, chatID int64, targetID string) {
	if err := e.users.MarkVerified(ctx, targetID); err != nil {
		logger.Error().Str("user_id", targetID).Err(err).Msg("Failed to mark user verified")
		e.reply(ctx, chatID, replyInternalError, nil)
		return
	}
	if err := e.verifications.Remove(ctx, targetID); err != nil {
		logger.Error().Str("user_id", targetID).Err(err).Msg("Failed to remove submission")
		e.reply(ctx, chatID, replyInternalError, nil)
		return
	}

	e.notify(ctx, targetID, replyUserApproved)
	e.reply(ctx, chatID, replyApproved, nil)
}

func (e *Engine) rejectSubmission(ctx context.Context, chatID int64, targetID string) {
	if err := e.verifications.Remove(ctx, targetID); err != nil {
		logger.Error().Str("user_id", targetID).Err(err).Msg("Failed to remove submission")
		e.reply(ctx, chatID, replyInternalError, nil)
		return
	}

	e.notify(ctx, targetID, replyUserRejected)
	e.reply(ctx, chatID, replyRejected, nil)
}

// notify sends a message to the user behind a store key, best effort.
func (e *Engine) notify(ctx context.Context, userID, text string) {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		logger.Warn().Str("user_id", userID).Msg("Cannot notify non-numeric user id")
		return
	}
	e.reply(ctx, chatID, text, nil)
}
