package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adminservice "community-bot-backend/internal/features/admin/service"
	usermodels "community-bot-backend/internal/features/user/models"
	userservice "community-bot-backend/internal/features/user/service"
	verifservice "community-bot-backend/internal/features/verification/service"
	"community-bot-backend/internal/platform/storage"
	"community-bot-backend/internal/platform/telegram"
)

const testAdminCode = "SIHO ISAAC ROLAND 840106"

type sentMessage struct {
	chatID   int64
	text     string
	keyboard *telegram.InlineKeyboardMarkup
}

type fakeTransport struct {
	messages []sentMessage
	deleted  []int64
	answered []string
}

func (f *fakeTransport) SendMessage(_ context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) (*telegram.Message, error) {
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	return &telegram.Message{MessageID: int64(len(f.messages)), Chat: telegram.Chat{ID: chatID}}, nil
}

func (f *fakeTransport) DeleteMessage(_ context.Context, _, messageID int64) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeTransport) AnswerCallbackQuery(_ context.Context, callbackID string) error {
	f.answered = append(f.answered, callbackID)
	return nil
}

func (f *fakeTransport) last(t *testing.T) sentMessage {
	t.Helper()
	require.NotEmpty(t, f.messages)
	return f.messages[len(f.messages)-1]
}

type testEnv struct {
	engine        *Engine
	transport     *fakeTransport
	users         userservice.RegistryService
	verifications verifservice.QueueService
	sessions      adminservice.SessionService
	now           time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := storage.NewMemoryStore()
	env := &testEnv{
		transport:     &fakeTransport{},
		users:         userservice.NewRegistryService(store),
		verifications: verifservice.NewQueueService(store),
		sessions:      adminservice.NewSessionService(store, testAdminCode),
		now:           time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	env.engine = NewEngine(env.transport, env.users, env.verifications, env.sessions, Options{
		AdminContact: "@admin",
		ChannelLink:  "https://t.me/community",
		PromoCode:    "PROMO1",
	})
	env.engine.now = func() time.Time { return env.now }
	return env
}

func messageUpdate(userID int64, name, text string) telegram.Update {
	return telegram.Update{
		Message: &telegram.Message{
			MessageID: 1,
			From:      &telegram.User{ID: userID, FirstName: name},
			Chat:      telegram.Chat{ID: userID},
			Text:      text,
		},
	}
}

func callbackUpdate(userID int64, data string, messageID int64) telegram.Update {
	return telegram.Update{
		CallbackQuery: &telegram.CallbackQuery{
			ID:   "cb-1",
			From: telegram.User{ID: userID, FirstName: "Alice"},
			Message: &telegram.Message{
				MessageID: messageID,
				Chat:      telegram.Chat{ID: userID},
			},
			Data: data,
		},
	}
}

func buttonData(keyboard *telegram.InlineKeyboardMarkup) []string {
	var data []string
	if keyboard == nil {
		return data
	}
	for _, row := range keyboard.InlineKeyboard {
		for _, btn := range row {
			data = append(data, btn.CallbackData)
		}
	}
	return data
}

func TestStartRegistersNewUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.engine.HandleUpdate(ctx, messageUpdate(100, "Alice", "/start"))

	users, err := env.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, usermodels.StatusNew, users["100"].Status)

	msg := env.transport.last(t)
	assert.Contains(t, msg.text, "Alice")
	assert.Equal(t, []string{callbackVerifyPromo, callbackNoCode}, buttonData(msg.keyboard))
	assert.Equal(t, StateIdle, env.engine.StateOf("100"))
}

func TestStartKnownUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.engine.HandleUpdate(ctx, messageUpdate(100, "Alice", "/start"))
	env.engine.HandleUpdate(ctx, messageUpdate(100, "Alice", "/start"))

	msg := env.transport.last(t)
	assert.Equal(t, []string{callbackAccessBots}, buttonData(msg.keyboard))
}

func TestVerificationFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.engine.HandleUpdate(ctx, messageUpdate(100, "Alice", "/start"))
	env.engine.HandleUpdate(ctx, callbackUpdate(100, callbackVerifyPromo, 42))

	// The button message is deleted and the user is prompted for an id.
	assert.Contains(t, env.transport.deleted, int64(42))
	assert.Equal(t, StateAwaitingPlayerID, env.engine.StateOf("100"))
	assert.Equal(t, replyAskPlayerID, env.transport.last(t).text)

	env.engine.HandleUpdate(ctx, messageUpdate(100, "Alice", "PID-12345"))

	entry, err := env.verifications.Peek(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, "PID-12345", entry.PlayerID)

	users, err := env.users.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, usermodels.StatusPendingVerification, users["100"].Status)

	assert.Equal(t, StateIdle, env.engine.StateOf("100"))
	assert.Equal(t, replySubmissionAck, env.transport.last(t).text)
}

func TestNoCodeButton(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.engine.HandleUpdate(ctx, messageUpdate(100, "Alice", "/start"))
	env.engine.HandleUpdate(ctx, callbackUpdate(100, callbackNoCode, 42))

	assert.Contains(t, env.transport.last(t).text, "@admin")
	assert.Equal(t, StateIdle, env.engine.StateOf("100"))
}

func TestStrayTextBecomesAdminLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.engine.HandleUpdate(ctx, messageUpdate(100, "Alice", "hello there"))

	assert.Equal(t, StateAwaitingAdminCode, env.engine.StateOf("100"))
	assert.Equal(t, replyAskAdminCode, env.transport.last(t).text)

	env.engine.HandleUpdate(ctx, messageUpdate(100, "Alice", testAdminCode))

	active, err := env.sessions.IsActive(ctx, "100", env.now.Add(29*time.Minute))
	require.NoError(t, err)
	assert.True(t, active)

	active, err = env.sessions.IsActive(ctx, "100", env.now.Add(31*time.Minute))
	require.NoError(t, err)
	assert.False(t, active)

	assert.Equal(t, StateAdminMenu, env.engine.StateOf("100"))
	assert.Equal(t, []string{callbackPending, callbackExit}, buttonData(env.transport.last(t).keyboard))
}

func TestWrongAdminCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.engine.HandleUpdate(ctx, messageUpdate(100, "Alice", "anything"))
	env.engine.HandleUpdate(ctx, messageUpdate(100, "Alice", "not the code"))

	active, err := env.sessions.IsActive(ctx, "100", env.now)
	require.NoError(t, err)
	assert.False(t, active)

	assert.Equal(t, replyAdminWrongCode, env.transport.last(t).text)
	assert.Equal(t, StateIdle, env.engine.StateOf("100"))
}

func TestActiveAdminSkipsCodePrompt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.sessions.Grant(ctx, "100", "Alice", env.now, 30*time.Minute)
	require.NoError(t, err)

	env.engine.HandleUpdate(ctx, messageUpdate(100, "Alice", "hello"))

	assert.Equal(t, StateAdminMenu, env.engine.StateOf("100"))
	assert.Equal(t, replyAdminAlready, env.transport.last(t).text)
}

func TestApprovalFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Submitter leaves a claim.
	env.engine.HandleUpdate(ctx, messageUpdate(100, "Alice", "/start"))
	env.engine.HandleUpdate(ctx, callbackUpdate(100, callbackVerifyPromo, 1))
	env.engine.HandleUpdate(ctx, messageUpdate(100, "Alice", "PID-777"))

	// Admin logs in and opens the pending list.
	env.engine.HandleUpdate(ctx, messageUpdate(200, "Bob", "login"))
	env.engine.HandleUpdate(ctx, messageUpdate(200, "Bob", testAdminCode))
	env.engine.HandleUpdate(ctx, callbackUpdate(200, callbackPending, 2))

	listed := env.transport.last(t)
	assert.Contains(t, listed.text, "PID-777")
	assert.Equal(t, []string{callbackApprovePrefix + "100", callbackRejectPrefix + "100"}, buttonData(listed.keyboard))

	env.engine.HandleUpdate(ctx, callbackUpdate(200, callbackApprovePrefix+"100", 3))

	users, err := env.users.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, usermodels.StatusVerified, users["100"].Status)

	_, err = env.verifications.Peek(ctx, "100")
	assert.ErrorIs(t, err, verifservice.ErrNoSubmission)

	// The submitter was notified and the admin got an ack.
	var toSubmitter []string
	for _, m := range env.transport.messages {
		if m.chatID == 100 {
			toSubmitter = append(toSubmitter, m.text)
		}
	}
	assert.Contains(t, toSubmitter, replyUserApproved)
	assert.Equal(t, replyApproved, env.transport.last(t).text)
}

func TestExpiredSessionBlocksAdminActions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.engine.HandleUpdate(ctx, messageUpdate(200, "Bob", "login"))
	env.engine.HandleUpdate(ctx, messageUpdate(200, "Bob", testAdminCode))
	require.Equal(t, StateAdminMenu, env.engine.StateOf("200"))

	env.now = env.now.Add(31 * time.Minute)
	env.engine.HandleUpdate(ctx, callbackUpdate(200, callbackPending, 5))

	assert.Equal(t, replyAdminExpired, env.transport.last(t).text)
	assert.Equal(t, StateIdle, env.engine.StateOf("200"))
}

func TestExitAbandonsFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.engine.HandleUpdate(ctx, messageUpdate(100, "Alice", "/start"))
	env.engine.HandleUpdate(ctx, callbackUpdate(100, callbackVerifyPromo, 1))
	require.Equal(t, StateAwaitingPlayerID, env.engine.StateOf("100"))

	env.engine.HandleUpdate(ctx, messageUpdate(100, "Alice", "/exit"))
	assert.Equal(t, StateIdle, env.engine.StateOf("100"))

	// The abandoned flow left no submission behind.
	_, err := env.verifications.Peek(context.Background(), "100")
	assert.ErrorIs(t, err, verifservice.ErrNoSubmission)
}

func TestUnhandledCallbackIsTerminalNoOp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	before := len(env.transport.messages)
	env.engine.HandleUpdate(ctx, callbackUpdate(100, "mystery_button", 9))

	assert.Equal(t, StateIdle, env.engine.StateOf("100"))
	assert.Len(t, env.transport.messages, before)
	assert.NotEmpty(t, env.transport.answered)
}
