package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"community-bot-backend/internal/common/logger"
	"community-bot-backend/internal/features/broadcast/models"
	userservice "community-bot-backend/internal/features/user/service"
	"community-bot-backend/internal/platform/storage"
	"community-bot-backend/internal/platform/telegram"
)

// Sender is the outbound side of the chat transport.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) (*telegram.Message, error)
}

// Window is the operating-hours window for outbound broadcasts. An EndHour
// of 0 means midnight and is treated as end of day.
type Window struct {
	StartHour int
	EndHour   int
}

// Contains reports whether the instant falls inside the window.
func (w Window) Contains(now time.Time) bool {
	end := w.EndHour
	if end == 0 {
		end = 24
	}
	h := now.Hour()
	if w.StartHour <= end {
		return h >= w.StartHour && h < end
	}
	// Window wraps past midnight.
	return h >= w.StartHour || h < end
}

// BroadcastService schedules daily messages and delivers due ones to every
// registered user from a background worker.
type BroadcastService struct {
	store  storage.Store
	users  userservice.RegistryService
	sender Sender
	window Window
	now    func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewBroadcastService(store storage.Store, users userservice.RegistryService, sender Sender, window Window) *BroadcastService {
	return &BroadcastService{
		store:  store,
		users:  users,
		sender: sender,
		window: window,
		now:    time.Now,
	}
}

// Schedule registers a daily broadcast at the given hour and returns its id.
func (s *BroadcastService) Schedule(ctx context.Context, text string, hour int) (string, error) {
	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid broadcast hour: %d", hour)
	}

	records, err := s.store.Load(ctx, storage.CollectionBroadcasts)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	raw, err := json.Marshal(&models.Broadcast{Text: text, Hour: hour})
	if err != nil {
		return "", err
	}
	records[id] = raw

	if err := s.store.Save(ctx, storage.CollectionBroadcasts, records); err != nil {
		return "", err
	}
	return id, nil
}

// Start launches the delivery worker ticking at the given interval.
func (s *BroadcastService) Start(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.deliverDue(ctx); err != nil {
					logger.Error().Err(err).Msg("Broadcast delivery failed")
				}
			}
		}
	}()
}

// Stop terminates the worker and waits for in-flight delivery to finish.
func (s *BroadcastService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *BroadcastService) deliverDue(ctx context.Context) error {
	now := s.now()
	if !s.window.Contains(now) {
		return nil
	}

	records, err := s.store.Load(ctx, storage.CollectionBroadcasts)
	if err != nil {
		return err
	}

	today := now.Format("2006-01-02")
	dirty := false

	for id, raw := range records {
		var b models.Broadcast
		if err := json.Unmarshal(raw, &b); err != nil {
			logger.Warn().Str("broadcast_id", id).Err(err).Msg("Skipping malformed broadcast")
			continue
		}
		if b.Hour != now.Hour() || b.LastSentDate == today {
			continue
		}

		s.deliver(ctx, id, b.Text)

		b.LastSentDate = today
		updated, err := json.Marshal(&b)
		if err != nil {
			return err
		}
		records[id] = updated
		dirty = true
	}

	if !dirty {
		return nil
	}
	return s.store.Save(ctx, storage.CollectionBroadcasts, records)
}

func (s *BroadcastService) deliver(ctx context.Context, id, text string) {
	users, err := s.users.List(ctx)
	if err != nil {
		logger.Error().Str("broadcast_id", id).Err(err).Msg("Failed to list recipients")
		return
	}

	sent := 0
	for userID := range users {
		chatID, err := strconv.ParseInt(userID, 10, 64)
		if err != nil {
			logger.Warn().Str("user_id", userID).Msg("Skipping non-numeric user id")
			continue
		}
		if _, err := s.sender.SendMessage(ctx, chatID, text, nil); err != nil {
			logger.Warn().Int64("chat_id", chatID).Err(err).Msg("Broadcast send failed")
			continue
		}
		sent++
	}

	logger.Info().Str("broadcast_id", id).Int("recipients", sent).Msg("Broadcast delivered")
}
