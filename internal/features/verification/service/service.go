package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"community-bot-backend/internal/features/verification/models"
	"community-bot-backend/internal/platform/storage"
)

var ErrNoSubmission = errors.New("no pending submission")

type QueueService interface {
	// Submit records a claim for userID, replacing any prior entry.
	Submit(ctx context.Context, userID, playerID, submitterName string) (*models.PendingVerification, error)
	// Peek returns the pending entry for userID or ErrNoSubmission.
	Peek(ctx context.Context, userID string) (*models.PendingVerification, error)
	// Remove drops the pending entry for userID; removing an absent entry is
	// not an error.
	Remove(ctx context.Context, userID string) error
	List(ctx context.Context) (map[string]*models.PendingVerification, error)
}

type queueService struct {
	store storage.Store
	now   func() time.Time
}

func NewQueueService(store storage.Store) QueueService {
	return &queueService{
		store: store,
		now:   time.Now,
	}
}

func (s *queueService) Submit(ctx context.Context, userID, playerID, submitterName string) (*models.PendingVerification, error) {
	records, err := s.store.Load(ctx, storage.CollectionVerifications)
	if err != nil {
		return nil, err
	}

	entry := &models.PendingVerification{
		PlayerID:    playerID,
		Username:    submitterName,
		SubmittedAt: s.now(),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	records[userID] = raw

	if err := s.store.Save(ctx, storage.CollectionVerifications, records); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *queueService) Peek(ctx context.Context, userID string) (*models.PendingVerification, error) {
	records, err := s.store.Load(ctx, storage.CollectionVerifications)
	if err != nil {
		return nil, err
	}

	raw, ok := records[userID]
	if !ok {
		return nil, ErrNoSubmission
	}

	var entry models.PendingVerification
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *queueService) Remove(ctx context.Context, userID string) error {
	records, err := s.store.Load(ctx, storage.CollectionVerifications)
	if err != nil {
		return err
	}

	if _, ok := records[userID]; !ok {
		return nil
	}
	delete(records, userID)

	return s.store.Save(ctx, storage.CollectionVerifications, records)
}

func (s *queueService) List(ctx context.Context) (map[string]*models.PendingVerification, error) {
	records, err := s.store.Load(ctx, storage.CollectionVerifications)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]*models.PendingVerification, len(records))
	for id, raw := range records {
		var entry models.PendingVerification
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, err
		}
		entries[id] = &entry
	}
	return entries, nil
}
