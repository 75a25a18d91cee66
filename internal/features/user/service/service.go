package service

import (
	"context"
	"encoding/json"
	"time"

	"community-bot-backend/internal/features/user/models"
	"community-bot-backend/internal/platform/storage"
)

type RegistryService interface {
	// EnsureRegistered returns the existing user for id, or creates one with
	// status "new". The bool reports whether the user was just created.
	EnsureRegistered(ctx context.Context, userID, displayName string) (*models.User, bool, error)
	// MarkPending and MarkVerified are silent no-ops for unknown ids; every
	// caller registers the user first, so an unknown id is a caller bug.
	MarkPending(ctx context.Context, userID string) error
	MarkVerified(ctx context.Context, userID string) error
	List(ctx context.Context) (map[string]*models.User, error)
}

type registryService struct {
	store storage.Store
	now   func() time.Time
}

func NewRegistryService(store storage.Store) RegistryService {
	return &registryService{
		store: store,
		now:   time.Now,
	}
}

func (s *registryService) EnsureRegistered(ctx context.Context, userID, displayName string) (*models.User, bool, error) {
	records, err := s.store.Load(ctx, storage.CollectionUsers)
	if err != nil {
		return nil, false, err
	}

	if raw, ok := records[userID]; ok {
		var user models.User
		if err := json.Unmarshal(raw, &user); err != nil {
			return nil, false, err
		}
		return &user, false, nil
	}

	user := &models.User{
		Name:       displayName,
		JoinedDate: s.now(),
		Status:     models.StatusNew,
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, false, err
	}
	records[userID] = raw

	if err := s.store.Save(ctx, storage.CollectionUsers, records); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *registryService) MarkPending(ctx context.Context, userID string) error {
	return s.setStatus(ctx, userID, models.StatusPendingVerification)
}

func (s *registryService) MarkVerified(ctx context.Context, userID string) error {
	return s.setStatus(ctx, userID, models.StatusVerified)
}

func (s *registryService) setStatus(ctx context.Context, userID string, status models.Status) error {
	records, err := s.store.Load(ctx, storage.CollectionUsers)
	if err != nil {
		return err
	}

	raw, ok := records[userID]
	if !ok {
		return nil
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return err
	}
	user.Status = status

	updated, err := json.Marshal(&user)
	if err != nil {
		return err
	}
	records[userID] = updated

	return s.store.Save(ctx, storage.CollectionUsers, records)
}

func (s *registryService) List(ctx context.Context) (map[string]*models.User, error) {
	records, err := s.store.Load(ctx, storage.CollectionUsers)
	if err != nil {
		return nil, err
	}

	users := make(map[string]*models.User, len(records))
	for id, raw := range records {
		var user models.User
		if err := json.Unmarshal(raw, &user); err != nil {
			return nil, err
		}
		users[id] = &user
	}
	return users, nil
}
