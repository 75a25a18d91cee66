package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"time"

	"community-bot-backend/internal/features/admin/models"
	"community-bot-backend/internal/platform/storage"
)

// DefaultSessionDuration is the elevated-access window granted per code entry.
const DefaultSessionDuration = 30 * time.Minute

// CodeResult is the outcome of an access-code attempt.
type CodeResult int

const (
	CodeAccepted CodeResult = iota
	CodeRejected
	CodeThrottled
)

type SessionService interface {
	// IsActive reports whether userID holds an unexpired session at now.
	IsActive(ctx context.Context, userID string, now time.Time) (bool, error)
	// Grant issues a session ending at now+duration, unconditionally
	// replacing any prior session for the user.
	Grant(ctx context.Context, userID, displayName string, now time.Time, duration time.Duration) (*models.AdminSession, error)
	// VerifyCode checks the supplied code in constant time. Attempts are
	// rate limited per user; once the budget is spent the attempt is
	// rejected as throttled without touching the secret comparison.
	VerifyCode(userID, supplied string) CodeResult
}

type sessionService struct {
	store    storage.Store
	code     string
	attempts *attemptLimiter
}

func NewSessionService(store storage.Store, accessCode string) SessionService {
	return &sessionService{
		store:    store,
		code:     accessCode,
		attempts: newAttemptLimiter(),
	}
}

func (s *sessionService) IsActive(ctx context.Context, userID string, now time.Time) (bool, error) {
	records, err := s.store.Load(ctx, storage.CollectionAdmins)
	if err != nil {
		return false, err
	}

	raw, ok := records[userID]
	if !ok {
		return false, nil
	}

	var session models.AdminSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return false, err
	}
	return session.ActiveAt(now), nil
}

func (s *sessionService) Grant(ctx context.Context, userID, displayName string, now time.Time, duration time.Duration) (*models.AdminSession, error) {
	records, err := s.store.Load(ctx, storage.CollectionAdmins)
	if err != nil {
		return nil, err
	}

	session := &models.AdminSession{
		Username:   displayName,
		SessionEnd: now.Add(duration).Unix(),
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return nil, err
	}
	records[userID] = raw

	if err := s.store.Save(ctx, storage.CollectionAdmins, records); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionService) VerifyCode(userID, supplied string) CodeResult {
	if !s.attempts.allow(userID) {
		return CodeThrottled
	}
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(s.code)) == 1 {
		s.attempts.reset(userID)
		return CodeAccepted
	}
	return CodeRejected
}
