package models

import "time"

// PendingVerification is one outstanding promo-code claim, keyed in the
// store by the submitting user's id. A resubmission replaces the prior entry.
type PendingVerification struct {
	PlayerID    string    `json:"player_id"`
	Username    string    `json:"username"`
	SubmittedAt time.Time `json:"submitted_at"`
}
