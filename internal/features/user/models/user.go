package models

import "time"

// Status is a user's onboarding state.
type Status string

const (
	StatusNew                 Status = "new"
	StatusPendingVerification Status = "pending_verification"
	StatusVerified            Status = "verified"
)

// User is one registered community member, keyed in the store by the
// platform user id. Records are never deleted.
type User struct {
	Name       string    `json:"name"`
	JoinedDate time.Time `json:"joined_date"`
	Status     Status    `json:"status"`
}
