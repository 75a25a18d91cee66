package models

import "time"

// AdminSession is a time-bounded elevated-access grant, keyed in the store
// by user id. Expired sessions are never purged, only evaluated lazily.
type AdminSession struct {
	Username   string `json:"username"`
	SessionEnd int64  `json:"session_end"`
}

// ActiveAt reports whether the session is still valid at the given instant.
func (s *AdminSession) ActiveAt(now time.Time) bool {
	return now.Unix() < s.SessionEnd
}
