package storage

import (
	"context"
	"encoding/json"
)

// Store is a named-collection key/value store. A collection maps string keys
// to JSON records. Load of a collection that does not exist yet returns an
// empty map, never an error. Save overwrites the whole collection; there is
// no partial update and no transaction across collections.
type Store interface {
	Load(ctx context.Context, collection string) (map[string]json.RawMessage, error)
	Save(ctx context.Context, collection string, records map[string]json.RawMessage) error
	Ping(ctx context.Context) error
}

// Collection names used by the services.
const (
	CollectionUsers         = "users"
	CollectionVerifications = "pending_verifications"
	CollectionAdmins        = "admins"
	CollectionBroadcasts    = "messages_programmes"
)
