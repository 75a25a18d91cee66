package storage

import (
	"context"
	"encoding/json"
)

// MemoryStore is an in-memory Store used in tests and safe for the bot's
// single event loop. Save copies the map so callers can keep mutating theirs.
type MemoryStore struct {
	collections map[string]map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: map[string]map[string]json.RawMessage{}}
}

func (s *MemoryStore) Load(_ context.Context, collection string) (map[string]json.RawMessage, error) {
	records := make(map[string]json.RawMessage, len(s.collections[collection]))
	for k, v := range s.collections[collection] {
		records[k] = v
	}
	return records, nil
}

func (s *MemoryStore) Save(_ context.Context, collection string, records map[string]json.RawMessage) error {
	copied := make(map[string]json.RawMessage, len(records))
	for k, v := range records {
		copied[k] = v
	}
	s.collections[collection] = copied
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
