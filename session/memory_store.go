package session

import (
	"context"
	"sync"
)

// MemoryStore is a process-local [Store]. Profiles go through the same encoder as the durable
// backends so behavior on corrupt or legacy data matches. The zero value is an empty store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) get(entry string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[entry]
}

func (s *MemoryStore) put(entry string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(value) == 0 {
		delete(s.entries, entry)
		return
	}
	if s.entries == nil {
		s.entries = make(map[string][]byte)
	}
	s.entries[entry] = append([]byte(nil), value...)
}

func (s *MemoryStore) AccessToken(context.Context) (string, error) {
	return string(s.get("access")), nil
}

func (s *MemoryStore) SetAccessToken(_ context.Context, token string) error {
	s.put("access", []byte(token))
	return nil
}

func (s *MemoryStore) RefreshToken(context.Context) (string, error) {
	return string(s.get("refresh")), nil
}

func (s *MemoryStore) SetRefreshToken(_ context.Context, token string) error {
	s.put("refresh", []byte(token))
	return nil
}

func (s *MemoryStore) User(context.Context) (*UserProfile, error) {
	v := s.get("user")
	if v == nil {
		return nil, nil
	}
	return DecodeUser(v)
}

func (s *MemoryStore) SetUser(_ context.Context, u *UserProfile) error {
	if u == nil {
		s.put("user", nil)
		return nil
	}
	data, err := EncodeUser(u)
	if err != nil {
		return err
	}
	s.put("user", data)
	return nil
}

// SetRaw writes an entry verbatim, bypassing the profile encoder. Used to seed legacy or
// corrupt data.
func (s *MemoryStore) SetRaw(entry string, value []byte) {
	s.put(entry, value)
}

// Raw returns an entry verbatim.
func (s *MemoryStore) Raw(entry string) []byte {
	return append([]byte(nil), s.get(entry)...)
}
