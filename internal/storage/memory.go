package storage

import (
	"context"
	"sync"

	"ledger/internal/backup"
	"ledger/internal/core"
)

// MemoryStore keeps the encoded snapshot in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (core.Snapshot, bool, error) {
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()

	if data == nil {
		return core.Snapshot{}, false, nil
	}
	snap, _, err := backup.Decode(data)
	if err != nil {
		return core.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (s *MemoryStore) Save(ctx context.Context, snap core.Snapshot) error {
	data, err := backup.Encode(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Raw returns the stored blob, nil when empty.
func (s *MemoryStore) Raw() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.data...)
}

// SetRaw replaces the stored blob without validation.
func (s *MemoryStore) SetRaw(data []byte) {
	s.mu.Lock()
	s.data = append([]byte(nil), data...)
	s.mu.Unlock()
}

func (s *MemoryStore) Close() error {
	return nil
}
