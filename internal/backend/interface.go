package backend

import (
	"context"

	"ledger/internal/amqp"
	"ledger/internal/storage"
)

// Factory creates the persistence backend and the optional change notifier
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Result is a ready-to-use backend. Notifier is nil when AMQP is disabled
// or unreachable. Cleanup releases everything and is never nil.
type Result struct {
	Store    storage.Store
	Notifier *amqp.Client
	Cleanup  func()
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
