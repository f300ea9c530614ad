// Package storage persists ledger snapshots as a single encoded blob under a
// fixed key. Every save overwrites the previous snapshot.
package storage

import (
	"context"

	"ledger/internal/core"
)

// SnapshotKey is the key the ledger snapshot is stored under.
const SnapshotKey = "expense-tracker-data"

// Store loads and saves whole ledger snapshots.
type Store interface {
	// Load returns the stored snapshot. ok is false when nothing was saved yet.
	Load(ctx context.Context) (snap core.Snapshot, ok bool, err error)
	// Save overwrites the stored snapshot.
	Save(ctx context.Context, snap core.Snapshot) error
	Close() error
}
