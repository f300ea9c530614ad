package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ledger/internal/backup"
	"ledger/internal/core"
	"ledger/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the snapshot in a single-row-per-key SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	key    string
	logger *log.Logger
}

func NewSQLiteStore(dbPath string, logger *log.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serializes writers; SQLite allows one at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{
		db:     db,
		key:    SnapshotKey,
		logger: logger.WithComponent(log.ComponentStorage),
	}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (core.Snapshot, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE key = ?`, s.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Snapshot{}, false, nil
	}
	if err != nil {
		return core.Snapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}

	snap, report, err := backup.Decode(data)
	if err != nil {
		return core.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	if report.TypeMismatches > 0 {
		s.logger.WarnContext(ctx, "Stored type labels disagree with amount signs",
			log.FieldCount, report.TypeMismatches)
	}

	s.logger.DebugContext(ctx, "Snapshot loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldCount, len(snap.Transactions))
	return snap, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap core.Snapshot) error {
	data, err := backup.Encode(snap)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		s.key, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	s.logger.DebugContext(ctx, "Snapshot saved",
		log.FieldOperation, log.OpSave,
		log.FieldCount, len(snap.Transactions))
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
