// Package store persists all listening state in a local Badger keyspace.
//
// Each concern lives in its own namespace and is read and written as a
// whole value: favorites, custom starts, per-item markers and notes, the
// single last-listened record, and the scalar preferences. Namespaces are
// isolated - a corrupt value in one never affects another; reads fall back
// to the namespace default and writes log failures without surfacing them,
// so a full disk degrades to losing that one update, not to a crash.
//
// Namespace strings must stay stable across releases or persisted user
// data is silently discarded; the markers/notes namespaces carry a version
// suffix as the migration mechanism.
package store

import (
	"context"
	"errors"
	"fmt"
	json "github.com/go-json-experiment/json"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Keyspace namespaces. Stable across releases.
const (
	favoritesKey    = "favorites"
	startsKey       = "starts"
	markersPrefix   = "markers_v1:"
	notesPrefix     = "notes_v1:"
	lastListenedKey = "last"
	prefRateKey     = "pref:rate"
	prefVolumeKey   = "pref:volume"
	prefThemeKey    = "pref:theme"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens the Badger keyspace at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Ping verifies the keyspace is readable. A missing key is healthy; any
// other error is not.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("ping"))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// getJSON loads a value into dest. Returns false when the key is absent or
// the stored bytes do not parse; the caller keeps its default value either
// way. Corruption is logged and contained to this one namespace.
func (s *Store) getJSON(key string, dest any) bool {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append(raw, val...)
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false
	}
	if err != nil {
		s.warn("storage read failed", key, err)
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		s.warn("stored value corrupt, using default", key, err)
		return false
	}
	return true
}

// setJSON serializes and writes a value as a full overwrite of its key.
// Failures are logged, never returned: persistence degrades to in-memory
// operation and the update for that action is lost.
func (s *Store) setJSON(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.warn("storage marshal failed", key, err)
		return
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		s.warn("storage write failed", key, err)
	}
}

// deleteKey removes a key; failures are logged and swallowed like setJSON.
func (s *Store) deleteKey(key string) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		s.warn("storage delete failed", key, err)
	}
}

func (s *Store) warn(msg, key string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, "key", key, "error", err)
	}
}
