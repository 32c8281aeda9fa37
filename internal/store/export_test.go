package store

import "github.com/dgraph-io/badger/v4"

// Test hooks for exercising corrupt-value recovery without going through
// the typed setters.

// SetRaw writes arbitrary bytes under a key.
func (s *Store) SetRaw(key string, val []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
}

// GetRaw reads the stored bytes under a key.
func (s *Store) GetRaw(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

// Namespace constants exposed for tests.
const (
	TestFavoritesKey    = favoritesKey
	TestStartsKey       = startsKey
	TestMarkersPrefix   = markersPrefix
	TestNotesPrefix     = notesPrefix
	TestLastListenedKey = lastListenedKey
	TestPrefRateKey     = prefRateKey
	TestPrefVolumeKey   = prefVolumeKey
	TestPrefThemeKey    = prefThemeKey
)
