// Command dbinspect dumps the listening-state keyspace for debugging.
package main

import (
	json "github.com/go-json-experiment/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/sadhanaapp/sadhana-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/.sadhana/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Listening State Inspection ===")
	fmt.Println()

	err = db.View(func(txn *badger.Txn) error {
		// Stored as a sorted array of item keys.
		var favorites []string
		if readJSON(txn, "favorites", &favorites) {
			fmt.Printf("Favorites: %d\n", len(favorites))
			for _, key := range favorites {
				fmt.Printf("  %s\n", key)
			}
			fmt.Println()
		}

		var starts map[string]float64
		if readJSON(txn, "starts", &starts) {
			fmt.Printf("Custom starts: %d\n", len(starts))
			for key, seconds := range starts {
				fmt.Printf("  %s -> %.1fs\n", key, seconds)
			}
			fmt.Println()
		}

		var last domain.LastListened
		if readJSON(txn, "last", &last) {
			fmt.Printf("Last listened: %s at %.1fs (%s)\n\n", last.Key, last.Time, last.Meta.Title)
		}

		dumpAnnotations(txn, "markers_v1:", func(val []byte) (int, error) {
			var markers []domain.Marker
			err := json.Unmarshal(val, &markers)
			return len(markers), err
		})
		dumpAnnotations(txn, "notes_v1:", func(val []byte) (int, error) {
			var notes []domain.Note
			err := json.Unmarshal(val, &notes)
			return len(notes), err
		})

		fmt.Println("Preferences:")
		for _, key := range []string{"pref:rate", "pref:volume", "pref:theme"} {
			item, err := txn.Get([]byte(key))
			if err != nil {
				continue
			}
			_ = item.Value(func(val []byte) error {
				fmt.Printf("  %s = %s\n", key, val)
				return nil
			})
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}
}

// readJSON loads a single key into dest, reporting whether it existed.
func readJSON(txn *badger.Txn, key string, dest any) bool {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return false
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
	if err != nil {
		log.Printf("Corrupt value at %s: %v", key, err)
		return false
	}
	return true
}

// dumpAnnotations counts the entries stored under each key in a prefix.
func dumpAnnotations(txn *badger.Txn, prefix string, count func([]byte) (int, error)) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	total := 0
	items := 0
	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		item := it.Item()
		key := strings.TrimPrefix(string(item.Key()), prefix)
		err := item.Value(func(val []byte) error {
			n, err := count(val)
			if err != nil {
				return err
			}
			fmt.Printf("  %s: %d\n", key, n)
			total += n
			items++
			return nil
		})
		if err != nil {
			log.Printf("Corrupt value under %s%s: %v", prefix, key, err)
		}
	}
	fmt.Printf("%s %d entries across %d items\n\n", strings.TrimSuffix(prefix, "_v1:"), total, items)
}
