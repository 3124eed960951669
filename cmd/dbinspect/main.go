// Package main provides a read-only inspection tool for the record store.
//
// Usage:
//
//	STORE_PATH=~/Thumblify/metadata/store go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/thumblifyapp/thumblify-server/internal/domain"
)

func main() {
	storePath := os.Getenv("STORE_PATH")
	if storePath == "" {
		storePath = os.ExpandEnv("$HOME/Thumblify/metadata/store")
	}

	opts := badger.DefaultOptions(storePath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Record Store Inspection ===")
	fmt.Println()

	counts := map[string]int{}
	statuses := map[domain.ThumbnailStatus]int{}
	var thumbs []*domain.Thumbnail

	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())

			prefix, _, found := strings.Cut(key, ":")
			if !found {
				prefix = "(unprefixed)"
			}
			counts[prefix+":"]++

			if !strings.HasPrefix(key, "thumb:") {
				continue
			}
			if err := item.Value(func(val []byte) error {
				var t domain.Thumbnail
				if err := json.Unmarshal(val, &t); err != nil {
					return err
				}
				statuses[t.Status]++
				thumbs = append(thumbs, &t)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}

	fmt.Println("Keys by prefix:")
	for prefix, n := range counts {
		fmt.Printf("  %-20s %d\n", prefix, n)
	}

	fmt.Println()
	fmt.Println("Thumbnails by status:")
	for status, n := range statuses {
		fmt.Printf("  %-12s %d\n", status, n)
	}

	if len(thumbs) > 0 {
		fmt.Println()
		fmt.Println("Most recent thumbnails:")
		shown := 0
		for i := len(thumbs) - 1; i >= 0 && shown < 10; i-- {
			t := thumbs[i]
			fmt.Printf("  %s  %-10s  owner=%s  %q\n", t.ID, t.Status, t.OwnerID, t.Title)
			shown++
		}
	}
}
