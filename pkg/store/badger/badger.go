/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package badger provides a WindowStore persisted in BadgerDB. Keys are laid
// out as prefix, segment id, window start, record key, all fixed width and
// big-endian, so one segment is one contiguous key range and expiry is a prefix
// delete.
package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/numaproj/windower/pkg/store"
	"github.com/numaproj/windower/pkg/window/segment"
)

var keyPrefix = []byte("w/")

// segment id and window start, 8 bytes each, after the prefix
const fixedKeyLen = 2 + 8 + 8

// Config holds the BadgerDB configuration.
type Config struct {
	// Path to store the database files.
	Path string
	// InMemory runs BadgerDB without files, for tests.
	InMemory bool
}

// Store is a BadgerDB backed segmented window store.
type Store struct {
	db      *badger.DB
	planner segment.Planner
}

var _ store.WindowStore = (*Store)(nil)

// NewStore opens a BadgerDB backed store segmented per the planner.
func NewStore(cfg Config, planner segment.Planner) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithNumVersionsToKeep(1).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", cfg.Path, err)
	}
	return &Store{db: db, planner: planner}, nil
}

func (s *Store) makeKey(key string, windowStart int64) []byte {
	buf := make([]byte, 0, fixedKeyLen+len(key))
	buf = append(buf, keyPrefix...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(s.planner.IDFor(time.UnixMilli(windowStart))))
	buf = binary.BigEndian.AppendUint64(buf, uint64(windowStart))
	return append(buf, key...)
}

func segmentPrefix(segmentID int64) []byte {
	buf := make([]byte, 0, 2+8)
	buf = append(buf, keyPrefix...)
	return binary.BigEndian.AppendUint64(buf, uint64(segmentID))
}

func parseKey(raw []byte) (segmentID, windowStart int64, key string, ok bool) {
	if len(raw) < fixedKeyLen {
		return 0, 0, "", false
	}
	segmentID = int64(binary.BigEndian.Uint64(raw[2:10]))
	windowStart = int64(binary.BigEndian.Uint64(raw[10:18]))
	return segmentID, windowStart, string(raw[18:]), true
}

func (s *Store) Put(ctx context.Context, key string, windowStart int64, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.makeKey(key, windowStart), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write window state: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string, windowStart int64) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.makeKey(key, windowStart))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read window state: %w", err)
	}
	return value, true, nil
}

func (s *Store) Fetch(ctx context.Context, key string, from, to time.Time, fn func(windowStart int64, value []byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// the key layout orders entries by segment then window start, so scanning
	// the segment range covering [from, to] visits the starts in order.
	return s.db.View(func(txn *badger.Txn) error {
		firstSegment := s.planner.IDFor(from)
		lastSegment := s.planner.IDFor(to)
		for segmentID := firstSegment; segmentID <= lastSegment; segmentID++ {
			prefix := segmentPrefix(segmentID)
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			it := txn.NewIterator(opts)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				item := it.Item()
				_, windowStart, entryKeyName, ok := parseKey(item.Key())
				if !ok || entryKeyName != key {
					continue
				}
				if windowStart < from.UnixMilli() || windowStart > to.UnixMilli() {
					continue
				}
				value, err := item.ValueCopy(nil)
				if err != nil {
					it.Close()
					return err
				}
				if err := fn(windowStart, value); err != nil {
					it.Close()
					return err
				}
			}
			it.Close()
		}
		return nil
	})
}

func (s *Store) DropExpired(ctx context.Context, streamTime time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// collect the expired segments with a keys-only scan first; deletes happen
	// in a separate transaction per segment to keep transactions small.
	expired := make(map[int64]struct{})
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyPrefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(keyPrefix); it.ValidForPrefix(keyPrefix); it.Next() {
			if segmentID, _, _, ok := parseKey(it.Item().Key()); ok && s.planner.IsExpired(segmentID, streamTime) {
				expired[segmentID] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan for expired segments: %w", err)
	}

	for segmentID := range expired {
		prefix := segmentPrefix(segmentID)
		err := s.db.Update(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false
			it := txn.NewIterator(opts)
			defer it.Close()
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("failed to drop segment %d: %w", segmentID, err)
		}
	}
	return len(expired), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
