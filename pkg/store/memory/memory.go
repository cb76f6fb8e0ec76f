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

// Package memory provides an in-memory WindowStore, mainly for tests and
// single-process pipelines that can afford to lose state on restart. State is
// held per segment so expiry drops whole segments at once, the same layout the
// persistent backend uses.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/numaproj/windower/pkg/store"
	"github.com/numaproj/windower/pkg/window/segment"
)

type entryKey struct {
	windowStart int64
	key         string
}

// Store is an in-memory segmented window store.
type Store struct {
	planner  segment.Planner
	lock     sync.RWMutex
	segments map[int64]map[entryKey][]byte
	closed   bool
}

var _ store.WindowStore = (*Store)(nil)

// NewStore returns an empty in-memory store segmented per the planner.
func NewStore(planner segment.Planner) *Store {
	return &Store{
		planner:  planner,
		segments: make(map[int64]map[entryKey][]byte),
	}
}

func (s *Store) Put(_ context.Context, key string, windowStart int64, value []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return store.ErrClosed
	}

	segmentID := s.planner.IDFor(time.UnixMilli(windowStart))
	seg, ok := s.segments[segmentID]
	if !ok {
		seg = make(map[entryKey][]byte)
		s.segments[segmentID] = seg
	}
	seg[entryKey{windowStart: windowStart, key: key}] = value
	return nil
}

func (s *Store) Get(_ context.Context, key string, windowStart int64) ([]byte, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.closed {
		return nil, false, store.ErrClosed
	}

	segmentID := s.planner.IDFor(time.UnixMilli(windowStart))
	seg, ok := s.segments[segmentID]
	if !ok {
		return nil, false, nil
	}
	value, ok := seg[entryKey{windowStart: windowStart, key: key}]
	return value, ok, nil
}

func (s *Store) Fetch(_ context.Context, key string, from, to time.Time, fn func(windowStart int64, value []byte) error) error {
	s.lock.RLock()
	if s.closed {
		s.lock.RUnlock()
		return store.ErrClosed
	}

	type hit struct {
		windowStart int64
		value       []byte
	}
	var hits []hit
	for _, seg := range s.segments {
		for ek, value := range seg {
			if ek.key != key {
				continue
			}
			if ek.windowStart < from.UnixMilli() || ek.windowStart > to.UnixMilli() {
				continue
			}
			hits = append(hits, hit{windowStart: ek.windowStart, value: value})
		}
	}
	s.lock.RUnlock()

	sort.Slice(hits, func(i, j int) bool { return hits[i].windowStart < hits[j].windowStart })
	for _, h := range hits {
		if err := fn(h.windowStart, h.value); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DropExpired(_ context.Context, streamTime time.Time) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed {
		return 0, store.ErrClosed
	}

	dropped := 0
	for segmentID := range s.segments {
		if s.planner.IsExpired(segmentID, streamTime) {
			delete(s.segments, segmentID)
			dropped++
		}
	}
	return dropped, nil
}

func (s *Store) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.closed = true
	s.segments = nil
	return nil
}
