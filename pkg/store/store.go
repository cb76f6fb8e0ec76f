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

// Package store defines the window state store: per-window accumulator values
// keyed by (key, window start), physically laid out in rolling time segments so
// old state can be reclaimed in bulk. The segment planner only advises which
// segments have aged out of retention; the store performs the reclamation and
// must stay safe under concurrent reads.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("window store is closed")

// WindowStore holds one accumulator value per (key, window start) pair.
type WindowStore interface {
	// Put stores the accumulator value of the key for the window starting at
	// windowStart (Unix milliseconds).
	Put(ctx context.Context, key string, windowStart int64, value []byte) error
	// Get returns the accumulator value of the key for the window starting at
	// windowStart. The second return value reports whether a value exists.
	Get(ctx context.Context, key string, windowStart int64) ([]byte, bool, error)
	// Fetch calls fn for every stored value of the key whose window start lies
	// in [from, to], in ascending window-start order.
	Fetch(ctx context.Context, key string, from, to time.Time, fn func(windowStart int64, value []byte) error) error
	// DropExpired reclaims every segment the planner reports expired at the
	// given stream-time and returns the number of segments dropped.
	DropExpired(ctx context.Context, streamTime time.Time) (int, error)
	// Close releases the resources held by the store.
	Close() error
}
