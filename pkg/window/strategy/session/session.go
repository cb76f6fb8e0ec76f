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

// Package session implements session windows, an unaligned windowing strategy
// where window boundaries are decided per key by gaps of inactivity: an event
// either falls into an existing session of its key, extends that session, or
// opens a new one. Sessions close once the watermark passes their end plus the
// grace period.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/numaproj/windower/pkg/window"
)

const delimiter = ":"

// Operation describes what an event did to its session window.
type Operation int

const (
	// Create means the event opened a new session.
	Create Operation = iota
	// Append means the event fell inside an existing session without moving its end.
	Append
	// Expand means the event extended the end of an existing session.
	Expand
	// Merge means extending a session made it overlap the next one and the two
	// were coalesced.
	Merge
)

func (o Operation) String() string {
	switch o {
	case Create:
		return "Create"
	case Append:
		return "Append"
	case Expand:
		return "Expand"
	case Merge:
		return "Merge"
	default:
		return "Unknown"
	}
}

// Window is a session window for one key set.
type Window struct {
	startTime time.Time
	endTime   time.Time
	keys      []string
}

var _ window.TimedWindow = (*Window)(nil)

// NewWindow opens a session starting at the given event time and ending one gap
// later.
func NewWindow(eventTime time.Time, gap time.Duration, keys []string) *Window {
	return &Window{
		startTime: eventTime,
		endTime:   eventTime.Add(gap),
		keys:      keys,
	}
}

func (w *Window) StartTime() time.Time {
	return w.startTime
}

func (w *Window) EndTime() time.Time {
	return w.endTime
}

// Keys returns the keys the session belongs to.
func (w *Window) Keys() []string {
	return w.keys
}

// Expand moves the session end forward. It never shrinks the session.
func (w *Window) Expand(endTime time.Time) {
	if endTime.After(w.endTime) {
		w.endTime = endTime
	}
}

// Merge absorbs another session of the same key into this one.
func (w *Window) Merge(other *Window) {
	if other.startTime.Before(w.startTime) {
		w.startTime = other.startTime
	}
	if other.endTime.After(w.endTime) {
		w.endTime = other.endTime
	}
}

func (w *Window) String() string {
	return fmt.Sprintf("[%d,%d):%s", w.startTime.UnixMilli(), w.endTime.UnixMilli(), strings.Join(w.keys, delimiter))
}

// Windower assigns events to per-key session windows and closes them by
// watermark. Unlike the aligned strategies it is keyed: every key set tracks its
// own list of sessions.
type Windower struct {
	gap   time.Duration
	grace time.Duration
	lock  sync.Mutex
	// entries maps the combined key to the sessions of that key, earliest first.
	entries map[string]*window.SortedWindowList[*Window]
}

// NewWindower returns a session Windower with the given inactivity gap and
// grace period. It fails with window.ErrInvalidConfiguration for a non-positive
// gap or a negative grace.
func NewWindower(gap, grace time.Duration) (*Windower, error) {
	if gap <= 0 {
		return nil, fmt.Errorf("%w: session gap %v must be positive", window.ErrInvalidConfiguration, gap)
	}
	if grace < 0 {
		return nil, fmt.Errorf("%w: grace period %v must not be negative", window.ErrInvalidConfiguration, grace)
	}
	return &Windower{
		gap:     gap,
		grace:   grace,
		entries: make(map[string]*window.SortedWindowList[*Window]),
	}, nil
}

// Strategy returns the windowing strategy.
func (w *Windower) Strategy() window.Strategy {
	return window.Session
}

// Gap returns the inactivity gap that separates sessions.
func (w *Windower) Gap() time.Duration {
	return w.gap
}

// AssignWindow maps the event onto a session of its key and reports what
// happened to that session. An event inside an existing session appends to it;
// an event inside a session whose end it pushes out expands it; any other event
// opens a new session. If expanding or opening a session makes it reach into a
// later one of the same key, the sessions are merged.
func (w *Windower) AssignWindow(keys []string, eventTime time.Time) (*Window, Operation) {
	w.lock.Lock()
	defer w.lock.Unlock()

	combinedKey := strings.Join(keys, delimiter)
	list, ok := w.entries[combinedKey]
	if !ok {
		list = window.NewSortedWindowList[*Window]()
		w.entries[combinedKey] = list
	}

	win, found := list.FindWindowForTime(eventTime)
	if !found {
		// an out-of-order event can open a session that reaches into a later
		// one of the same key; coalesce right away so the two never close as
		// separate overlapping sessions.
		win = NewWindow(eventTime, w.gap, keys)
		list.InsertIfNotPresent(win)
		if coalesce(list, win) {
			return win, Merge
		}
		return win, Create
	}

	newEnd := eventTime.Add(w.gap)
	if !win.EndTime().Before(newEnd) {
		return win, Append
	}

	win.Expand(newEnd)
	if coalesce(list, win) {
		return win, Merge
	}
	return win, Expand
}

// coalesce absorbs into win every session of the list that starts after win's
// start and no later than win's end. The list is walked in order, so a chain of
// sessions each reached by the previous merge collapses in one pass. Reports
// whether any merge happened.
func coalesce(list *window.SortedWindowList[*Window], win *Window) bool {
	merged := false
	for _, next := range list.Items() {
		if next == win || next.StartTime().After(win.EndTime()) {
			continue
		}
		if !next.StartTime().After(win.StartTime()) {
			continue
		}
		list.Delete(next)
		win.Merge(next)
		merged = true
	}
	return merged
}

// CloseWindows removes and returns the sessions of every key that are closed at
// the given watermark.
func (w *Windower) CloseWindows(watermark time.Time) []*Window {
	w.lock.Lock()
	defer w.lock.Unlock()

	cutoff := watermark.Add(-w.grace)
	var closed []*Window
	for key, list := range w.entries {
		closed = append(closed, list.RemoveWindows(cutoff)...)
		if list.Len() == 0 {
			delete(w.entries, key)
		}
	}
	return closed
}

// NextWindowToBeClosed returns the session with the earliest end time across
// all keys, or nil when no session is active.
func (w *Windower) NextWindowToBeClosed() *Window {
	w.lock.Lock()
	defer w.lock.Unlock()

	var next *Window
	for _, list := range w.entries {
		if list.Len() == 0 {
			continue
		}
		front := list.Front()
		if next == nil || front.EndTime().Before(next.EndTime()) {
			next = front
		}
	}
	return next
}
