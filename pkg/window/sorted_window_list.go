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

package window

import (
	"sort"
	"sync"
	"time"
)

// SortedWindowList is a thread safe list of windows sorted by start time from
// lowest to highest. The Front of the list always holds the earliest window and
// the Back the most recent one. Two windows are considered the same entry iff
// both their start and end times are equal.
type SortedWindowList[W TimedWindow] struct {
	windows []W
	lock    *sync.RWMutex
}

// NewSortedWindowList returns an empty SortedWindowList.
func NewSortedWindowList[W TimedWindow]() *SortedWindowList[W] {
	return &SortedWindowList[W]{
		windows: make([]W, 0),
		lock:    &sync.RWMutex{},
	}
}

func sameWindow(a, b TimedWindow) bool {
	return a.StartTime().Equal(b.StartTime()) && a.EndTime().Equal(b.EndTime())
}

// InsertIfNotPresent inserts a window into the list if no equal window is
// present, keeping the list sorted, and returns the tracked instance. The second
// return value reports whether the window was already present.
func (s *SortedWindowList[W]) InsertIfNotPresent(window W) (W, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	index := sort.Search(len(s.windows), func(i int) bool {
		return !s.windows[i].StartTime().Before(window.StartTime())
	})

	updatedIndex := index

	for i := index; i < len(s.windows); i++ {
		if sameWindow(s.windows[i], window) {
			return s.windows[i], true
		}

		if s.windows[i].StartTime().After(window.StartTime()) {
			updatedIndex = i
			break
		}
	}

	s.windows = append(s.windows, window)
	copy(s.windows[updatedIndex+1:], s.windows[updatedIndex:])
	s.windows[updatedIndex] = window

	return window, false
}

// Delete removes a window from the list if present.
func (s *SortedWindowList[W]) Delete(window W) (deleted bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	index := sort.Search(len(s.windows), func(i int) bool {
		return !s.windows[i].StartTime().Before(window.StartTime())
	})

	for i := index; i < len(s.windows); i++ {
		if sameWindow(s.windows[i], window) {
			s.windows = append(s.windows[:i], s.windows[i+1:]...)
			return true
		}

		if s.windows[i].StartTime().After(window.StartTime()) {
			break
		}
	}
	return false
}

// RemoveWindows removes and returns the windows whose end time is strictly
// before the given time. Windows ending exactly at t stay in the list, matching
// the strict stream-time comparison used to decide lateness.
func (s *SortedWindowList[W]) RemoveWindows(t time.Time) []W {
	s.lock.Lock()
	defer s.lock.Unlock()

	// the list is sorted by start time; for the fixed-size windows tracked here
	// the end-time order matches the start-time order.
	index := sort.Search(len(s.windows), func(i int) bool {
		return !s.windows[i].EndTime().Before(t)
	})

	removed := make([]W, index)
	copy(removed, s.windows[:index])

	s.windows = s.windows[index:]

	return removed
}

// Len returns the number of windows in the list.
func (s *SortedWindowList[W]) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.windows)
}

// Front returns the earliest window in the list, or the zero value if the list
// is empty.
func (s *SortedWindowList[W]) Front() W {
	var front W
	s.lock.RLock()
	defer s.lock.RUnlock()
	if len(s.windows) == 0 {
		return front
	}
	return s.windows[0]
}

// Back returns the most recent window in the list, or the zero value if the
// list is empty.
func (s *SortedWindowList[W]) Back() W {
	var back W
	s.lock.RLock()
	defer s.lock.RUnlock()
	if len(s.windows) == 0 {
		return back
	}
	return s.windows[len(s.windows)-1]
}

// Items returns a snapshot of the windows in order.
func (s *SortedWindowList[W]) Items() []W {
	s.lock.RLock()
	defer s.lock.RUnlock()
	items := make([]W, len(s.windows))
	copy(items, s.windows)
	return items
}

// FindWindowForTime returns the window that contains the given time, if any.
// Used by unaligned (session) windowing where an event extends an existing
// window rather than mapping onto a fixed grid.
func (s *SortedWindowList[W]) FindWindowForTime(t time.Time) (W, bool) {
	var match W
	s.lock.RLock()
	defer s.lock.RUnlock()
	for _, win := range s.windows {
		if !t.Before(win.StartTime()) && t.Before(win.EndTime()) {
			return win, true
		}
	}
	return match, false
}
