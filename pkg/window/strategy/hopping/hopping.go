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

// Package hopping implements hopping windows: windows of a static size whose
// boundaries move forward by a fixed advance which is smaller than or equal to
// the size, so an element can belong to several overlapping windows. The package
// also maintains the state of active windows and closes them as the watermark
// passes their end plus the grace period.
package hopping

import (
	"sort"
	"time"

	"github.com/numaproj/windower/pkg/window"
)

// Hopping implements window.Windower for hopping windows.
type Hopping struct {
	spec window.TimeWindows
	// entries is the list of active windows that are currently being tracked,
	// sorted in chronological order with the earliest window at the front.
	// Because the earlier windows are expected to be closed before the more
	// recent ones, closing only ever removes a prefix of the list.
	entries *window.SortedWindowList[window.TimedWindow]
}

var _ window.Windower = (*Hopping)(nil)

// NewWindower returns a hopping Windower for the given specification.
func NewWindower(spec window.TimeWindows) *Hopping {
	return &Hopping{
		spec:    spec,
		entries: window.NewSortedWindowList[window.TimedWindow](),
	}
}

// Strategy returns the windowing strategy.
func (h *Hopping) Strategy() window.Strategy {
	if h.spec.Advance() == h.spec.Size() {
		return window.Tumbling
	}
	return window.Hopping
}

// Spec returns the window specification.
func (h *Hopping) Spec() window.TimeWindows {
	return h.spec
}

// AssignWindows returns every window containing the given event time, in
// ascending start-time order.
func (h *Hopping) AssignWindows(eventTime time.Time) ([]window.TimedWindow, error) {
	byStart, err := h.spec.WindowsFor(eventTime)
	if err != nil {
		return nil, err
	}

	windows := make([]window.TimedWindow, 0, len(byStart))
	for _, iw := range byStart {
		windows = append(windows, iw)
	}
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].StartTime().Before(windows[j].StartTime())
	})
	return windows, nil
}

// InsertWindow adds a window to the list of active windows if not already
// present and returns the tracked instance.
func (h *Hopping) InsertWindow(tw window.TimedWindow) (window.TimedWindow, bool) {
	return h.entries.InsertIfNotPresent(tw)
}

// CloseWindows removes and returns the active windows that are closed at the
// given watermark, i.e. the watermark has passed their end plus the grace
// period.
func (h *Hopping) CloseWindows(watermark time.Time) []window.TimedWindow {
	return h.entries.RemoveWindows(watermark.Add(-h.spec.GracePeriod()))
}

// NextWindowToBeClosed returns the active window with the earliest end time.
func (h *Hopping) NextWindowToBeClosed() window.TimedWindow {
	if h.entries.Len() == 0 {
		return nil
	}
	return h.entries.Front()
}
