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

import "time"

// TimedWindow is a bounded window of time. Aligned windows (tumbling, hopping)
// apply across all the data for the period of time in question; unaligned windows
// (session) apply only to specific subsets of the data, e.g. per key.
type TimedWindow interface {
	// StartTime returns the start time of the window, inclusive.
	StartTime() time.Time
	// EndTime returns the end time of the window, exclusive.
	EndTime() time.Time
}

// Windower tracks the lifecycle of aligned windows: it assigns events to
// windows, records which windows are active, and closes windows once the
// watermark has passed their end plus the grace period.
type Windower interface {
	// Strategy returns the windowing strategy.
	Strategy() Strategy
	// Spec returns the immutable window specification the windower was built from.
	Spec() TimeWindows
	// AssignWindows returns every window that contains the given event time.
	AssignWindows(eventTime time.Time) ([]TimedWindow, error)
	// InsertWindow adds a window to the set of active windows if it is not
	// already present, and returns the tracked instance.
	InsertWindow(tw TimedWindow) (TimedWindow, bool)
	// CloseWindows removes and returns the active windows that can no longer be
	// updated at the given watermark.
	CloseWindows(watermark time.Time) []TimedWindow
	// NextWindowToBeClosed returns the active window with the earliest end time,
	// or nil if no window is active.
	NextWindowToBeClosed() TimedWindow
}

// Strategy represents the windowing strategy.
type Strategy int

const (
	Tumbling Strategy = iota
	Hopping
	Session
)

func (s Strategy) String() string {
	switch s {
	case Tumbling:
		return "Tumbling"
	case Hopping:
		return "Hopping"
	case Session:
		return "Session"
	default:
		return "Unknown"
	}
}
