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
	"fmt"
	"time"
)

// IntervalWindow is a half-open interval [Start, End) in event time. Two windows
// are the same window iff their start times and lengths are equal.
type IntervalWindow struct {
	// Start is the start time of the window, inclusive.
	Start time.Time
	// End is the end time of the window, exclusive.
	End time.Time
}

// StartTime returns the start time of the window.
func (iw *IntervalWindow) StartTime() time.Time {
	return iw.Start
}

// EndTime returns the end time of the window.
func (iw *IntervalWindow) EndTime() time.Time {
	return iw.End
}

// StartMilli returns the window start as Unix milliseconds, the form in which
// window starts key store entries and assignment results.
func (iw *IntervalWindow) StartMilli() int64 {
	return iw.Start.UnixMilli()
}

// EndMilli returns the window end as Unix milliseconds.
func (iw *IntervalWindow) EndMilli() int64 {
	return iw.End.UnixMilli()
}

// Duration returns the temporal length of the window.
func (iw *IntervalWindow) Duration() time.Duration {
	return iw.End.Sub(iw.Start)
}

// Contains reports whether t falls inside the window. The interval is left
// inclusive and right exclusive.
func (iw *IntervalWindow) Contains(t time.Time) bool {
	return !t.Before(iw.Start) && t.Before(iw.End)
}

func (iw *IntervalWindow) String() string {
	return fmt.Sprintf("[%d,%d)", iw.StartMilli(), iw.EndMilli())
}
