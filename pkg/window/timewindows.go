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

const (
	// DefaultRetention is the retention applied by NewTimeWindows when none is
	// configured. It doubles as the source of the legacy grace period, which is
	// derived as retention minus window size.
	DefaultRetention = 24 * time.Hour

	// DefaultSegments is the default number of physical segments the window store
	// rolls its state over.
	DefaultSegments = 3

	// minSegmentInterval is the lower bound on segment granularity, regardless of
	// how small retention/(segments-1) works out to be.
	minSegmentInterval = time.Minute
)

// retentionPolicy decides how the grace period is derived. It is a closed choice
// between the legacy behavior (grace falls out of the retention, the way it did
// before grace was an explicit knob) and an explicitly configured grace.
type retentionPolicy interface {
	gracePeriod(size, retention time.Duration) time.Duration
}

// legacyRetention derives grace as retention minus window size, clamped to zero.
type legacyRetention struct{}

func (legacyRetention) gracePeriod(size, retention time.Duration) time.Duration {
	if g := retention - size; g > 0 {
		return g
	}
	return 0
}

// explicitGrace pins the grace period independent of retention.
type explicitGrace struct {
	grace time.Duration
}

func (e explicitGrace) gracePeriod(_, _ time.Duration) time.Duration {
	return e.grace
}

// TimeWindows is the immutable specification of fixed-size, fixed-hop windows.
// It is a pure value: every With* method returns a new specification, so a
// specification shared across aggregations can never be mutated through an alias.
// Build the specification before processing starts and hand it to the processing
// goroutines read-only; once published it requires no synchronization.
type TimeWindows struct {
	size      time.Duration
	advance   time.Duration
	retention time.Duration
	policy    retentionPolicy
	segments  int
}

// NewTimeWindows returns a specification of windows of the given size whose start
// times are advance apart. advance == size gives tumbling (non-overlapping)
// windows, advance < size gives hopping windows where an element belongs to
// ceil(size/advance) windows. Retention defaults to DefaultRetention and the grace
// period to retention minus size, which preserves the behavior of configurations
// that predate the explicit grace knob.
func NewTimeWindows(size, advance time.Duration) (TimeWindows, error) {
	if size <= 0 {
		return TimeWindows{}, fmt.Errorf("%w: window size %v must be positive", ErrInvalidConfiguration, size)
	}
	if advance <= 0 || advance > size {
		return TimeWindows{}, fmt.Errorf("%w: advance %v must be in (0, %v]", ErrInvalidConfiguration, advance, size)
	}
	return TimeWindows{
		size:      size,
		advance:   advance,
		retention: DefaultRetention,
		policy:    legacyRetention{},
		segments:  DefaultSegments,
	}, nil
}

// NewTumblingWindows returns a specification of non-overlapping windows of the
// given size.
func NewTumblingWindows(size time.Duration) (TimeWindows, error) {
	return NewTimeWindows(size, size)
}

// WithGrace returns a copy of the specification that admits updates to a window
// until stream-time passes the window end by d. Lateness is defined against
// stream-time, not wall-clock time.
func (w TimeWindows) WithGrace(d time.Duration) (TimeWindows, error) {
	if d < 0 {
		return TimeWindows{}, fmt.Errorf("%w: grace period %v must not be negative", ErrInvalidConfiguration, d)
	}
	w.policy = explicitGrace{grace: d}
	return w, nil
}

// WithRetention returns a copy of the specification with the given retention,
// a guaranteed lower bound for how long window state is kept queryable and
// updatable. When no explicit grace is set, the grace period is derived from it.
func (w TimeWindows) WithRetention(d time.Duration) (TimeWindows, error) {
	if d < 0 {
		return TimeWindows{}, fmt.Errorf("%w: retention %v must not be negative", ErrInvalidConfiguration, d)
	}
	w.retention = d
	return w, nil
}

// WithSegments returns a copy of the specification using n rolling segments for
// the backing store.
func (w TimeWindows) WithSegments(n int) (TimeWindows, error) {
	if n < 2 {
		return TimeWindows{}, fmt.Errorf("%w: segments must be at least 2, got %d", ErrInvalidConfiguration, n)
	}
	w.segments = n
	return w, nil
}

// Size returns the temporal length of the windows.
func (w TimeWindows) Size() time.Duration {
	return w.size
}

// Advance returns the interval between the start times of consecutive windows.
func (w TimeWindows) Advance() time.Duration {
	return w.advance
}

// Retention returns the lower bound on how long window state is maintained.
func (w TimeWindows) Retention() time.Duration {
	return w.retention
}

// Segments returns the number of rolling store segments.
func (w TimeWindows) Segments() int {
	return w.segments
}

// GracePeriod returns the time to keep admitting updates after a window's end.
// It is the explicit grace if one was set, otherwise retention minus size,
// clamped to zero. All lateness decisions go through this single derivation so
// callers never need to know which knob was configured.
func (w TimeWindows) GracePeriod() time.Duration {
	return w.policy.gracePeriod(w.size, w.retention)
}

// SegmentInterval returns the span of event time covered by one store segment,
// scaled to the retention and pinned to a minimum of one minute so a small
// retention/segment ratio cannot produce pathologically fine-grained segments.
func (w TimeWindows) SegmentInterval() time.Duration {
	interval := w.retention / time.Duration(w.segments-1)
	if interval < minSegmentInterval {
		return minSegmentInterval
	}
	return interval
}

// WindowsFor returns every window that contains the given event time, keyed by
// the window start in Unix milliseconds. The result depends only on the event
// time and the specification: identical inputs always produce identical
// mappings, independent of call order or count.
//
// The latest candidate start is the highest multiple of advance that is not
// after the event time; earlier candidates are enumerated by stepping back one
// advance at a time while the window still covers the event time. Windows that
// would start before the epoch are excluded, so timestamps close to the origin
// yield fewer than ceil(size/advance) windows.
func (w TimeWindows) WindowsFor(eventTime time.Time) (map[int64]*IntervalWindow, error) {
	ts := eventTime.UnixMilli()
	if ts < 0 {
		return nil, fmt.Errorf("%w: event time %d must not be before the epoch", ErrInvalidTimestamp, ts)
	}

	var (
		sizeMs    = w.size.Milliseconds()
		advanceMs = w.advance.Milliseconds()
		windows   = make(map[int64]*IntervalWindow)
	)

	for start := ts - ts%advanceMs; start >= 0 && start+sizeMs > ts; start -= advanceMs {
		windows[start] = &IntervalWindow{
			Start: time.UnixMilli(start),
			End:   time.UnixMilli(start + sizeMs),
		}
	}
	return windows, nil
}

// IsLate reports whether the given window is closed to further updates at the
// given stream-time, i.e. stream-time has passed the window end by more than the
// grace period. The decision is a function of the window's end and the current
// stream-time, not of the record's own timestamp, and is re-evaluated per update
// attempt: a window that is open when first touched may close as stream-time
// advances, so the gate must be consulted once per (record, window) pair.
func (w TimeWindows) IsLate(win TimedWindow, streamTime time.Time) bool {
	return streamTime.After(win.EndTime().Add(w.GracePeriod()))
}
