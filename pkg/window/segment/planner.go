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

// Package segment converts a window specification's retention and segment count
// into the segment arithmetic used by the backing store to reclaim space. The
// store keeps window state in physical segments, each covering one segment
// interval of event time, and drops whole segments once every window they could
// contain has passed retention.
//
// The planner only advises: IsExpired reports which segments may be dropped, the
// store performs the actual reclamation and owns the discipline of doing so safely
// under concurrent reads.
package segment

import (
	"fmt"
	"time"

	"github.com/numaproj/windower/pkg/window"
)

// Planner maps event times to segment ids and decides when a segment has aged
// out of retention. It is a pure value, safe for concurrent use.
type Planner struct {
	interval  time.Duration
	retention time.Duration
}

// NewPlanner builds a Planner from the window specification. It fails with
// window.ErrInvalidConfiguration unless retention covers size plus grace:
// otherwise a segment could be reclaimed while a window inside it is still open
// to late updates.
func NewPlanner(spec window.TimeWindows) (Planner, error) {
	if minRetention := spec.Size() + spec.GracePeriod(); spec.Retention() < minRetention {
		return Planner{}, fmt.Errorf("%w: retention %v must be at least size + grace (%v)",
			window.ErrInvalidConfiguration, spec.Retention(), minRetention)
	}
	return Planner{
		interval:  spec.SegmentInterval(),
		retention: spec.Retention(),
	}, nil
}

// Interval returns the span of event time covered by one segment.
func (p Planner) Interval() time.Duration {
	return p.interval
}

// IDFor returns the id of the segment that holds state for the given event
// time. Ids are consecutive integers; segment n covers
// [n*interval, (n+1)*interval).
func (p Planner) IDFor(eventTime time.Time) int64 {
	return eventTime.UnixMilli() / p.interval.Milliseconds()
}

// IsExpired reports whether the segment may be dropped at the given
// stream-time, i.e. the segment ends before stream-time minus retention. Once
// true for a given segment it stays true for every later stream-time, since
// stream-time only moves forward.
func (p Planner) IsExpired(segmentID int64, streamTime time.Time) bool {
	segmentEnd := (segmentID + 1) * p.interval.Milliseconds()
	return segmentEnd < streamTime.UnixMilli()-p.retention.Milliseconds()
}
