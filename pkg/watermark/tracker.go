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

// Package watermark tracks stream-time: a per-partition, monotonically
// non-decreasing logical clock derived from the event times observed on that
// partition. The windowing core consumes it to decide lateness and segment
// expiry; it never advances it.
package watermark

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/numaproj/windower/pkg/logging"
)

// InitialWatermark is the stream-time of a partition that has not seen any
// event yet. It predates every valid event time, so nothing is late against it.
var InitialWatermark = time.UnixMilli(-1)

// Tracker maintains one watermark per partition, each the maximum event time
// observed on that partition. Publishing an older event time is a no-op: the
// clock never goes backwards. Safe for concurrent use from one goroutine per
// partition as well as from concurrent readers.
type Tracker struct {
	lock       sync.RWMutex
	partitions map[string]*atomic.Int64
	log        *zap.SugaredLogger
}

// NewTracker returns an empty Tracker.
func NewTracker(ctx context.Context) *Tracker {
	return &Tracker{
		partitions: make(map[string]*atomic.Int64),
		log:        logging.FromContext(ctx),
	}
}

func (t *Tracker) clock(partition string) *atomic.Int64 {
	t.lock.RLock()
	c, ok := t.partitions[partition]
	t.lock.RUnlock()
	if ok {
		return c
	}

	t.lock.Lock()
	defer t.lock.Unlock()
	if c, ok = t.partitions[partition]; !ok {
		c = atomic.NewInt64(InitialWatermark.UnixMilli())
		t.partitions[partition] = c
	}
	return c
}

// Publish feeds an observed event time into the partition's clock and returns
// the watermark after the update. Event times older than the current watermark
// leave it untouched.
func (t *Tracker) Publish(partition string, eventTime time.Time) time.Time {
	var (
		c  = t.clock(partition)
		ts = eventTime.UnixMilli()
	)
	for {
		current := c.Load()
		if ts <= current {
			t.log.Debugw("Watermark not moved, event time is not newer",
				zap.String("partition", partition), zap.Int64("eventTime", ts), zap.Int64("watermark", current))
			return time.UnixMilli(current)
		}
		if c.CompareAndSwap(current, ts) {
			return time.UnixMilli(ts)
		}
	}
}

// Fetch returns the current watermark of the partition, or InitialWatermark if
// the partition has not seen any event.
func (t *Tracker) Fetch(partition string) time.Time {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if c, ok := t.partitions[partition]; ok {
		return time.UnixMilli(c.Load())
	}
	return InitialWatermark
}

// Min returns the smallest watermark across all partitions, the stream-time a
// multi-partition consumer may safely close windows against. It returns
// InitialWatermark when no partition has been published to.
func (t *Tracker) Min() time.Time {
	t.lock.RLock()
	defer t.lock.RUnlock()

	min := int64(-1)
	first := true
	for _, c := range t.partitions {
		if wm := c.Load(); first || wm < min {
			min = wm
			first = false
		}
	}
	return time.UnixMilli(min)
}

// Partitions returns the partitions the tracker has seen.
func (t *Tracker) Partitions() []string {
	t.lock.RLock()
	defer t.lock.RUnlock()
	partitions := make([]string, 0, len(t.partitions))
	for p := range t.partitions {
		partitions = append(partitions, p)
	}
	return partitions
}
