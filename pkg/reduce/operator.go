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

// Package reduce orchestrates the per-record aggregation flow: extract the
// record's event time, feed it to the stream-time tracker, assign the record to
// its candidate windows, gate each (record, window) pair on the grace period,
// fold admitted pairs into the window store, and close windows once stream-time
// has passed their end plus grace. Lateness is decided independently per
// (record, window) pair: a record rejected for one candidate window may still
// update a sibling window whose grace boundary has not passed.
//
// Everything here is synchronous; the operator is driven one record at a time
// per partition and never blocks waiting for stream-time to advance.
package reduce

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/numaproj/windower/pkg/isb"
	"github.com/numaproj/windower/pkg/logging"
	"github.com/numaproj/windower/pkg/store"
	"github.com/numaproj/windower/pkg/watermark"
	"github.com/numaproj/windower/pkg/window"
	"github.com/numaproj/windower/pkg/window/segment"
)

// Reducer folds one record into the accumulator of one window. acc is nil on
// the first record of a (key, window) pair. Implementations must not retain r.
type Reducer interface {
	Apply(ctx context.Context, tw window.TimedWindow, key string, acc []byte, r *isb.Record) ([]byte, error)
}

// ReducerFunc adapts a function to the Reducer interface.
type ReducerFunc func(ctx context.Context, tw window.TimedWindow, key string, acc []byte, r *isb.Record) ([]byte, error)

func (f ReducerFunc) Apply(ctx context.Context, tw window.TimedWindow, key string, acc []byte, r *isb.Record) ([]byte, error) {
	return f(ctx, tw, key, acc, r)
}

// Operator applies a Reducer over windowed state. It owns the active window
// lifecycle and the advisory store expiry; the window assignment and lateness
// decisions are delegated to the pure windowing core.
type Operator struct {
	windower window.Windower
	reducer  Reducer
	st       store.WindowStore
	tracker  *watermark.Tracker
	planner  segment.Planner
	opts     *Options
	log      *zap.SugaredLogger
}

// NewOperator builds an Operator. It fails with window.ErrInvalidConfiguration
// if the windower's specification cannot back a retention plan, i.e. retention
// does not cover size plus grace.
func NewOperator(ctx context.Context, windower window.Windower, reducer Reducer, st store.WindowStore,
	tracker *watermark.Tracker, opts ...Option) (*Operator, error) {

	planner, err := segment.NewPlanner(windower.Spec())
	if err != nil {
		return nil, err
	}

	options := DefaultOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	return &Operator{
		windower: windower,
		reducer:  reducer,
		st:       st,
		tracker:  tracker,
		planner:  planner,
		opts:     options,
		log:      logging.FromContext(ctx),
	}, nil
}

// Process folds one record into every candidate window that is still open,
// then closes the windows stream-time has moved past and advises the store to
// reclaim expired segments. It returns the windows closed by this step.
//
// A record with an event time the core rejects (before the epoch) is counted,
// dropped, and the error returned; the caller decides whether to route it to a
// side channel.
func (o *Operator) Process(ctx context.Context, partition string, r *isb.Record) ([]window.TimedWindow, error) {
	eventTime := o.opts.extractor.Extract(r)
	o.tracker.Publish(partition, eventTime)

	candidates, err := o.windower.AssignWindows(eventTime)
	if err != nil {
		droppedMessagesCount.WithLabelValues(partition, "invalid-timestamp").Inc()
		return nil, fmt.Errorf("failed to assign windows: %w", err)
	}

	// lateness is evaluated against the stream-time visible after this record,
	// once per candidate window.
	var (
		streamTime = o.tracker.Fetch(partition)
		spec       = o.windower.Spec()
		key        = r.CombinedKey()
		accepted   = 0
	)
	for _, tw := range candidates {
		if spec.IsLate(tw, streamTime) {
			droppedMessagesCount.WithLabelValues(partition, "late").Inc()
			o.log.Debugw("Dropping late record for closed window",
				zap.String("partition", partition),
				zap.Int64("eventTime", eventTime.UnixMilli()),
				zap.Int64("windowEnd", tw.EndTime().UnixMilli()),
				zap.Int64("streamTime", streamTime.UnixMilli()))
			o.opts.onLate(partition, r, tw)
			continue
		}

		windowStart := tw.StartTime().UnixMilli()
		acc, _, err := o.st.Get(ctx, key, windowStart)
		if err != nil {
			return nil, fmt.Errorf("failed to read accumulator: %w", err)
		}
		next, err := o.reducer.Apply(ctx, tw, key, acc, r)
		if err != nil {
			return nil, fmt.Errorf("failed to reduce record: %w", err)
		}
		if err := o.st.Put(ctx, key, windowStart, next); err != nil {
			return nil, fmt.Errorf("failed to write accumulator: %w", err)
		}
		o.windower.InsertWindow(tw)
		accepted++
	}
	// a record every candidate window rejected was dropped, not processed
	if accepted > 0 {
		processedMessagesCount.WithLabelValues(partition).Inc()
	}

	closed, err := o.advance(ctx, partition)
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// advance closes windows and expires segments against the smallest watermark
// across partitions, which is the highest stream-time every partition has
// provably reached.
func (o *Operator) advance(ctx context.Context, partition string) ([]window.TimedWindow, error) {
	streamTime := o.tracker.Min()

	closed := o.windower.CloseWindows(streamTime)
	if len(closed) > 0 {
		windowsClosedCount.WithLabelValues(partition).Add(float64(len(closed)))
		o.log.Infow("Closed windows", zap.String("partition", partition),
			zap.Int("count", len(closed)), zap.Int64("streamTime", streamTime.UnixMilli()))
	}

	dropped, err := o.st.DropExpired(ctx, streamTime)
	if err != nil {
		return nil, fmt.Errorf("failed to drop expired segments: %w", err)
	}
	if dropped > 0 {
		segmentsDroppedCount.WithLabelValues(partition).Add(float64(dropped))
	}
	return closed, nil
}

// NextWindowToBeClosed exposes the earliest-ending active window, which callers
// use to decide how long to keep per-window side state of their own.
func (o *Operator) NextWindowToBeClosed() window.TimedWindow {
	return o.windower.NextWindowToBeClosed()
}

// FetchWindows calls fn for every stored accumulator of the key whose window
// start lies in [from, to].
func (o *Operator) FetchWindows(ctx context.Context, key string, from, to time.Time, fn func(windowStart int64, acc []byte) error) error {
	return o.st.Fetch(ctx, key, from, to, fn)
}
