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

package reduce

import (
	"github.com/numaproj/windower/pkg/isb"
	"github.com/numaproj/windower/pkg/window"
)

// Options for the reduce operator.
type Options struct {
	// extractor extracts the event time used for window assignment.
	extractor isb.TimestampExtractor
	// onLate is invoked for every (record, window) pair rejected by the grace
	// period gate. The record is otherwise dropped for that window.
	onLate func(partition string, r *isb.Record, tw window.TimedWindow)
}

type Option func(*Options) error

func DefaultOptions() *Options {
	return &Options{
		extractor: isb.EventTimeExtractor{},
		onLate:    func(string, *isb.Record, window.TimedWindow) {},
	}
}

// WithTimestampExtractor sets the timestamp extractor.
func WithTimestampExtractor(e isb.TimestampExtractor) Option {
	return func(o *Options) error {
		o.extractor = e
		return nil
	}
}

// WithLateRecordHandler sets a callback for records rejected as late, e.g. to
// route them to a side channel instead of silently dropping them.
func WithLateRecordHandler(fn func(partition string, r *isb.Record, tw window.TimedWindow)) Option {
	return func(o *Options) error {
		o.onLate = fn
		return nil
	}
}
