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

// Package isb holds the record type flowing through the aggregation pipeline
// and the pluggable extraction of a record's event time.
package isb

import (
	"strings"
	"time"
)

const keyDelimiter = ":"

// Record is one timestamped element of the stream.
type Record struct {
	// Keys identify the group the record aggregates into.
	Keys []string
	// Payload is the opaque record body; the reduce function decides how to
	// interpret it.
	Payload []byte
	// EventTime is the time the event occurred, as stamped by the producer.
	EventTime time.Time
}

// CombinedKey returns the keys joined into the single string used to key
// window state.
func (r *Record) CombinedKey() string {
	return strings.Join(r.Keys, keyDelimiter)
}

// TimestampExtractor extracts the event time used for window assignment from a
// record. Implementations must be side-effect free; the same record must always
// yield the same timestamp.
type TimestampExtractor interface {
	Extract(r *Record) time.Time
}

// EventTimeExtractor reads the event time stamped on the record. It is the
// default extractor.
type EventTimeExtractor struct{}

func (EventTimeExtractor) Extract(r *Record) time.Time {
	return r.EventTime
}

// WallClockExtractor ignores the record and returns processing time. Useful
// when records carry no usable event time; with it, nothing is ever late.
type WallClockExtractor struct {
	// Now is the clock to read, defaulting to time.Now. Injectable for tests.
	Now func() time.Time
}

func (w WallClockExtractor) Extract(_ *Record) time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}
