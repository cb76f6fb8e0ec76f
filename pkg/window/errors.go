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

import "errors"

var (
	// ErrInvalidConfiguration is returned when a window specification is built with
	// values that violate its invariants (negative grace or retention, fewer than
	// two segments, an advance outside (0, size]). It is always raised at
	// construction time, never while records are being processed.
	ErrInvalidConfiguration = errors.New("invalid window configuration")

	// ErrInvalidTimestamp is returned by WindowsFor for event times before the
	// epoch. The caller decides whether to drop the record or route it to a side
	// channel; this package never retries or swallows it.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)
