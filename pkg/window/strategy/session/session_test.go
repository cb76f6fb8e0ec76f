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

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numaproj/windower/pkg/window"
)

func TestNewWindower_Validation(t *testing.T) {
	_, err := NewWindower(0, 0)
	assert.ErrorIs(t, err, window.ErrInvalidConfiguration)

	_, err = NewWindower(time.Minute, -time.Second)
	assert.ErrorIs(t, err, window.ErrInvalidConfiguration)

	w, err := NewWindower(time.Minute, 0)
	require.NoError(t, err)
	assert.Equal(t, window.Session, w.Strategy())
	assert.Equal(t, time.Minute, w.Gap())
}

func TestSession_AssignWindow(t *testing.T) {
	w, err := NewWindower(time.Minute, 0)
	require.NoError(t, err)
	keys := []string{"user-1"}

	// first event opens a session [t, t+gap)
	win, op := w.AssignWindow(keys, time.Unix(600, 0))
	assert.Equal(t, Create, op)
	assert.True(t, win.StartTime().Equal(time.Unix(600, 0)))
	assert.True(t, win.EndTime().Equal(time.Unix(660, 0)))

	// a later event inside the session extends its end
	win, op = w.AssignWindow(keys, time.Unix(630, 0))
	assert.Equal(t, Expand, op)
	assert.True(t, win.StartTime().Equal(time.Unix(600, 0)))
	assert.True(t, win.EndTime().Equal(time.Unix(690, 0)))

	// an event that does not move the end appends; only possible when the
	// session end already extends a full gap past the event
	win, op = w.AssignWindow(keys, time.Unix(629, 0))
	assert.Equal(t, Append, op)
	assert.True(t, win.EndTime().Equal(time.Unix(690, 0)))

	// an event past the gap opens a new session for the same key
	win2, op := w.AssignWindow(keys, time.Unix(800, 0))
	assert.Equal(t, Create, op)
	assert.True(t, win2.StartTime().Equal(time.Unix(800, 0)))

	// separate keys get separate sessions
	other, op := w.AssignWindow([]string{"user-2"}, time.Unix(600, 0))
	assert.Equal(t, Create, op)
	assert.True(t, other.StartTime().Equal(time.Unix(600, 0)))
}

func TestSession_Merge(t *testing.T) {
	w, err := NewWindower(time.Minute, 0)
	require.NoError(t, err)
	keys := []string{"user-1"}

	first, op := w.AssignWindow(keys, time.Unix(600, 0))
	require.Equal(t, Create, op)
	_, op = w.AssignWindow(keys, time.Unix(700, 0))
	require.Equal(t, Create, op)

	// an event in the first session whose extension reaches the second merges them
	merged, op := w.AssignWindow(keys, time.Unix(650, 0))
	assert.Equal(t, Merge, op)
	assert.Same(t, first, merged)
	assert.True(t, merged.StartTime().Equal(time.Unix(600, 0)))
	assert.True(t, merged.EndTime().Equal(time.Unix(760, 0)))

	// the merged-away session is gone; only one session remains
	next := w.NextWindowToBeClosed()
	require.NotNil(t, next)
	assert.True(t, next.EndTime().Equal(time.Unix(760, 0)))
	assert.Len(t, w.CloseWindows(time.Unix(10000, 0)), 1)
}

func TestSession_OutOfOrderMerge(t *testing.T) {
	w, err := NewWindower(time.Minute, 0)
	require.NoError(t, err)
	keys := []string{"user-1"}

	_, op := w.AssignWindow(keys, time.Unix(700, 0))
	require.Equal(t, Create, op)

	// an out-of-order event less than a gap before the existing session opens
	// a session that reaches into it; the two coalesce immediately
	merged, op := w.AssignWindow(keys, time.Unix(650, 0))
	assert.Equal(t, Merge, op)
	assert.True(t, merged.StartTime().Equal(time.Unix(650, 0)))
	assert.True(t, merged.EndTime().Equal(time.Unix(760, 0)))

	closed := w.CloseWindows(time.Unix(10000, 0))
	require.Len(t, closed, 1)
	assert.True(t, closed[0].StartTime().Equal(time.Unix(650, 0)))
	assert.True(t, closed[0].EndTime().Equal(time.Unix(760, 0)))
}

func TestSession_CloseWindows(t *testing.T) {
	w, err := NewWindower(time.Minute, 10*time.Second)
	require.NoError(t, err)

	w.AssignWindow([]string{"a"}, time.Unix(600, 0)) // ends 660
	w.AssignWindow([]string{"b"}, time.Unix(700, 0)) // ends 760

	// watermark at end+grace keeps the session open
	assert.Empty(t, w.CloseWindows(time.Unix(670, 0)))

	closed := w.CloseWindows(time.Unix(670, 0).Add(time.Millisecond))
	require.Len(t, closed, 1)
	assert.Equal(t, []string{"a"}, closed[0].Keys())

	closed = w.CloseWindows(time.Unix(1000, 0))
	require.Len(t, closed, 1)
	assert.Equal(t, []string{"b"}, closed[0].Keys())

	assert.Nil(t, w.NextWindowToBeClosed())
}
