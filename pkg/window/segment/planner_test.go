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

package segment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numaproj/windower/pkg/window"
)

func newSpec(t *testing.T, size, retention time.Duration, segments int) window.TimeWindows {
	t.Helper()
	spec, err := window.NewTimeWindows(size, size)
	require.NoError(t, err)
	spec, err = spec.WithRetention(retention)
	require.NoError(t, err)
	spec, err = spec.WithSegments(segments)
	require.NoError(t, err)
	return spec
}

func TestNewPlanner_Validation(t *testing.T) {
	// retention covers size plus derived grace
	_, err := NewPlanner(newSpec(t, time.Minute, time.Hour, 3))
	assert.NoError(t, err)

	// explicit grace pushes the floor past the configured retention
	spec, err := newSpec(t, time.Minute, 2*time.Minute, 3).WithGrace(5 * time.Minute)
	require.NoError(t, err)
	_, err = NewPlanner(spec)
	assert.ErrorIs(t, err, window.ErrInvalidConfiguration)
}

func TestPlanner_Interval(t *testing.T) {
	planner, err := NewPlanner(newSpec(t, time.Minute, 24*time.Hour, 3))
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, planner.Interval())
}

func TestPlanner_IDFor(t *testing.T) {
	planner, err := NewPlanner(newSpec(t, time.Minute, 10*time.Minute, 11))
	require.NoError(t, err)
	require.Equal(t, time.Minute, planner.Interval())

	assert.Equal(t, int64(0), planner.IDFor(time.UnixMilli(0)))
	assert.Equal(t, int64(0), planner.IDFor(time.UnixMilli(59_999)))
	assert.Equal(t, int64(1), planner.IDFor(time.UnixMilli(60_000)))
	assert.Equal(t, int64(10), planner.IDFor(time.UnixMilli(605_000)))
}

func TestPlanner_IsExpired(t *testing.T) {
	planner, err := NewPlanner(newSpec(t, time.Minute, 10*time.Minute, 11))
	require.NoError(t, err)

	// segment 0 covers [0, 60s); it expires once stream-time passes 60s + retention
	assert.False(t, planner.IsExpired(0, time.UnixMilli(660_000)))
	assert.True(t, planner.IsExpired(0, time.UnixMilli(660_001)))
}

func TestPlanner_ExpiryMonotone(t *testing.T) {
	planner, err := NewPlanner(newSpec(t, time.Minute, 10*time.Minute, 11))
	require.NoError(t, err)

	expiredAt := time.UnixMilli(660_001)
	require.True(t, planner.IsExpired(0, expiredAt))
	for _, later := range []time.Duration{time.Millisecond, time.Second, time.Hour, 24 * time.Hour} {
		assert.True(t, planner.IsExpired(0, expiredAt.Add(later)))
	}
}
