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

package tumbling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numaproj/windower/pkg/window"
)

func TestNewWindower(t *testing.T) {
	spec, err := window.NewTumblingWindows(time.Minute)
	require.NoError(t, err)
	windower, err := NewWindower(spec)
	require.NoError(t, err)
	assert.Equal(t, window.Tumbling, windower.Strategy())

	overlapping, err := window.NewTimeWindows(time.Minute, 10*time.Second)
	require.NoError(t, err)
	_, err = NewWindower(overlapping)
	assert.ErrorIs(t, err, window.ErrInvalidConfiguration)
}

func TestTumbling_AssignWindows(t *testing.T) {
	spec, err := window.NewTumblingWindows(time.Minute)
	require.NoError(t, err)
	windower, err := NewWindower(spec)
	require.NoError(t, err)

	tests := []struct {
		name      string
		eventTime time.Time
		wantStart time.Time
	}{
		{name: "mid window", eventTime: time.Unix(610, 0), wantStart: time.Unix(600, 0)},
		{name: "on boundary falls right", eventTime: time.Unix(600, 0), wantStart: time.Unix(600, 0)},
		{name: "just before boundary", eventTime: time.Unix(599, 0), wantStart: time.Unix(540, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := windower.AssignWindows(tt.eventTime)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.True(t, tt.wantStart.Equal(got[0].StartTime()))
			assert.True(t, tt.wantStart.Add(time.Minute).Equal(got[0].EndTime()))
		})
	}
}
