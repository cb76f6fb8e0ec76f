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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func winAt(startMs, sizeMs int64) *IntervalWindow {
	return &IntervalWindow{Start: time.UnixMilli(startMs), End: time.UnixMilli(startMs + sizeMs)}
}

func TestSortedWindowList_InsertIfNotPresent(t *testing.T) {
	list := NewSortedWindowList[TimedWindow]()

	// out of order inserts end up sorted
	for _, start := range []int64{3000, 1000, 2000} {
		_, present := list.InsertIfNotPresent(winAt(start, 1000))
		assert.False(t, present)
	}
	assert.Equal(t, 3, list.Len())
	assert.Equal(t, int64(1000), list.Front().StartTime().UnixMilli())
	assert.Equal(t, int64(3000), list.Back().StartTime().UnixMilli())

	// the same window again returns the tracked instance
	tracked, present := list.InsertIfNotPresent(winAt(2000, 1000))
	assert.True(t, present)
	assert.Equal(t, int64(2000), tracked.StartTime().UnixMilli())
	assert.Equal(t, 3, list.Len())

	items := list.Items()
	for i := 1; i < len(items); i++ {
		assert.True(t, items[i-1].StartTime().Before(items[i].StartTime()))
	}
}

func TestSortedWindowList_Delete(t *testing.T) {
	list := NewSortedWindowList[TimedWindow]()
	for _, start := range []int64{1000, 2000, 3000} {
		list.InsertIfNotPresent(winAt(start, 1000))
	}

	assert.True(t, list.Delete(winAt(2000, 1000)))
	assert.False(t, list.Delete(winAt(2000, 1000)))
	assert.Equal(t, 2, list.Len())
}

func TestSortedWindowList_RemoveWindows(t *testing.T) {
	list := NewSortedWindowList[TimedWindow]()
	for _, start := range []int64{1000, 2000, 3000, 4000} {
		list.InsertIfNotPresent(winAt(start, 1000))
	}

	// strictly before: the window ending exactly at the cutoff stays
	removed := list.RemoveWindows(time.UnixMilli(4000))
	assert.Len(t, removed, 2)
	assert.Equal(t, int64(1000), removed[0].StartTime().UnixMilli())
	assert.Equal(t, int64(2000), removed[1].StartTime().UnixMilli())
	assert.Equal(t, 2, list.Len())
	assert.Equal(t, int64(3000), list.Front().StartTime().UnixMilli())
}

func TestSortedWindowList_FindWindowForTime(t *testing.T) {
	list := NewSortedWindowList[TimedWindow]()
	list.InsertIfNotPresent(winAt(1000, 1000))
	list.InsertIfNotPresent(winAt(5000, 1000))

	win, found := list.FindWindowForTime(time.UnixMilli(1500))
	assert.True(t, found)
	assert.Equal(t, int64(1000), win.StartTime().UnixMilli())

	// end is exclusive
	_, found = list.FindWindowForTime(time.UnixMilli(2000))
	assert.False(t, found)

	_, found = list.FindWindowForTime(time.UnixMilli(4000))
	assert.False(t, found)
}

func TestSortedWindowList_Empty(t *testing.T) {
	list := NewSortedWindowList[TimedWindow]()
	assert.Equal(t, 0, list.Len())
	assert.Nil(t, list.Front())
	assert.Nil(t, list.Back())
	assert.Empty(t, list.RemoveWindows(time.UnixMilli(1000)))
}
