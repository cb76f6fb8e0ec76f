package isb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecord_CombinedKey(t *testing.T) {
	assert.Equal(t, "a:b", (&Record{Keys: []string{"a", "b"}}).CombinedKey())
	assert.Equal(t, "a", (&Record{Keys: []string{"a"}}).CombinedKey())
	assert.Equal(t, "", (&Record{}).CombinedKey())
}

func TestEventTimeExtractor(t *testing.T) {
	eventTime := time.UnixMilli(12345)
	r := &Record{EventTime: eventTime}
	assert.True(t, eventTime.Equal(EventTimeExtractor{}.Extract(r)))
}

func TestWallClockExtractor(t *testing.T) {
	now := time.UnixMilli(98765)
	e := WallClockExtractor{Now: func() time.Time { return now }}
	assert.True(t, now.Equal(e.Extract(&Record{EventTime: time.UnixMilli(1)})))
}
