package reduce

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	labelPartition = "partition"
	labelReason    = "reason"
)

// processedMessagesCount is used to indicate the number of messages reduced into windows
var processedMessagesCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "reduce",
	Name:      "processed_total",
	Help:      "Total number of Messages Reduced",
}, []string{labelPartition})

// droppedMessagesCount is used to indicate the number of messages dropped
var droppedMessagesCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "reduce",
	Name:      "dropped_total",
	Help:      "Total number of Messages Dropped",
}, []string{labelPartition, labelReason})

// windowsClosedCount is used to indicate the number of windows closed by watermark progression
var windowsClosedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "reduce",
	Name:      "windows_closed_total",
	Help:      "Total number of Windows Closed",
}, []string{labelPartition})

// segmentsDroppedCount is used to indicate the number of store segments reclaimed
var segmentsDroppedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "store",
	Name:      "segments_dropped_total",
	Help:      "Total number of Store Segments Dropped",
}, []string{labelPartition})
