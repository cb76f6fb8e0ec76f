// Package window implements the window specification and assignment core of a
// streaming-aggregation engine. In the world of data processing on an unbounded
// stream, windowing is a concept of grouping data using temporal boundaries. We use
// event-time to discover temporal boundaries on an unbounded, infinite stream, and a
// monotonically advancing stream-time clock to decide when those boundaries are
// complete. A reduce function can be applied on each group of data.
//
// The package answers three questions for every incoming timestamped record:
//   - which windows does the record belong to (assignment)?
//   - has the record arrived too late to update those windows (grace period)?
//   - how long must the physical state behind each window be retained (segmented
//     retention, see the segment subpackage)?
//
// Assignment is a pure function of the record's event time and the immutable
// TimeWindows specification. A record may belong to several overlapping windows
// when the advance interval is smaller than the window size (hopping windows);
// when advance equals size the windows tumble and every record belongs to exactly
// one. Windows are half-open intervals [start, start+size), so assignment of an
// element that lands exactly on a boundary follows a left-inclusive, right-exclusive
// principle and the element falls into the window to the right of the boundary.
//
// The stateful lifecycle of windows (tracking active windows, closing them as
// stream-time advances) lives in the strategy subpackages; everything in this
// package is deterministic, side-effect free, and safe for concurrent use.
package window
