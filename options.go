package recql

import "time"

// Options holds the process-wide, read-once-at-startup configuration.
// It's threaded explicitly through the Engine rather than held as
// package-level globals.
type Options struct {
	// PageFetchMS is the simulated latency charged on a buffer admission
	// miss.
	PageFetchMS float64
	// PageCapacity is the maximum number of records per page.
	PageCapacity int
	// BufferCapacity is the maximum number of resident pages in the LRU
	// buffer.
	BufferCapacity int
	// BlockJoinSize is the outer block width for block_join.
	BlockJoinSize int
	// Scales is the per-benchmark scale list (percentages).
	Scales []int
	// Runs is the number of runs per scale; the first run of each scale is
	// discarded to let caches warm up.
	Runs int
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		PageFetchMS:    0.1,
		PageCapacity:   100,
		BufferCapacity: 50,
		BlockJoinSize:  100,
		Scales:         []int{10, 25, 50, 100},
		Runs:           5,
	}
}

// FetchLatency converts PageFetchMS into a time.Duration.
func (o Options) FetchLatency() time.Duration {
	return time.Duration(o.PageFetchMS * float64(time.Millisecond))
}
