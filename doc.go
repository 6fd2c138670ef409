// Package freqtable implements a bounded-memory approximate frequency
// counter for string keys. It ingests an unbounded stream of keys and
// maintains, under a fixed bucket budget, estimated occurrence counts for
// the most frequent items, automatically discarding low-frequency items to
// stay within budget. It also exposes an unbiased estimator of the total
// number of distinct keys ever seen, via an embedded HyperLogLog fed from
// the same hash used for bucket placement.
//
// The structure is not safe for concurrent use: callers must serialize
// their own writes, the same discipline github.com/kwertop/gostatix's
// in-memory structures expect of single-writer callers.
package freqtable
