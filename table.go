package freqtable

import (
	"bytes"
	"math/bits"
	"unsafe"

	"github.com/kwertop/freqtable/hash"
	"github.com/kwertop/freqtable/histogram"
	"github.com/kwertop/freqtable/sketch"
)

// cellSize is the in-memory footprint of one cell, used by Mem to report
// the table's total allocation the way the original C implementation's
// sizeof(cell_t) does.
const cellSize = unsafe.Sizeof(cell{})

// Counter is a bounded-memory approximate frequency counter. It must not be
// used concurrently from multiple goroutines without external
// synchronization.
type Counter struct {
	table []cell
	mask  uint32

	total        int64
	size         uint32
	strAllocated uint64
	maxPrune     int64

	hist *histogram.Histogram
	hll  *sketch.HyperLogLog
}

// New creates a Counter with an effective bucket count of
// 2^floor(log2(buckets)), at most 2^31. buckets below 4 are rejected with
// ErrTooFewBuckets and buckets above 2^32-1 with ErrTooManyBuckets.
func New(buckets int) (*Counter, error) {
	if buckets < 4 {
		return nil, ErrTooFewBuckets
	}
	if buckets > 0xFFFFFFFF {
		return nil, ErrTooManyBuckets
	}
	effective := uint32(1) << uint(bits.Len(uint(buckets))-1)

	c := &Counter{
		table: make([]cell, effective),
		mask:  effective - 1,
		hist:  histogram.New(),
		hll:   sketch.New(),
	}
	return c, nil
}

func checkKey(key []byte) error {
	if bytes.IndexByte(key, 0) >= 0 {
		return ErrInvalidKey
	}
	return nil
}

// bucketHash hashes key and, when store is true, also feeds the raw 32-bit
// hash into the HyperLogLog before masking it down to a bucket index. Using
// the same hash for both purposes keeps cardinality estimation accurate
// even after prune has evicted the cell that would otherwise prove a key
// was ever inserted.
func (c *Counter) bucketHash(key []byte, store bool) uint32 {
	h := hash.Sum32(hash.Seed32, key)
	if store {
		c.hll.Add(h)
	}
	return h & c.mask
}

// findCell probes linearly from key's home bucket until it finds either an
// occupied cell whose key matches (a hit) or an empty cell (a miss). It
// always returns a valid index into the table.
func (c *Counter) findCell(key []byte, store bool) uint32 {
	idx := c.bucketHash(key, store)
	for c.table[idx].occupied() && !bytes.Equal(c.table[idx].key, key) {
		idx = (idx + 1) & c.mask
	}
	return idx
}

// allocateCell returns the index of key's cell, allocating and zero-
// initializing it (triggering a prune first if occupancy is already at the
// 75% threshold) if it didn't already exist.
func (c *Counter) allocateCell(key []byte) uint32 {
	idx := c.findCell(key, true)
	if c.table[idx].occupied() {
		return idx
	}

	if c.size >= (uint32(len(c.table))/4)*3 {
		c.pruneInternal(c.hist.PruneThreshold(c.size, uint32(len(c.table))))
		// A better slot for this key may have opened up during the prune.
		idx = c.findCell(key, false)
	}

	owned := make([]byte, len(key))
	copy(owned, key)
	c.table[idx].key = owned
	c.table[idx].count = 0

	c.size++
	c.strAllocated += uint64(len(key)) + 1
	c.hist.Add(0)

	return idx
}
