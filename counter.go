package freqtable

import (
	"math"

	"github.com/kwertop/freqtable/histogram"
)

// Increment adds delta to key's count, allocating a new cell for key if
// necessary. delta must be zero or positive; a zero delta is a no-op.
func (c *Counter) Increment(key []byte, delta int64) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if delta < 0 {
		return ErrNegativeDelta
	}
	if delta == 0 {
		return nil
	}

	idx := c.allocateCell(key)
	oldCount := c.table[idx].count
	if oldCount > math.MaxInt64-delta {
		return ErrOverflow
	}

	c.total += delta
	newCount := oldCount + delta
	c.hist.Move(oldCount, newCount)
	c.table[idx].count = newCount
	return nil
}

// IncrementString is a convenience wrapper around Increment for string keys.
func (c *Counter) IncrementString(key string, delta int64) error {
	return c.Increment([]byte(key), delta)
}

// Set forces key's count to value, allocating a new cell if necessary.
// value must be non-negative. Setting an absent key to 0 is a no-op and
// does not allocate a cell.
func (c *Counter) Set(key []byte, value int64) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if value < 0 {
		return ErrNegativeValue
	}

	var idx uint32
	if value != 0 {
		idx = c.allocateCell(key)
	} else {
		idx = c.findCell(key, false)
		if !c.table[idx].occupied() {
			return nil
		}
	}

	oldCount := c.table[idx].count
	c.hist.Move(oldCount, value)
	c.total += value - oldCount
	c.table[idx].count = value
	return nil
}

// SetString is a convenience wrapper around Set for string keys.
func (c *Counter) SetString(key string, value int64) error {
	return c.Set([]byte(key), value)
}

// Get returns key's current count, or 0 if key is absent or present with a
// zero count.
func (c *Counter) Get(key []byte) int64 {
	idx := c.findCell(key, false)
	if !c.table[idx].occupied() {
		return 0
	}
	return c.table[idx].count
}

// GetString is a convenience wrapper around Get for string keys.
func (c *Counter) GetString(key string) int64 {
	return c.Get([]byte(key))
}

// Delete zeroes key's count if present; it is a no-op if key is absent.
func (c *Counter) Delete(key []byte) {
	idx := c.findCell(key, false)
	if !c.table[idx].occupied() {
		return
	}
	oldCount := c.table[idx].count
	c.hist.Move(oldCount, 0)
	c.total -= oldCount
	c.table[idx].count = 0
}

// DeleteString is a convenience wrapper around Delete for string keys.
func (c *Counter) DeleteString(key string) {
	c.Delete([]byte(key))
}

// KV is one (key, count) pair, used both by Update's pair-iterable source
// and by IterateItems.
type KV struct {
	Key   []byte
	Count int64
}

// Update merges a source into the counter. The accepted source shapes are:
// map[string]int64 (each value added via Increment), *Counter (iterated as
// key-value pairs and merged the same way Increment would apply them),
// []string (each incremented once), or []KV (each incremented by its
// Count). Any other type is rejected with ErrUnsupportedSource. Errors
// short-circuit: the counter retains whatever partial updates were already
// applied before the failing item, matching the streaming nature of the
// underlying operations.
func (c *Counter) Update(source any) error {
	switch src := source.(type) {
	case map[string]int64:
		for k, v := range src {
			if err := c.IncrementString(k, v); err != nil {
				return err
			}
		}
	case *Counter:
		it := src.IterateItems()
		for it.Next() {
			if err := c.Increment(it.Key(), it.Count()); err != nil {
				return err
			}
		}
	case []string:
		for _, k := range src {
			if err := c.IncrementString(k, 1); err != nil {
				return err
			}
		}
	case []KV:
		for _, kv := range src {
			if err := c.Increment(kv.Key, kv.Count); err != nil {
				return err
			}
		}
	default:
		return ErrUnsupportedSource
	}
	return nil
}

// Total returns the sum of every occupied cell's count.
func (c *Counter) Total() int64 {
	return c.total
}

// Size returns the number of occupied cells with a non-zero count.
func (c *Counter) Size() uint32 {
	return c.size - c.hist.At(0)
}

// Buckets returns the fixed bucket array size B.
func (c *Counter) Buckets() uint32 {
	return uint32(len(c.table))
}

// Cardinality returns Size() before any prune has ever run (when it is
// exact), or the HyperLogLog estimate afterward, rounded down. Once a
// prune discards entries, only the sketch remembers they existed. The
// sketch has no decrement operation, so keys that were deleted or evicted
// still count toward the estimate; a key inserted again after deletion
// hashes to the same value and is not counted a second time.
func (c *Counter) Cardinality() uint64 {
	if c.maxPrune == 0 {
		return uint64(c.Size())
	}
	return c.hll.Estimate()
}

// Quality is Cardinality divided by the 75% occupancy limit, an indicator
// of how close the counter is running to losing long-tail accuracy.
func (c *Counter) Quality() float64 {
	limit := (c.Buckets() / 4) * 3
	return float64(c.Cardinality()) / float64(limit)
}

// Mem returns an estimate, in bytes, of the counter's total allocation:
// the fixed cell array, the owned key byte buffers, and the histogram.
func (c *Counter) Mem() uint64 {
	return uint64(len(c.table))*uint64(cellSize) + c.strAllocated + histogram.Bins*4
}

// MaxPrune returns the highest boundary ever passed to a prune, or 0 if
// prune has never run.
func (c *Counter) MaxPrune() int64 {
	return c.maxPrune
}

// HistogramDump returns the (lower, upper, count) triple for every bin
// except the saturation sentinel at bin 255.
func (c *Counter) HistogramDump() []histogram.Bucket {
	return c.hist.Dump()
}
