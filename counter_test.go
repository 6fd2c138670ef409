package freqtable

import "testing"

func TestIncrementAndGet(t *testing.T) {
	c, _ := New(16)
	if err := c.IncrementString("foo", 3); err != nil {
		t.Fatalf("error incrementing: %v", err)
	}
	if err := c.IncrementString("foo", 2); err != nil {
		t.Fatalf("error incrementing: %v", err)
	}
	if got := c.GetString("foo"); got != 5 {
		t.Errorf("foo should be 5, found %d", got)
	}
	if c.Total() != 5 {
		t.Errorf("total should be 5, found %d", c.Total())
	}
	if c.Size() != 1 {
		t.Errorf("size should be 1, found %d", c.Size())
	}
	if c.Cardinality() != 1 {
		t.Errorf("cardinality should be 1, found %d", c.Cardinality())
	}
}

func TestIncrementZeroDeltaIsNoOp(t *testing.T) {
	c, _ := New(16)
	if err := c.IncrementString("foo", 0); err != nil {
		t.Fatalf("error incrementing by 0: %v", err)
	}
	if c.GetString("foo") != 0 {
		t.Errorf("foo should still be absent")
	}
	if c.Size() != 0 {
		t.Errorf("size should be 0, found %d", c.Size())
	}
}

func TestIncrementNegativeDeltaFails(t *testing.T) {
	c, _ := New(16)
	if err := c.IncrementString("foo", -1); err != ErrNegativeDelta {
		t.Errorf("negative delta should fail with ErrNegativeDelta, got %v", err)
	}
}

func TestIncrementOverflowLeavesCellUnchanged(t *testing.T) {
	c, _ := New(16)
	if err := c.IncrementString("foo", maxInt64()); err != nil {
		t.Fatalf("error incrementing: %v", err)
	}
	if err := c.IncrementString("foo", 1); err != ErrOverflow {
		t.Errorf("overflow should fail with ErrOverflow, got %v", err)
	}
	if got := c.GetString("foo"); got != maxInt64() {
		t.Errorf("count should be unchanged after overflow, found %d", got)
	}
}

func maxInt64() int64 {
	return 1<<63 - 1
}

func TestSetZeroOnAbsentKeyDoesNotAllocate(t *testing.T) {
	c, _ := New(16)
	if err := c.SetString("foo", 0); err != nil {
		t.Fatalf("error setting absent key to 0: %v", err)
	}
	if c.Size() != 0 {
		t.Errorf("setting an absent key to 0 should not allocate, size is %d", c.Size())
	}
}

func TestSetNegativeValueFails(t *testing.T) {
	c, _ := New(16)
	if err := c.SetString("foo", -1); err != ErrNegativeValue {
		t.Errorf("negative value should fail with ErrNegativeValue, got %v", err)
	}
}

func TestSetThenSetZeroPreservesHistogramAccounting(t *testing.T) {
	c, _ := New(16)
	if err := c.SetString("foo", 5); err != nil {
		t.Fatalf("error setting: %v", err)
	}
	if c.hist.At(histogramBin(5)) != 1 {
		t.Errorf("bin for count 5 should hold 1 entry")
	}
	if err := c.SetString("foo", 0); err != nil {
		t.Fatalf("error setting to 0: %v", err)
	}
	if c.hist.At(histogramBin(0)) != 1 {
		t.Errorf("bin for count 0 should hold 1 entry after set to 0")
	}
	if c.hist.At(histogramBin(5)) != 0 {
		t.Errorf("bin for count 5 should be empty after set to 0")
	}
	// A zero-count cell remains occupied for probe-chain purposes but is
	// excluded from Size.
	if c.Size() != 0 {
		t.Errorf("size should exclude zero-count cells, found %d", c.Size())
	}
}

func TestDeleteAbsentKeyIsNoOp(t *testing.T) {
	c, _ := New(16)
	c.DeleteString("foo")
	if c.Size() != 0 {
		t.Errorf("size should remain 0, found %d", c.Size())
	}
}

func TestDeletePresentKeyZeroesCount(t *testing.T) {
	c, _ := New(16)
	c.IncrementString("foo", 4)
	c.DeleteString("foo")
	if got := c.GetString("foo"); got != 0 {
		t.Errorf("foo should read back as 0 after delete, found %d", got)
	}
	if c.Total() != 0 {
		t.Errorf("total should be 0 after delete, found %d", c.Total())
	}
}

func TestUpdateFromMap(t *testing.T) {
	c, _ := New(16)
	if err := c.Update(map[string]int64{"foo": 2, "bar": 3}); err != nil {
		t.Fatalf("error updating from map: %v", err)
	}
	if c.GetString("foo") != 2 || c.GetString("bar") != 3 {
		t.Errorf("counts after map update are wrong: foo=%d bar=%d", c.GetString("foo"), c.GetString("bar"))
	}
}

func TestUpdateFromStringSlice(t *testing.T) {
	c, _ := New(16)
	if err := c.Update([]string{"foo", "foo", "bar"}); err != nil {
		t.Fatalf("error updating from string slice: %v", err)
	}
	if c.GetString("foo") != 2 || c.GetString("bar") != 1 {
		t.Errorf("counts after slice update are wrong: foo=%d bar=%d", c.GetString("foo"), c.GetString("bar"))
	}
}

func TestUpdateFromKVSliceMatchesSequentialIncrements(t *testing.T) {
	viaUpdate, _ := New(16)
	viaIncrements, _ := New(16)

	kvs := []KV{
		{Key: []byte("a"), Count: 1},
		{Key: []byte("b"), Count: 2},
		{Key: []byte("a"), Count: 3},
		{Key: []byte("c"), Count: 1},
		{Key: []byte("b"), Count: 1},
		{Key: []byte("a"), Count: 1},
	}
	if err := viaUpdate.Update(kvs); err != nil {
		t.Fatalf("error updating from KV slice: %v", err)
	}
	for _, kv := range kvs {
		if err := viaIncrements.Increment(kv.Key, kv.Count); err != nil {
			t.Fatalf("error incrementing: %v", err)
		}
	}

	for _, key := range []string{"a", "b", "c"} {
		if viaUpdate.GetString(key) != viaIncrements.GetString(key) {
			t.Errorf("key %q diverged: update=%d increments=%d", key,
				viaUpdate.GetString(key), viaIncrements.GetString(key))
		}
	}
}

func TestUpdateFromCounterMergesLikeIncrements(t *testing.T) {
	source, _ := New(16)
	source.IncrementString("foo", 2)
	source.IncrementString("bar", 5)

	dest, _ := New(16)
	dest.IncrementString("foo", 1)

	if err := dest.Update(source); err != nil {
		t.Fatalf("error updating from counter: %v", err)
	}
	if dest.GetString("foo") != 3 {
		t.Errorf("foo should be 3, found %d", dest.GetString("foo"))
	}
	if dest.GetString("bar") != 5 {
		t.Errorf("bar should be 5, found %d", dest.GetString("bar"))
	}
}

func TestUpdateUnsupportedSourceFails(t *testing.T) {
	c, _ := New(16)
	if err := c.Update(42); err != ErrUnsupportedSource {
		t.Errorf("unsupported source should fail with ErrUnsupportedSource, got %v", err)
	}
}

func TestMemIncludesTableKeysAndHistogram(t *testing.T) {
	c, _ := New(16)
	before := c.Mem()
	c.IncrementString("foo", 1)
	after := c.Mem()
	if after <= before {
		t.Errorf("Mem should grow after allocating a key, before=%d after=%d", before, after)
	}
}

func TestQualityReflectsOccupancy(t *testing.T) {
	c, _ := New(16)
	for i := 0; i < 4; i++ {
		c.IncrementString(string(rune('a'+i)), 1)
	}
	// 4 entries against a 75% limit of 12 -> quality 1/3.
	got := c.Quality()
	if got < 0.33 || got > 0.34 {
		t.Errorf("quality should be close to 0.333, found %f", got)
	}
}

func histogramBin(count int64) uint8 {
	if count < 16 {
		return uint8(count)
	}
	panic("test helper only covers exact-range counts")
}
