package freqtable

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/kwertop/freqtable/histogram"
	"github.com/kwertop/freqtable/sketch"
)

// cellWireSize is the per-cell footprint of the table_bytes portion of the
// wire payload: one occupancy flag byte followed by an 8-byte count. Unlike
// the C original, the key pointer itself can't be serialized meaningfully,
// so only its non-null/null role as an occupancy marker is carried, as an
// explicit flag.
const cellWireSize = 1 + 8

// WriteTo writes the counter's binary serialization payload to stream and
// returns the number of bytes written. The payload is, in order: buckets,
// total, str_allocated, size, max_prune, table_bytes, strings_blob,
// histogram_bytes, hll_bytes.
func (c *Counter) WriteTo(stream io.Writer) (int64, error) {
	var written int64

	header := []any{
		c.Buckets(),
		c.total,
		c.strAllocated,
		c.size,
		c.maxPrune,
	}
	for _, field := range header {
		if err := binary.Write(stream, binary.LittleEndian, field); err != nil {
			return written, err
		}
		written += int64(binary.Size(field))
	}

	tableBytes := make([]byte, 0, len(c.table)*cellWireSize)
	stringsBlob := make([]byte, 0, c.strAllocated)
	for i := range c.table {
		cl := &c.table[i]
		var flag byte
		var count int64
		if cl.occupied() {
			flag = 1
			count = cl.count
			stringsBlob = append(stringsBlob, cl.key...)
			stringsBlob = append(stringsBlob, 0)
		}
		tableBytes = append(tableBytes, flag,
			byte(count), byte(count>>8), byte(count>>16), byte(count>>24),
			byte(count>>32), byte(count>>40), byte(count>>48), byte(count>>56))
	}

	n, err := stream.Write(tableBytes)
	written += int64(n)
	if err != nil {
		return written, err
	}

	n, err = stream.Write(stringsBlob)
	written += int64(n)
	if err != nil {
		return written, err
	}

	n, err = stream.Write(c.hist.Bytes())
	written += int64(n)
	if err != nil {
		return written, err
	}

	n, err = stream.Write(c.hll.Registers())
	written += int64(n)
	if err != nil {
		return written, err
	}

	return written, nil
}

// Export is a convenience wrapper around WriteTo that returns the payload
// as a byte slice, for callers who want the blob rather than a stream.
func (c *Counter) Export() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadFromCounter reads a serialization payload from stream and returns a
// freshly constructed Counter sized to the payload's stored bucket count:
// the restorer always constructs a fresh counter at the stored buckets
// value before populating it.
func ReadFromCounter(stream io.Reader) (*Counter, error) {
	var buckets, size uint32
	var total, maxPrune int64
	var strAllocated uint64

	for _, field := range []any{&buckets, &total, &strAllocated, &size, &maxPrune} {
		if err := binary.Read(stream, binary.LittleEndian, field); err != nil {
			return nil, ErrMalformedState
		}
	}
	if buckets < 4 || buckets&(buckets-1) != 0 {
		return nil, ErrMalformedState
	}

	c, err := New(int(buckets))
	if err != nil {
		return nil, ErrMalformedState
	}
	c.total = total
	c.strAllocated = strAllocated
	c.size = size
	c.maxPrune = maxPrune

	tableBytes := make([]byte, int(buckets)*cellWireSize)
	if _, err := io.ReadFull(stream, tableBytes); err != nil {
		return nil, ErrMalformedState
	}

	stringsBlob := make([]byte, strAllocated)
	if _, err := io.ReadFull(stream, stringsBlob); err != nil {
		return nil, ErrMalformedState
	}

	cursor := 0
	for i := uint32(0); i < buckets; i++ {
		off := int(i) * cellWireSize
		flag := tableBytes[off]
		if flag == 0 {
			continue
		}
		count := int64(tableBytes[off+1]) | int64(tableBytes[off+2])<<8 |
			int64(tableBytes[off+3])<<16 | int64(tableBytes[off+4])<<24 |
			int64(tableBytes[off+5])<<32 | int64(tableBytes[off+6])<<40 |
			int64(tableBytes[off+7])<<48 | int64(tableBytes[off+8])<<56

		end := bytes.IndexByte(stringsBlob[cursor:], 0)
		if end < 0 {
			return nil, ErrMalformedState
		}
		key := make([]byte, end)
		copy(key, stringsBlob[cursor:cursor+end])
		cursor += end + 1
		if cursor > len(stringsBlob) {
			return nil, ErrMalformedState
		}

		c.table[i].key = key
		c.table[i].count = count
	}

	histBytes := make([]byte, histogram.Bins*4)
	if _, err := io.ReadFull(stream, histBytes); err != nil {
		return nil, ErrMalformedState
	}
	c.hist.FromBytes(histBytes)

	hllBytes := make([]byte, sketch.NumRegisters)
	if _, err := io.ReadFull(stream, hllBytes); err != nil {
		return nil, ErrMalformedState
	}
	c.hll.LoadRegisters(hllBytes)

	return c, nil
}

// Import is a convenience wrapper around ReadFromCounter for callers who
// have the payload as a byte slice rather than a stream.
func Import(data []byte) (*Counter, error) {
	return ReadFromCounter(bytes.NewReader(data))
}
