package freqtable

import "errors"

// Sentinel errors matching the taxonomy a caller can test against with
// errors.Is. Single-key write operations leave the counter unchanged
// whenever one of these is returned; Update is not atomic and keeps the
// items it applied before the failing one.
var (
	ErrInvalidKey        = errors.New("freqtable: key contains a null byte")
	ErrNegativeValue     = errors.New("freqtable: value must not be negative")
	ErrNegativeDelta     = errors.New("freqtable: delta must not be negative")
	ErrOverflow          = errors.New("freqtable: count overflow")
	ErrTooFewBuckets     = errors.New("freqtable: the number of buckets must be at least 4")
	ErrTooManyBuckets    = errors.New("freqtable: the number of buckets is too large")
	ErrMalformedState    = errors.New("freqtable: malformed serialized state")
	ErrUnsupportedSource = errors.New("freqtable: unsupported update source type")
)
