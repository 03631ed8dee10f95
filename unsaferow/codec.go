package unsaferow

import (
	"fmt"
	"math"
	"strconv"

	"github.com/squareup/unsaferow/common"
	"github.com/squareup/unsaferow/errors"
)

const (
	// MaxInt64Precision is the largest numeric precision written inline as an int64.
	MaxInt64Precision = 18
	// MaxInt128Precision is the largest numeric precision the format supports.
	MaxInt128Precision = 38
)

// Word is the content of one fixed width slot.
type Word [8]byte

func (w Word) Uint64() uint64 {
	u, _ := common.ReadUint64Native(w[:], 0)
	return u
}

// Fixed width values are written at the start of the slot in host byte order, the rest
// of the slot stays zero.

func EncodeInt16(v int16) (w Word) {
	common.PutUint16Native(w[:], uint16(v))
	return w
}

func EncodeInt32(v int32) (w Word) {
	common.PutUint32Native(w[:], uint32(v))
	return w
}

func EncodeInt64(v int64) (w Word) {
	common.PutUint64Native(w[:], uint64(v))
	return w
}

func EncodeFloat32(v float32) (w Word) {
	common.PutFloat32Native(w[:], v)
	return w
}

func EncodeFloat64(v float64) (w Word) {
	common.PutFloat64Native(w[:], v)
	return w
}

// EncodeDate writes the number of days since the Unix epoch as an int32.
func EncodeDate(d common.Date) Word {
	return EncodeInt32(d.UnixDays())
}

// EncodeTimestamp writes the number of microseconds since the Unix epoch as an int64.
func EncodeTimestamp(ts common.Timestamp) Word {
	return EncodeInt64(ts.UnixMicros())
}

// PackReference builds the slot word for a value in the variable length region. offset
// is relative to the start of that region.
func PackReference(offset int, length int) (Word, error) {
	if offset > math.MaxUint32 || length > math.MaxUint32 {
		return Word{}, errors.WithStack(errors.NewValueOutOfRangeError(
			fmt.Sprintf("variable length data at offset %d with length %d does not fit in a 32-bit reference", offset, length)))
	}
	return EncodeInt64(int64(uint64(offset)<<32 | uint64(length))), nil
}

// UnpackReference is the inverse of PackReference.
func UnpackReference(w Word) (offset int, length int) {
	u := w.Uint64()
	return int(u >> 32), int(u & math.MaxUint32)
}

// ParseInt64 parses a base 10 integer with an optional leading sign. Unlike strtoll it
// does not stop at the first invalid character: any trailing residue is an error.
func ParseInt64(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, errors.WithStack(errors.NewValueOutOfRangeError(s + " does not fit in a 64-bit integer"))
		}
		return 0, errors.WithStack(errors.NewInvalidTextRepresentationError("int64", s))
	}
	return v, nil
}

// NumericEncoding is a numeric value converted for a row: either an inline word, or a
// blob for the variable length region when Blob is non nil.
type NumericEncoding struct {
	Inline Word
	Blob   []byte
}

// EncodeNumeric converts a numeric of the given column type. Precision up to 18 is
// written inline as an int64 of the unscaled value, precision up to 38 as an Int128 in
// the variable length region.
func EncodeNumeric(v common.Numeric, colType common.ColumnType, int128Enabled bool) (NumericEncoding, error) {
	if v.IsNaN() {
		return NumericEncoding{}, errors.WithStack(errors.NewNotRepresentableError("unsaferow does not support NaN for numeric"))
	}
	if !colType.HasTypmod() {
		return NumericEncoding{}, errors.WithStack(errors.NewUnsupportedTypeError("NUMERIC without precision and scale"))
	}
	precision := colType.DecPrecision
	if precision > MaxInt128Precision {
		return NumericEncoding{}, errors.WithStack(errors.NewValueOutOfRangeError(
			fmt.Sprintf("unsaferow does not support numeric with precision %d", precision)))
	}
	str := v.UnscaledString(colType.DecScale)
	if digitCount(str) > precision {
		return NumericEncoding{}, errors.WithStack(errors.NewValueOutOfRangeError(
			fmt.Sprintf("numeric field overflow, %s does not fit in %s", v.String(), colType.String())))
	}
	if precision <= MaxInt64Precision {
		i, err := ParseInt64(str)
		if err != nil {
			return NumericEncoding{}, err
		}
		return NumericEncoding{Inline: EncodeInt64(i)}, nil
	}
	if !int128Enabled {
		return NumericEncoding{}, errors.WithStack(errors.NewInt128UnsupportedError())
	}
	i, err := ParseInt128(str)
	if err != nil {
		return NumericEncoding{}, err
	}
	b := i.Bytes()
	return NumericEncoding{Blob: b[:]}, nil
}

func digitCount(s string) int {
	n := len(s)
	if n > 0 && (s[0] == '-' || s[0] == '+') {
		n--
	}
	if s == "0" {
		// zero has no significant digits, it fits NUMERIC(p, p)
		return 0
	}
	return n
}
