// Package unsaferow builds rows in the UnsafeRow binary format.
//
// A row is laid out as three back to back sections:
//
//	null bitmap    ceil(columns/64) 64-bit words, bit i set when column i is null
//	fixed slots    one 8-byte word per column
//	variable data  variable length values, each zero padded to a multiple of 8 bytes
//
// A fixed slot holds either the value itself, written at the start of the slot in host
// byte order, or a reference offset<<32 | length to a value in the variable data. The
// offset is relative to the start of the variable data.
package unsaferow

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/squareup/unsaferow/charset"
	"github.com/squareup/unsaferow/common"
	"github.com/squareup/unsaferow/errors"
)

// Options configures a RowBuilder. The zero value writes text unconverted and supports
// 128-bit numerics.
type Options struct {
	Transcoder             charset.Transcoder
	DisableInt128          bool
	InitialVarDataCapacity int
}

// RowBuilder builds one row at a time. Columns are appended in order, exactly once
// each, with AppendNull or one of the value appends. A RowBuilder is not safe for
// concurrent use.
//
// Appending past the column count, or to a builder whose previous append failed, is a
// programming error and panics.
type RowBuilder struct {
	colCount   int
	bitmap     []byte
	fixed      []byte
	arena      *Arena
	nextIndex  int
	failed     bool
	transcoder charset.Transcoder
	int128     bool
}

func NewRowBuilder(colCount int) *RowBuilder {
	return NewRowBuilderWithOptions(colCount, Options{})
}

func NewRowBuilderWithOptions(colCount int, opts Options) *RowBuilder {
	checkColCount(colCount)
	transcoder := opts.Transcoder
	if transcoder == nil {
		transcoder = charset.Identity()
	}
	return &RowBuilder{
		colCount:   colCount,
		bitmap:     make([]byte, BitmapSize(colCount)),
		fixed:      make([]byte, colCount*8),
		arena:      NewArena(opts.InitialVarDataCapacity),
		transcoder: transcoder,
		int128:     !opts.DisableInt128,
	}
}

// BitmapSize returns the size in bytes of the null bitmap for colCount columns.
func BitmapSize(colCount int) int {
	return ((colCount + 63) / 64) * 8
}

// Reset prepares the builder for a new row of colCount columns. Allocated memory is kept.
func (b *RowBuilder) Reset(colCount int) {
	checkColCount(colCount)
	bmSize := BitmapSize(colCount)
	if cap(b.bitmap) >= bmSize {
		b.bitmap = b.bitmap[:bmSize]
		for i := range b.bitmap {
			b.bitmap[i] = 0
		}
	} else {
		b.bitmap = make([]byte, bmSize)
	}
	if cap(b.fixed) >= colCount*8 {
		b.fixed = b.fixed[:colCount*8]
		for i := range b.fixed {
			b.fixed[i] = 0
		}
	} else {
		b.fixed = make([]byte, colCount*8)
	}
	b.arena.Reset()
	b.colCount = colCount
	b.nextIndex = 0
	b.failed = false
}

func checkColCount(colCount int) {
	if colCount <= 0 {
		panic(errors.NewContractViolationError(fmt.Sprintf("column count must be > 0, got %d", colCount)))
	}
}

func (b *RowBuilder) ColumnCount() int {
	return b.colCount
}

// NextIndex is the index of the column the next append writes.
func (b *RowBuilder) NextIndex() int {
	return b.nextIndex
}

// Complete reports whether every column has been appended.
func (b *RowBuilder) Complete() bool {
	return b.nextIndex == b.colCount
}

func (b *RowBuilder) BitmapSize() int {
	return len(b.bitmap)
}

func (b *RowBuilder) FixedSize() int {
	return len(b.fixed)
}

func (b *RowBuilder) VarSize() int {
	return b.arena.Len()
}

// Size is the size in bytes of the serialized row.
func (b *RowBuilder) Size() int {
	return b.BitmapSize() + b.FixedSize() + b.VarSize()
}

// AppendNull marks the next column as null. Its slot stays zero.
func (b *RowBuilder) AppendNull() {
	idx := b.checkAppend()
	offset := (idx >> 6) * 8
	mask := uint64(1) << (idx & 0x3F)
	v, _ := common.ReadUint64Native(b.bitmap, offset)
	common.PutUint64Native(b.bitmap[offset:], v|mask)
	b.nextIndex++
}

func (b *RowBuilder) AppendInt16(v int16) {
	b.putWord(EncodeInt16(v))
}

func (b *RowBuilder) AppendInt32(v int32) {
	b.putWord(EncodeInt32(v))
}

func (b *RowBuilder) AppendInt64(v int64) {
	b.putWord(EncodeInt64(v))
}

func (b *RowBuilder) AppendFloat32(v float32) {
	b.putWord(EncodeFloat32(v))
}

func (b *RowBuilder) AppendFloat64(v float64) {
	b.putWord(EncodeFloat64(v))
}

func (b *RowBuilder) AppendDate(v common.Date) {
	b.putWord(EncodeDate(v))
}

func (b *RowBuilder) AppendTimestamp(v common.Timestamp) {
	b.putWord(EncodeTimestamp(v))
}

// AppendBytes writes a BYTEA value to the variable length region.
func (b *RowBuilder) AppendBytes(v []byte) error {
	return b.putVarData(v)
}

// AppendText converts a TEXT value to the client encoding and writes it to the variable
// length region. The recorded length is the length after conversion.
func (b *RowBuilder) AppendText(v string) error {
	b.checkAppend()
	data := common.StringToByteSliceZeroCopy(v)
	converted, err := b.transcoder.ServerToClient(data)
	if err != nil {
		b.failed = true
		return err
	}
	return b.putVarData(converted)
}

// AppendNumeric writes a NUMERIC value. colType must carry the declared precision and
// scale.
func (b *RowBuilder) AppendNumeric(v common.Numeric, colType common.ColumnType) error {
	b.checkAppend()
	enc, err := EncodeNumeric(v, colType, b.int128)
	if err != nil {
		b.failed = true
		return err
	}
	if enc.Blob == nil {
		b.putWord(enc.Inline)
		return nil
	}
	return b.putVarData(enc.Blob)
}

// AppendValue appends a Go value as a column of colType. Accepted values are the Go
// integer types for the integer columns, float32 or float64 for REAL and DOUBLE (a float64
// REAL must be within the float32 range), []byte for BYTEA, string
// or []byte for TEXT, common.Numeric or decimal.Decimal for NUMERIC, and common.Date,
// common.Timestamp or time.Time for DATE and TIMESTAMPTZ.
func (b *RowBuilder) AppendValue(value interface{}, colType common.ColumnType) error {
	b.checkAppend()
	var err error
	switch colType.Type {
	case common.TypeSmallInt, common.TypeInt, common.TypeBigInt:
		err = b.appendIntValue(value, colType)
	case common.TypeReal:
		switch v := value.(type) {
		case float32:
			b.AppendFloat32(v)
		case float64:
			if math.Abs(v) > math.MaxFloat32 && !math.IsInf(v, 0) {
				err = errors.WithStack(errors.NewValueOutOfRangeError(fmt.Sprintf("%g does not fit in REAL", v)))
			} else {
				b.AppendFloat32(float32(v))
			}
		default:
			err = invalidValue(value, colType)
		}
	case common.TypeDouble:
		switch v := value.(type) {
		case float64:
			b.AppendFloat64(v)
		case float32:
			b.AppendFloat64(float64(v))
		default:
			err = invalidValue(value, colType)
		}
	case common.TypeBytea:
		switch v := value.(type) {
		case []byte:
			err = b.AppendBytes(v)
		default:
			err = invalidValue(value, colType)
		}
	case common.TypeText:
		switch v := value.(type) {
		case string:
			err = b.AppendText(v)
		case []byte:
			err = b.AppendText(common.ByteSliceToStringZeroCopy(v))
		default:
			err = invalidValue(value, colType)
		}
	case common.TypeNumeric:
		switch v := value.(type) {
		case common.Numeric:
			err = b.AppendNumeric(v, colType)
		case decimal.Decimal:
			err = b.AppendNumeric(common.NewNumeric(v), colType)
		default:
			err = invalidValue(value, colType)
		}
	case common.TypeDate:
		switch v := value.(type) {
		case common.Date:
			b.AppendDate(v)
		case time.Time:
			b.AppendDate(common.DateFromTime(v))
		default:
			err = invalidValue(value, colType)
		}
	case common.TypeTimestampTz:
		switch v := value.(type) {
		case common.Timestamp:
			b.AppendTimestamp(v)
		case time.Time:
			b.AppendTimestamp(common.TimestampFromTime(v))
		default:
			err = invalidValue(value, colType)
		}
	default:
		err = errors.WithStack(errors.NewUnsupportedTypeError(colType.String()))
	}
	if err != nil {
		b.failed = true
	}
	return err
}

func (b *RowBuilder) appendIntValue(value interface{}, colType common.ColumnType) error {
	var v int64
	switch iv := value.(type) {
	case int16:
		v = int64(iv)
	case int32:
		v = int64(iv)
	case int64:
		v = iv
	case int:
		v = int64(iv)
	case int8:
		v = int64(iv)
	default:
		return invalidValue(value, colType)
	}
	return b.AppendInt(v, colType)
}

// AppendInt writes v as a SMALLINT, INT or BIGINT column, failing if it is out of the
// column type's range.
func (b *RowBuilder) AppendInt(v int64, colType common.ColumnType) error {
	b.checkAppend()
	switch colType.Type {
	case common.TypeSmallInt:
		if v < math.MinInt16 || v > math.MaxInt16 {
			b.failed = true
			return errors.WithStack(errors.NewValueOutOfRangeError(fmt.Sprintf("%d does not fit in SMALLINT", v)))
		}
		b.AppendInt16(int16(v))
	case common.TypeInt:
		if v < math.MinInt32 || v > math.MaxInt32 {
			b.failed = true
			return errors.WithStack(errors.NewValueOutOfRangeError(fmt.Sprintf("%d does not fit in INT", v)))
		}
		b.AppendInt32(int32(v))
	case common.TypeBigInt:
		b.AppendInt64(v)
	default:
		b.failed = true
		return invalidValue(v, colType)
	}
	return nil
}

func invalidValue(value interface{}, colType common.ColumnType) error {
	return errors.WithStack(errors.NewInvalidValueError(fmt.Sprintf("%T is not a valid value for a %s column", value, colType.String())))
}

func (b *RowBuilder) checkAppend() int {
	if b.failed {
		panic(errors.NewContractViolationError("append to a row builder after a failed append, the builder must be reset"))
	}
	if b.nextIndex >= b.colCount {
		panic(errors.NewContractViolationError(fmt.Sprintf("append to column %d of a row with %d columns", b.nextIndex, b.colCount)))
	}
	return b.nextIndex
}

func (b *RowBuilder) putWord(w Word) {
	idx := b.checkAppend()
	copy(b.fixed[idx*8:], w[:])
	b.nextIndex++
}

func (b *RowBuilder) putVarData(data []byte) error {
	b.checkAppend()
	offset, length := b.arena.Append(data)
	w, err := PackReference(offset, length)
	if err != nil {
		b.failed = true
		return err
	}
	b.putWord(w)
	return nil
}

// Bytes returns the serialized row in a newly allocated slice. The row must be complete.
func (b *RowBuilder) Bytes() []byte {
	return b.AppendTo(make([]byte, 0, b.Size()))
}

// AppendTo appends the serialized row to buffer. The row must be complete.
func (b *RowBuilder) AppendTo(buffer []byte) []byte {
	if !b.Complete() {
		panic(errors.NewContractViolationError(fmt.Sprintf("row has %d of %d columns", b.nextIndex, b.colCount)))
	}
	buffer = append(buffer, b.bitmap...)
	buffer = append(buffer, b.fixed...)
	return append(buffer, b.arena.Bytes()...)
}
