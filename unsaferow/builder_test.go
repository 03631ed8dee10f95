package unsaferow

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/squareup/unsaferow/charset"
	"github.com/squareup/unsaferow/common"
	"github.com/squareup/unsaferow/errors"
	"github.com/stretchr/testify/require"
)

func newLatin1Builder(t *testing.T, colCount int) *RowBuilder {
	t.Helper()
	tc, err := charset.NewTranscoder("UTF8", "LATIN1", true)
	require.NoError(t, err)
	return NewRowBuilderWithOptions(colCount, Options{Transcoder: tc})
}

func layoutOf(t *testing.T, b *RowBuilder) Layout {
	t.Helper()
	buff := b.Bytes()
	require.Equal(t, b.Size(), len(buff))
	l, err := NewLayout(buff, b.ColumnCount())
	require.NoError(t, err)
	return l
}

func TestSectionSizes(t *testing.T) {
	tests := []struct {
		colCount   int
		bitmapSize int
	}{
		{1, 8}, {63, 8}, {64, 8}, {65, 16}, {128, 16}, {129, 24},
	}
	for _, tt := range tests {
		b := NewRowBuilder(tt.colCount)
		require.Equal(t, tt.bitmapSize, b.BitmapSize())
		require.Equal(t, tt.colCount*8, b.FixedSize())
		require.Equal(t, 0, b.VarSize())
		require.Equal(t, tt.bitmapSize+tt.colCount*8, b.Size())
	}
}

func TestIntNullText(t *testing.T) {
	for _, tt := range []struct {
		name     string
		builder  func(t *testing.T) *RowBuilder
		expected []byte
	}{
		{"utf8", func(t *testing.T) *RowBuilder { return NewRowBuilder(3) }, []byte("café")},
		{"latin1", func(t *testing.T) *RowBuilder { return newLatin1Builder(t, 3) }, []byte{'c', 'a', 'f', 0xe9}},
	} {
		b := tt.builder(t)
		b.AppendInt32(42)
		b.AppendNull()
		require.NoError(t, b.AppendText("café"))
		require.True(t, b.Complete())

		l := layoutOf(t, b)
		require.Equal(t, 8+24+8, len(l.buffer), tt.name)

		bm, _ := common.ReadUint64Native(l.Bitmap(), 0)
		require.Equal(t, uint64(0x02), bm, tt.name)

		require.Equal(t, int32(42), l.Int32(0), tt.name)
		w := l.Word(0)
		require.Equal(t, []byte{0, 0, 0, 0}, w[4:], tt.name)
		require.Equal(t, Word{}, l.Word(1), tt.name)

		offset, length := UnpackReference(l.Word(2))
		require.Equal(t, 0, offset, tt.name)
		require.Equal(t, len(tt.expected), length, tt.name)

		expectedVar := make([]byte, 8)
		copy(expectedVar, tt.expected)
		require.Equal(t, expectedVar, l.VarData(), tt.name)
	}
}

func TestNullAdvancesCursor(t *testing.T) {
	b := NewRowBuilder(3)
	b.AppendNull()
	require.Equal(t, 1, b.NextIndex())
	b.AppendInt64(7)
	require.Equal(t, 2, b.NextIndex())
	b.AppendNull()
	require.True(t, b.Complete())

	l := layoutOf(t, b)
	require.True(t, l.IsNull(0))
	require.False(t, l.IsNull(1))
	require.True(t, l.IsNull(2))
	require.Equal(t, int64(7), l.Int64(1))
	require.Equal(t, Word{}, l.Word(0))
	require.Equal(t, Word{}, l.Word(2))
}

func TestNullBitIsolation(t *testing.T) {
	const colCount = 130
	for _, nullCol := range []int{0, 1, 63, 64, 65, 127, 128, 129} {
		b := NewRowBuilder(colCount)
		for i := 0; i < colCount; i++ {
			if i == nullCol {
				b.AppendNull()
			} else {
				b.AppendInt64(int64(i))
			}
		}
		l := layoutOf(t, b)
		for i := 0; i < colCount; i++ {
			require.Equal(t, i == nullCol, l.IsNull(i), "null col %d col %d", nullCol, i)
			if i != nullCol {
				require.Equal(t, int64(i), l.Int64(i))
			}
		}
		bm := l.Bitmap()
		setBits := 0
		for _, by := range bm {
			for ; by != 0; by &= by - 1 {
				setBits++
			}
		}
		require.Equal(t, 1, setBits)
	}
}

func TestInt64RoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, math.MaxInt64, math.MinInt64, math.MaxInt32 + 1, math.MinInt32 - 1}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < 100; i++ {
		values = append(values, int64(rnd.Uint64()))
	}
	b := NewRowBuilder(len(values))
	for _, v := range values {
		b.AppendInt64(v)
	}
	l := layoutOf(t, b)
	for i, v := range values {
		require.Equal(t, v, l.Int64(i))
	}
}

func TestFixedWidthTypes(t *testing.T) {
	date := common.DateFromTime(time.Date(2021, 10, 19, 0, 0, 0, 0, time.UTC))
	ts := common.TimestampFromTime(time.Date(2021, 10, 19, 12, 30, 15, 500000000, time.UTC))

	b := NewRowBuilder(6)
	b.AppendInt16(-300)
	b.AppendInt32(math.MinInt32)
	b.AppendFloat32(3.25)
	b.AppendFloat64(math.Inf(-1))
	b.AppendDate(date)
	b.AppendTimestamp(ts)
	require.Equal(t, 0, b.VarSize())

	l := layoutOf(t, b)
	require.Equal(t, int16(-300), l.Int16(0))
	require.Equal(t, int32(math.MinInt32), l.Int32(1))
	require.Equal(t, float32(3.25), l.Float32(2))
	require.True(t, math.IsInf(l.Float64(3), -1))
	require.Equal(t, int32(18919), l.Int32(4))
	require.Equal(t, int64(1634646615500000), l.Int64(5))
}

func TestVarDataPadding(t *testing.T) {
	for length := 0; length <= 17; length++ {
		data := make([]byte, length)
		for i := range data {
			data[i] = byte(i + 1)
		}
		b := NewRowBuilder(2)
		require.NoError(t, b.AppendBytes(data))
		require.NoError(t, b.AppendText("x"))
		require.Equal(t, PaddedSize(length)+8, b.VarSize())
		require.Equal(t, 0, b.Size()%8)

		l := layoutOf(t, b)
		got, err := l.VarBytes(0)
		require.NoError(t, err)
		require.Equal(t, data, got)
		for _, pad := range l.VarData()[length:PaddedSize(length)] {
			require.Equal(t, byte(0), pad)
		}
		offset, length2 := UnpackReference(l.Word(1))
		require.Equal(t, PaddedSize(length), offset)
		require.Equal(t, 1, length2)
	}
}

func TestEmptyBytesIsNotNull(t *testing.T) {
	b := NewRowBuilder(1)
	require.NoError(t, b.AppendBytes([]byte{}))
	l := layoutOf(t, b)
	require.False(t, l.IsNull(0))
	require.Equal(t, 0, len(l.VarData()))
	offset, length := UnpackReference(l.Word(0))
	require.Equal(t, 0, offset)
	require.Equal(t, 0, length)
}

func TestSizeIdentity(t *testing.T) {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for iter := 0; iter < 50; iter++ {
		colCount := 1 + rnd.Intn(150)
		b := NewRowBuilder(colCount)
		nulls := make([]bool, colCount)
		varSize := 0
		for i := 0; i < colCount; i++ {
			switch rnd.Intn(4) {
			case 0:
				b.AppendNull()
				nulls[i] = true
			case 1:
				b.AppendInt64(rnd.Int63())
			case 2:
				s := make([]byte, rnd.Intn(40))
				rnd.Read(s)
				require.NoError(t, b.AppendBytes(s))
				varSize += PaddedSize(len(s))
			case 3:
				require.NoError(t, b.AppendText("some text"))
				varSize += 16
			}
		}
		require.Equal(t, varSize, b.VarSize())
		require.Equal(t, BitmapSize(colCount)+8*colCount+varSize, b.Size())
		l := layoutOf(t, b)
		for i, n := range nulls {
			require.Equal(t, n, l.IsNull(i))
		}
	}
}

func TestNumericBoundaries(t *testing.T) {
	b := NewRowBuilder(4)
	require.NoError(t, b.AppendNumeric(mustNumeric(t, "999999999999999999"), common.NewNumericColumnType(18, 0)))
	require.NoError(t, b.AppendNumeric(mustNumeric(t, "-12.5"), common.NewNumericColumnType(5, 2)))
	require.NoError(t, b.AppendNumeric(mustNumeric(t, "1234567890123456789"), common.NewNumericColumnType(19, 0)))
	require.NoError(t, b.AppendNumeric(mustNumeric(t, "-99999999999999999999999999999999999999"), common.NewNumericColumnType(38, 0)))
	require.Equal(t, 2*Int128Size, b.VarSize())

	l := layoutOf(t, b)
	require.Equal(t, int64(999999999999999999), l.Int64(0))
	require.Equal(t, int64(-1250), l.Int64(1))

	offset, length := UnpackReference(l.Word(2))
	require.Equal(t, 0, offset)
	require.Equal(t, Int128Size, length)
	v, err := l.Int128(2)
	require.NoError(t, err)
	require.Equal(t, "1234567890123456789", v.String())

	offset, length = UnpackReference(l.Word(3))
	require.Equal(t, Int128Size, offset)
	require.Equal(t, Int128Size, length)
	v, err = l.Int128(3)
	require.NoError(t, err)
	require.Equal(t, "-99999999999999999999999999999999999999", v.String())
}

func TestNumeric39DigitsRejected(t *testing.T) {
	b := NewRowBuilder(1)
	err := b.AppendNumeric(mustNumeric(t, maxInt128Str), common.NewNumericColumnType(39, 0))
	require.Error(t, err)
	require.Equal(t, errors.ValueOutOfRange, errors.CodeOf(err))

	b.Reset(1)
	require.NoError(t, b.AppendNumeric(mustNumeric(t, "17014118346046923173168730371588410572"), common.NewNumericColumnType(38, 0)))
	l := layoutOf(t, b)
	v, err := l.Int128(0)
	require.NoError(t, err)
	require.Equal(t, "17014118346046923173168730371588410572", v.String())
}

func TestNumericNaNRejected(t *testing.T) {
	for _, p := range []int{5, 18, 19, 38, 39} {
		b := NewRowBuilder(1)
		err := b.AppendNumeric(common.NaNNumeric, common.NewNumericColumnType(p, 0))
		require.Error(t, err)
		require.Equal(t, errors.NotRepresentable, errors.CodeOf(err))
	}
}

func TestInt128Disabled(t *testing.T) {
	b := NewRowBuilderWithOptions(2, Options{DisableInt128: true})
	require.NoError(t, b.AppendNumeric(mustNumeric(t, "1.5"), common.NewNumericColumnType(18, 1)))
	err := b.AppendNumeric(mustNumeric(t, "1.5"), common.NewNumericColumnType(19, 1))
	require.Error(t, err)
	require.Equal(t, errors.Int128Unsupported, errors.CodeOf(err))
}

func TestUntranslatableText(t *testing.T) {
	b := newLatin1Builder(t, 1)
	err := b.AppendText("日本")
	require.Error(t, err)
	require.Equal(t, errors.UntranslatableCharacter, errors.CodeOf(err))
}

func TestAppendPastColumnCountPanics(t *testing.T) {
	b := NewRowBuilder(2)
	b.AppendInt64(1)
	b.AppendNull()
	require.PanicsWithError(t, "URW0002 - Contract violation: append to column 2 of a row with 2 columns", func() {
		b.AppendInt64(3)
	})
	require.Panics(t, func() {
		b.AppendNull()
	})
	require.Panics(t, func() {
		_ = b.AppendText("x")
	})
	require.Equal(t, 0, b.VarSize())
}

func TestInvalidColumnCountPanics(t *testing.T) {
	require.Panics(t, func() {
		NewRowBuilder(0)
	})
	require.Panics(t, func() {
		NewRowBuilder(-1)
	})
	b := NewRowBuilder(1)
	require.Panics(t, func() {
		b.Reset(0)
	})
}

func TestIncompleteRowPanics(t *testing.T) {
	b := NewRowBuilder(2)
	b.AppendInt64(1)
	require.False(t, b.Complete())
	require.PanicsWithError(t, "URW0002 - Contract violation: row has 1 of 2 columns", func() {
		b.Bytes()
	})
}

func TestAppendAfterFailurePanics(t *testing.T) {
	b := NewRowBuilder(2)
	err := b.AppendNumeric(common.NaNNumeric, common.NewNumericColumnType(5, 0))
	require.Error(t, err)
	require.Equal(t, 0, b.NextIndex())
	require.Panics(t, func() {
		b.AppendInt64(1)
	})
	b.Reset(2)
	b.AppendInt64(1)
	b.AppendInt64(2)
	require.True(t, b.Complete())
}

func TestResetReusesBuilder(t *testing.T) {
	b := NewRowBuilder(3)
	b.AppendNull()
	b.AppendInt64(-1)
	require.NoError(t, b.AppendText("a much longer string than the next one"))
	first := b.Bytes()
	capBefore := b.arena.Cap()

	b.Reset(2)
	require.Equal(t, 2, b.ColumnCount())
	require.Equal(t, 0, b.NextIndex())
	require.Equal(t, 0, b.VarSize())
	require.Equal(t, capBefore, b.arena.Cap())
	require.NoError(t, b.AppendText("short"))
	b.AppendNull()

	l := layoutOf(t, b)
	require.Equal(t, 8+16+8, len(l.Bitmap())+len(l.Fixed())+len(l.VarData()))
	require.False(t, l.IsNull(0))
	require.True(t, l.IsNull(1))
	require.Equal(t, Word{}, l.Word(1))
	got, err := l.VarBytes(0)
	require.NoError(t, err)
	require.Equal(t, []byte("short"), got)
	require.Equal(t, []byte{0, 0, 0}, l.VarData()[5:])

	// the earlier row was returned in its own buffer
	prev, err := NewLayout(first, 3)
	require.NoError(t, err)
	require.True(t, prev.IsNull(0))
	require.Equal(t, int64(-1), prev.Int64(1))
}

func TestAppendValue(t *testing.T) {
	date := time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC)
	colTypes := []common.ColumnType{
		common.SmallIntColumnType,
		common.IntColumnType,
		common.BigIntColumnType,
		common.RealColumnType,
		common.DoubleColumnType,
		common.ByteaColumnType,
		common.TextColumnType,
		common.NewNumericColumnType(10, 3),
		common.NewNumericColumnType(20, 0),
		common.DateColumnType,
		common.TimestampTzColumnType,
	}
	values := []interface{}{
		int16(-2),
		int32(100000),
		7,
		float32(1.5),
		float32(2.5),
		[]byte{1, 2, 3},
		[]byte("text"),
		decimal.RequireFromString("1.25"),
		mustNumeric(t, "12345678901234567890"),
		date,
		date,
	}
	b := NewRowBuilder(len(colTypes))
	for i, v := range values {
		require.NoError(t, b.AppendValue(v, colTypes[i]))
	}
	l := layoutOf(t, b)
	require.Equal(t, int16(-2), l.Int16(0))
	require.Equal(t, int32(100000), l.Int32(1))
	require.Equal(t, int64(7), l.Int64(2))
	require.Equal(t, float32(1.5), l.Float32(3))
	require.Equal(t, 2.5, l.Float64(4))
	got, err := l.VarBytes(5)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, got)
	got, err = l.VarBytes(6)
	require.NoError(t, err)
	require.Equal(t, []byte("text"), got)
	require.Equal(t, int64(1250), l.Int64(7))
	v, err := l.Int128(8)
	require.NoError(t, err)
	require.Equal(t, "12345678901234567890", v.String())
	require.Equal(t, int32(10958), l.Int32(9))
	require.Equal(t, int64(946771200000000), l.Int64(10))
}

func TestAppendValueErrors(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		colType common.ColumnType
		code    errors.ErrorCode
	}{
		{"string as int", "1", common.IntColumnType, errors.InvalidValue},
		{"string as real", "1.5", common.RealColumnType, errors.InvalidValue},
		{"float64 overflows real", 1e300, common.RealColumnType, errors.ValueOutOfRange},
		{"int as text", 1, common.TextColumnType, errors.InvalidValue},
		{"string as bytea", "x", common.ByteaColumnType, errors.InvalidValue},
		{"float as numeric", 1.5, common.NewNumericColumnType(5, 2), errors.InvalidValue},
		{"string as date", "2021-01-01", common.DateColumnType, errors.InvalidValue},
		{"smallint overflow", 40000, common.SmallIntColumnType, errors.ValueOutOfRange},
		{"int overflow", int64(math.MaxInt32) + 1, common.IntColumnType, errors.ValueOutOfRange},
		{"boolean", true, common.BooleanColumnType, errors.UnsupportedType},
		{"time", "12:00", common.TimeColumnType, errors.UnsupportedType},
		{"unconstrained numeric", mustNumeric(t, "1"), common.UnconstrainedNumericColumnType, errors.UnsupportedType},
	}
	for _, tt := range tests {
		b := NewRowBuilder(1)
		err := b.AppendValue(tt.value, tt.colType)
		require.Error(t, err, tt.name)
		require.Equal(t, tt.code, errors.CodeOf(err), tt.name)
		require.Equal(t, 0, b.NextIndex(), tt.name)
	}
}

func TestAppendFloat64ToReal(t *testing.T) {
	b := NewRowBuilder(3)
	require.NoError(t, b.AppendValue(1.5, common.RealColumnType))
	require.NoError(t, b.AppendValue(math.Inf(1), common.RealColumnType))
	require.NoError(t, b.AppendValue(-math.MaxFloat32, common.RealColumnType))
	l := layoutOf(t, b)
	require.Equal(t, float32(1.5), l.Float32(0))
	require.True(t, math.IsInf(float64(l.Float32(1)), 1))
	require.Equal(t, float32(-math.MaxFloat32), l.Float32(2))
}
