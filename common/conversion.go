package common

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/squareup/unsaferow/errors"
)

// NullLiteral is the text form of a null value.
const NullLiteral = "NULL"

var dateLayouts = []string{"2006-01-02"}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// AppendTextToColumn parses the text form of a value of the column's type and appends it.
// Text that is exactly NULL appends a null.
func (r *Rows) AppendTextToColumn(colIndex int, text string) error {
	if text == NullLiteral {
		r.AppendNullToColumn(colIndex)
		return nil
	}
	colType := r.columnTypes[colIndex]
	switch colType.Type {
	case TypeSmallInt, TypeInt, TypeBigInt:
		bitSize := map[Type]int{TypeSmallInt: 16, TypeInt: 32, TypeBigInt: 64}[colType.Type]
		v, err := strconv.ParseInt(text, 10, bitSize)
		if err != nil {
			return parseError(err, colType, text)
		}
		r.AppendInt64ToColumn(colIndex, v)
	case TypeReal:
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return parseError(err, colType, text)
		}
		r.AppendFloat32ToColumn(colIndex, float32(v))
	case TypeDouble:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return parseError(err, colType, text)
		}
		r.AppendFloat64ToColumn(colIndex, v)
	case TypeBytea:
		// hex format, as output by bytea_output = 'hex'
		if !strings.HasPrefix(text, `\x`) {
			r.AppendBytesToColumn(colIndex, []byte(text))
			return nil
		}
		b, err := hex.DecodeString(text[2:])
		if err != nil {
			return errors.WithStack(errors.NewInvalidTextRepresentationError("bytea", text))
		}
		r.AppendBytesToColumn(colIndex, b)
	case TypeText:
		r.AppendStringToColumn(colIndex, text)
	case TypeNumeric:
		v, err := NewNumericFromString(text)
		if err != nil {
			return err
		}
		r.AppendNumericToColumn(colIndex, v)
	case TypeDate:
		tm, err := parseTime(dateLayouts, text)
		if err != nil {
			return errors.WithStack(errors.NewInvalidTextRepresentationError("date", text))
		}
		r.AppendDateToColumn(colIndex, DateFromTime(tm))
	case TypeTimestampTz:
		tm, err := parseTime(timestampLayouts, text)
		if err != nil {
			return errors.WithStack(errors.NewInvalidTextRepresentationError("timestamptz", text))
		}
		r.AppendTimestampToColumn(colIndex, TimestampFromTime(tm))
	default:
		return errors.WithStack(errors.NewUnsupportedTypeError(colType.String()))
	}
	return nil
}

func parseTime(layouts []string, text string) (time.Time, error) {
	var err error
	for _, layout := range layouts {
		var tm time.Time
		tm, err = time.ParseInLocation(layout, text, time.UTC)
		if err == nil {
			return tm, nil
		}
	}
	return time.Time{}, err
}

func parseError(err error, colType ColumnType, text string) error {
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return errors.WithStack(errors.NewValueOutOfRangeError(text + " does not fit in " + colType.String()))
	}
	return errors.WithStack(errors.NewInvalidTextRepresentationError(strings.ToLower(colType.String()), text))
}
