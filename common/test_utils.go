package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Test utils

// ColumnTypesOf infers a column type for each of values.
func ColumnTypesOf(values ...interface{}) []ColumnType {
	colTypes := make([]ColumnType, len(values))
	for i, v := range values {
		colTypes[i] = InferColumnType(v)
	}
	return colTypes
}

// AppendRow appends one row of Go values to rows. A nil value appends a null, NUMERIC
// values are given as strings.
func AppendRow(t *testing.T, rows *Rows, colVals ...interface{}) {
	t.Helper()
	require.Equal(t, len(rows.ColumnTypes()), len(colVals))
	for i, colType := range rows.ColumnTypes() {
		colVal := colVals[i]
		if colVal == nil {
			rows.AppendNullToColumn(i)
			continue
		}
		switch colType.Type {
		case TypeSmallInt, TypeInt, TypeBigInt:
			switch v := colVal.(type) {
			case int:
				rows.AppendInt64ToColumn(i, int64(v))
			case int16:
				rows.AppendInt64ToColumn(i, int64(v))
			case int32:
				rows.AppendInt64ToColumn(i, int64(v))
			default:
				rows.AppendInt64ToColumn(i, colVal.(int64))
			}
		case TypeReal:
			rows.AppendFloat32ToColumn(i, colVal.(float32))
		case TypeDouble:
			rows.AppendFloat64ToColumn(i, colVal.(float64))
		case TypeBytea:
			rows.AppendBytesToColumn(i, colVal.([]byte))
		case TypeText:
			rows.AppendStringToColumn(i, colVal.(string))
		case TypeNumeric:
			num, err := NewNumericFromString(colVal.(string))
			require.NoError(t, err)
			rows.AppendNumericToColumn(i, num)
		case TypeDate:
			rows.AppendDateToColumn(i, colVal.(Date))
		case TypeTimestampTz:
			rows.AppendTimestampToColumn(i, colVal.(Timestamp))
		default:
			require.Failf(t, "unsupported column type", "column %d has type %s", i, colType)
		}
	}
}
