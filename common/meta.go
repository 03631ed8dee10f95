package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Type int

const (
	TypeUnknown Type = iota
	TypeSmallInt
	TypeInt
	TypeBigInt
	TypeReal
	TypeDouble
	TypeBytea
	TypeText
	TypeNumeric
	TypeDate
	TypeTimestampTz
	TypeBoolean
	TypeTime
)

var typeNames = map[Type]string{
	TypeUnknown:     "UNKNOWN",
	TypeSmallInt:    "SMALLINT",
	TypeInt:         "INT",
	TypeBigInt:      "BIGINT",
	TypeReal:        "REAL",
	TypeDouble:      "DOUBLE",
	TypeBytea:       "BYTEA",
	TypeText:        "TEXT",
	TypeNumeric:     "NUMERIC",
	TypeDate:        "DATE",
	TypeTimestampTz: "TIMESTAMPTZ",
	TypeBoolean:     "BOOLEAN",
	TypeTime:        "TIME",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TYPE(%d)", int(t))
}

func (t *Type) Capture(tokens []string) error {
	text := strings.ToUpper(strings.Join(tokens, " "))
	switch text {
	case "SMALLINT", "INT2":
		*t = TypeSmallInt
	case "INT", "INTEGER", "INT4":
		*t = TypeInt
	case "BIGINT", "INT8":
		*t = TypeBigInt
	case "REAL", "FLOAT4":
		*t = TypeReal
	case "DOUBLE", "FLOAT8":
		*t = TypeDouble
	case "BYTEA":
		*t = TypeBytea
	case "TEXT", "VARCHAR":
		*t = TypeText
	case "NUMERIC", "DECIMAL":
		*t = TypeNumeric
	case "DATE":
		*t = TypeDate
	case "TIMESTAMPTZ":
		*t = TypeTimestampTz
	case "BOOLEAN", "BOOL":
		*t = TypeBoolean
	case "TIME":
		*t = TypeTime
	default:
		return errors.Errorf("unknown column type %s", text)
	}
	return nil
}

// UnspecifiedPrecision marks a NUMERIC column declared without a type modifier.
const UnspecifiedPrecision = -1

var (
	SmallIntColumnType    = ColumnType{Type: TypeSmallInt}
	IntColumnType         = ColumnType{Type: TypeInt}
	BigIntColumnType      = ColumnType{Type: TypeBigInt}
	RealColumnType        = ColumnType{Type: TypeReal}
	DoubleColumnType      = ColumnType{Type: TypeDouble}
	ByteaColumnType       = ColumnType{Type: TypeBytea}
	TextColumnType        = ColumnType{Type: TypeText}
	DateColumnType        = ColumnType{Type: TypeDate}
	TimestampTzColumnType = ColumnType{Type: TypeTimestampTz}
	BooleanColumnType     = ColumnType{Type: TypeBoolean}
	TimeColumnType        = ColumnType{Type: TypeTime}
	UnknownColumnType     = ColumnType{Type: TypeUnknown}

	// UnconstrainedNumericColumnType is NUMERIC with no precision or scale.
	UnconstrainedNumericColumnType = ColumnType{Type: TypeNumeric, DecPrecision: UnspecifiedPrecision, DecScale: UnspecifiedPrecision}

	// ColumnTypesByType allows lookup of non-parameterised ColumnType by Type.
	ColumnTypesByType = map[Type]ColumnType{
		TypeSmallInt:    SmallIntColumnType,
		TypeInt:         IntColumnType,
		TypeBigInt:      BigIntColumnType,
		TypeReal:        RealColumnType,
		TypeDouble:      DoubleColumnType,
		TypeBytea:       ByteaColumnType,
		TypeText:        TextColumnType,
		TypeDate:        DateColumnType,
		TypeTimestampTz: TimestampTzColumnType,
		TypeBoolean:     BooleanColumnType,
		TypeTime:        TimeColumnType,
	}
)

// InferColumnType from Go type.
func InferColumnType(value interface{}) ColumnType {
	switch value.(type) {
	case string:
		return TextColumnType
	case []byte:
		return ByteaColumnType
	case int, int64:
		return BigIntColumnType
	case int32:
		return IntColumnType
	case int16:
		return SmallIntColumnType
	case float32:
		return RealColumnType
	case float64:
		return DoubleColumnType
	case Date:
		return DateColumnType
	case Timestamp, time.Time:
		return TimestampTzColumnType
	case bool:
		return BooleanColumnType
	default:
		panic(fmt.Sprintf("can't infer column of type %T", value))
	}
}

func NewNumericColumnType(precision int, scale int) ColumnType {
	return ColumnType{
		Type:         TypeNumeric,
		DecPrecision: precision,
		DecScale:     scale,
	}
}

// ColumnType is the type descriptor handed to the encoder with every value: the semantic
// type plus the modifiers NUMERIC needs.
type ColumnType struct {
	Type         Type
	DecPrecision int
	DecScale     int
}

// HasTypmod reports whether a NUMERIC column was declared with an explicit precision.
func (t ColumnType) HasTypmod() bool {
	return t.Type == TypeNumeric && t.DecPrecision > 0
}

func (t ColumnType) String() string {
	if t.Type != TypeNumeric {
		return t.Type.String()
	}
	if !t.HasTypmod() {
		return "NUMERIC"
	}
	return fmt.Sprintf("NUMERIC(%d,%d)", t.DecPrecision, t.DecScale)
}
