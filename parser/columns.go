package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/alecthomas/participle/v2/lexer/stateful"
	"github.com/squareup/unsaferow/common"
	"github.com/squareup/unsaferow/errors"
)

var (
	columnsLex = stateful.MustSimple([]stateful.Rule{
		{Name: `Ident`, Pattern: `[a-zA-Z_][a-zA-Z_0-9]*`, Action: nil},
		{Name: `Number`, Pattern: `\d+`, Action: nil},
		{Name: `Punct`, Pattern: `[(),]`, Action: nil},
		{Name: `Whitespace`, Pattern: `\s+`, Action: nil},
	})
	columnsParser = participle.MustBuild(&columnList{},
		participle.Lexer(columnsLex),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
)

type columnList struct {
	Columns []*columnDef `parser:"@@ ( \",\" @@ )*"`
}

type columnDef struct {
	Pos lexer.Position

	Type       common.Type `parser:"@Ident"`                                      // Conversion done by common.Type.Capture()
	Parameters []int       `parser:"( \"(\" @Number ( \",\" @Number )? \")\" )?"` // NUMERIC(p [, s])
}

// ParseColumnTypes parses a comma separated list of column types, for example
// "INT, TEXT, NUMERIC(10,2)".
func ParseColumnTypes(s string) ([]common.ColumnType, error) {
	list := &columnList{}
	if err := columnsParser.ParseString("", s, list); err != nil {
		return nil, errors.WithStack(err)
	}
	res := make([]common.ColumnType, 0, len(list.Columns))
	for _, col := range list.Columns {
		colType, err := col.toColumnType()
		if err != nil {
			return nil, err
		}
		res = append(res, colType)
	}
	return res, nil
}

func (c *columnDef) toColumnType() (common.ColumnType, error) {
	if c.Type != common.TypeNumeric {
		if len(c.Parameters) > 0 {
			return common.ColumnType{}, errors.Errorf("%s: type %s does not take parameters", c.Pos, c.Type)
		}
		return common.ColumnTypesByType[c.Type], nil
	}
	switch len(c.Parameters) {
	case 0:
		return common.UnconstrainedNumericColumnType, nil
	case 1:
		if c.Parameters[0] < 1 {
			return common.ColumnType{}, errors.Errorf("%s: NUMERIC precision %d must be at least 1", c.Pos, c.Parameters[0])
		}
		return common.NewNumericColumnType(c.Parameters[0], 0), nil
	default:
		precision, scale := c.Parameters[0], c.Parameters[1]
		if precision < 1 {
			return common.ColumnType{}, errors.Errorf("%s: NUMERIC precision %d must be at least 1", c.Pos, precision)
		}
		if scale > precision {
			return common.ColumnType{}, errors.Errorf("%s: NUMERIC scale %d must be between 0 and precision %d", c.Pos, scale, precision)
		}
		return common.NewNumericColumnType(precision, scale), nil
	}
}
