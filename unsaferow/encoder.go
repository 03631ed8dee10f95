package unsaferow

import (
	log "github.com/sirupsen/logrus"
	"github.com/squareup/unsaferow/charset"
	"github.com/squareup/unsaferow/common"
	"github.com/squareup/unsaferow/conf"
	"github.com/squareup/unsaferow/errors"
	"github.com/squareup/unsaferow/metrics"
)

// Row is the source of column values for EncodeRow. Getters are only called for
// columns that are not null, with the getter matching the column type: GetInt64 for
// SMALLINT, INT and BIGINT, GetFloat32 for REAL and so on.
type Row interface {
	IsNull(colIndex int) bool
	GetInt64(colIndex int) int64
	GetFloat32(colIndex int) float32
	GetFloat64(colIndex int) float64
	GetBytes(colIndex int) []byte
	GetString(colIndex int) string
	GetNumeric(colIndex int) common.Numeric
	GetDate(colIndex int) common.Date
	GetTimestamp(colIndex int) common.Timestamp
}

// Encoder encodes rows with one reusable RowBuilder. It is not safe for concurrent use.
type Encoder struct {
	opts         Options
	builder      *RowBuilder
	rowsEncoded  metrics.Counter
	encodeErrors metrics.Counter
	bytesEncoded metrics.Counter
}

func NewEncoder(cfg *conf.Config, metricsFactory metrics.Factory) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	transcoder, err := charset.NewTranscoder(cfg.ServerEncoding, cfg.ClientEncoding, cfg.StrictTranscoding)
	if err != nil {
		return nil, err
	}
	e := &Encoder{
		opts: Options{
			Transcoder:             transcoder,
			DisableInt128:          cfg.DisableInt128,
			InitialVarDataCapacity: cfg.InitialVarDataCapacity,
		},
	}
	if e.rowsEncoded, err = metricsFactory.CreateCounter("unsaferow_rows_encoded_total", "Number of rows encoded in unsaferow format"); err != nil {
		return nil, errors.WithStack(err)
	}
	if e.encodeErrors, err = metricsFactory.CreateCounter("unsaferow_row_encode_errors_total", "Number of rows rejected by the unsaferow encoder"); err != nil {
		return nil, errors.WithStack(err)
	}
	if e.bytesEncoded, err = metricsFactory.CreateCounter("unsaferow_encoded_bytes_total", "Number of bytes of unsaferow rows produced"); err != nil {
		return nil, errors.WithStack(err)
	}
	log.Debugf("created unsaferow encoder server encoding %s client encoding %s int128 %t",
		cfg.ServerEncoding, cfg.ClientEncoding, !cfg.DisableInt128)
	return e, nil
}

// EncodeRow encodes one row and returns it in a newly allocated slice.
func (e *Encoder) EncodeRow(row Row, colTypes []common.ColumnType) ([]byte, error) {
	if e.builder == nil {
		e.builder = NewRowBuilderWithOptions(len(colTypes), e.opts)
	} else {
		e.builder.Reset(len(colTypes))
	}
	for colIndex, colType := range colTypes {
		if err := encodeRowCol(e.builder, row, colIndex, colType); err != nil {
			e.encodeErrors.Inc()
			log.Warnf("failed to encode column %d of type %s: %v", colIndex, colType, err)
			return nil, errors.Wrapf(err, "column %d", colIndex)
		}
	}
	buffer := e.builder.Bytes()
	e.rowsEncoded.Inc()
	e.bytesEncoded.Add(float64(len(buffer)))
	return buffer, nil
}

// EncodeRows encodes every row of rows. Encoding stops at the first row that fails.
func (e *Encoder) EncodeRows(rows *common.Rows) ([][]byte, error) {
	res := make([][]byte, 0, rows.RowCount())
	for i := 0; i < rows.RowCount(); i++ {
		row := rows.GetRow(i)
		buffer, err := e.EncodeRow(&row, rows.ColumnTypes())
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		res = append(res, buffer)
	}
	return res, nil
}

func encodeRowCol(b *RowBuilder, row Row, colIndex int, colType common.ColumnType) error {
	if row.IsNull(colIndex) {
		b.AppendNull()
		return nil
	}
	switch colType.Type {
	case common.TypeSmallInt, common.TypeInt, common.TypeBigInt:
		return b.AppendInt(row.GetInt64(colIndex), colType)
	case common.TypeReal:
		b.AppendFloat32(row.GetFloat32(colIndex))
	case common.TypeDouble:
		b.AppendFloat64(row.GetFloat64(colIndex))
	case common.TypeBytea:
		return b.AppendBytes(row.GetBytes(colIndex))
	case common.TypeText:
		return b.AppendText(row.GetString(colIndex))
	case common.TypeNumeric:
		return b.AppendNumeric(row.GetNumeric(colIndex), colType)
	case common.TypeDate:
		b.AppendDate(row.GetDate(colIndex))
	case common.TypeTimestampTz:
		b.AppendTimestamp(row.GetTimestamp(colIndex))
	default:
		return errors.WithStack(errors.NewUnsupportedTypeError(colType.String()))
	}
	return nil
}
