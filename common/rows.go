package common

// Row is a read-only view of one row of a Rows.
type Row struct {
	rows  *Rows
	index int
}

// Rows holds values column by column. A nil entry is a null.
type Rows struct {
	columnTypes []ColumnType
	cols        [][]interface{}
}

// RowsFactory caches the column types so we don't have to pass them each time we
// create a new Rows
type RowsFactory struct {
	ColumnTypes []ColumnType
}

func NewRowsFactory(columnTypes []ColumnType) *RowsFactory {
	return &RowsFactory{ColumnTypes: columnTypes}
}

func (rf *RowsFactory) NewRows(capacity int) *Rows {
	cols := make([][]interface{}, len(rf.ColumnTypes))
	for i := range cols {
		cols[i] = make([]interface{}, 0, capacity)
	}
	return &Rows{columnTypes: rf.ColumnTypes, cols: cols}
}

func (r *Rows) ColumnTypes() []ColumnType {
	return r.columnTypes
}

func (r *Rows) GetRow(rowIndex int) Row {
	return Row{rows: r, index: rowIndex}
}

func (r *Rows) RowCount() int {
	if len(r.cols) == 0 {
		return 0
	}
	return len(r.cols[0])
}

func (r *Rows) AppendRow(row Row) {
	for colIndex := range r.cols {
		r.cols[colIndex] = append(r.cols[colIndex], row.rows.cols[colIndex][row.index])
	}
}

func (r *Rows) AppendInt64ToColumn(colIndex int, val int64) {
	r.cols[colIndex] = append(r.cols[colIndex], val)
}

func (r *Rows) AppendFloat32ToColumn(colIndex int, val float32) {
	r.cols[colIndex] = append(r.cols[colIndex], val)
}

func (r *Rows) AppendFloat64ToColumn(colIndex int, val float64) {
	r.cols[colIndex] = append(r.cols[colIndex], val)
}

func (r *Rows) AppendBytesToColumn(colIndex int, val []byte) {
	r.cols[colIndex] = append(r.cols[colIndex], val)
}

func (r *Rows) AppendStringToColumn(colIndex int, val string) {
	r.cols[colIndex] = append(r.cols[colIndex], val)
}

func (r *Rows) AppendNumericToColumn(colIndex int, val Numeric) {
	r.cols[colIndex] = append(r.cols[colIndex], val)
}

func (r *Rows) AppendDateToColumn(colIndex int, val Date) {
	r.cols[colIndex] = append(r.cols[colIndex], val)
}

func (r *Rows) AppendTimestampToColumn(colIndex int, val Timestamp) {
	r.cols[colIndex] = append(r.cols[colIndex], val)
}

func (r *Rows) AppendNullToColumn(colIndex int) {
	r.cols[colIndex] = append(r.cols[colIndex], nil)
}

func (r *Row) value(colIndex int) interface{} {
	return r.rows.cols[colIndex][r.index]
}

func (r *Row) IsNull(colIndex int) bool {
	return r.value(colIndex) == nil
}

func (r *Row) GetInt64(colIndex int) int64 {
	return r.value(colIndex).(int64)
}

func (r *Row) GetFloat32(colIndex int) float32 {
	return r.value(colIndex).(float32)
}

func (r *Row) GetFloat64(colIndex int) float64 {
	return r.value(colIndex).(float64)
}

func (r *Row) GetBytes(colIndex int) []byte {
	return r.value(colIndex).([]byte)
}

func (r *Row) GetString(colIndex int) string {
	return r.value(colIndex).(string)
}

func (r *Row) GetNumeric(colIndex int) Numeric {
	return r.value(colIndex).(Numeric)
}

func (r *Row) GetDate(colIndex int) Date {
	return r.value(colIndex).(Date)
}

func (r *Row) GetTimestamp(colIndex int) Timestamp {
	return r.value(colIndex).(Timestamp)
}

func (r *Row) ColCount() int {
	return len(r.rows.cols)
}

func (r *Row) ColumnTypes() []ColumnType {
	return r.rows.columnTypes
}
