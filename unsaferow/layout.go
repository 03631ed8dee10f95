package unsaferow

import (
	"fmt"

	"github.com/squareup/unsaferow/common"
	"github.com/squareup/unsaferow/errors"
)

// Layout is a read only view over a serialized row, used to inspect rows in tests and
// tooling.
type Layout struct {
	buffer   []byte
	colCount int
}

func NewLayout(buffer []byte, colCount int) (Layout, error) {
	if colCount <= 0 {
		return Layout{}, errors.Errorf("column count must be > 0, got %d", colCount)
	}
	if len(buffer) < BitmapSize(colCount)+colCount*8 {
		return Layout{}, errors.Errorf("row of %d bytes is too short for %d columns", len(buffer), colCount)
	}
	if (len(buffer)-BitmapSize(colCount))%SlotAlignment != 0 {
		return Layout{}, errors.Errorf("row of %d bytes is not %d byte aligned", len(buffer), SlotAlignment)
	}
	return Layout{buffer: buffer, colCount: colCount}, nil
}

func (l Layout) ColumnCount() int {
	return l.colCount
}

func (l Layout) Bitmap() []byte {
	return l.buffer[:BitmapSize(l.colCount)]
}

func (l Layout) Fixed() []byte {
	start := BitmapSize(l.colCount)
	return l.buffer[start : start+l.colCount*8]
}

// VarData is the variable length region, the base that slot offsets are relative to.
func (l Layout) VarData() []byte {
	return l.buffer[BitmapSize(l.colCount)+l.colCount*8:]
}

func (l Layout) IsNull(colIndex int) bool {
	w, _ := common.ReadUint64Native(l.buffer, (colIndex>>6)*8)
	return w&(uint64(1)<<(colIndex&0x3F)) != 0
}

func (l Layout) Word(colIndex int) Word {
	var w Word
	copy(w[:], l.Fixed()[colIndex*8:])
	return w
}

func (l Layout) Int16(colIndex int) int16 {
	u, _ := common.ReadUint16Native(l.Fixed(), colIndex*8)
	return int16(u)
}

func (l Layout) Int32(colIndex int) int32 {
	u, _ := common.ReadUint32Native(l.Fixed(), colIndex*8)
	return int32(u)
}

func (l Layout) Int64(colIndex int) int64 {
	v, _ := common.ReadInt64Native(l.Fixed(), colIndex*8)
	return v
}

func (l Layout) Float32(colIndex int) float32 {
	v, _ := common.ReadFloat32Native(l.Fixed(), colIndex*8)
	return v
}

func (l Layout) Float64(colIndex int) float64 {
	v, _ := common.ReadFloat64Native(l.Fixed(), colIndex*8)
	return v
}

// VarBytes returns the unpadded bytes a slot refers to.
func (l Layout) VarBytes(colIndex int) ([]byte, error) {
	offset, length := UnpackReference(l.Word(colIndex))
	varData := l.VarData()
	if offset+length > len(varData) {
		return nil, errors.Errorf("column %d refers to [%d, %d) beyond variable data of %d bytes", colIndex, offset, offset+length, len(varData))
	}
	return varData[offset : offset+length], nil
}

func (l Layout) Int128(colIndex int) (Int128, error) {
	b, err := l.VarBytes(colIndex)
	if err != nil {
		return Int128{}, err
	}
	if len(b) != Int128Size {
		return Int128{}, errors.Errorf("column %d holds %d bytes, not a 128-bit integer", colIndex, len(b))
	}
	return Int128FromBytes(b), nil
}

func (l Layout) String() string {
	return fmt.Sprintf("bitmap=%x fixed=%x var=%x", l.Bitmap(), l.Fixed(), l.VarData())
}
