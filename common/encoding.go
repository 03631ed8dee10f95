package common

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// Encoded rows are consumed in-process by an engine running on the same machine, so
// fixed width values are written in the byte order of the host.

var IsLittleEndian = isLittleEndian()

// NativeEndian is the byte order of the host.
var NativeEndian = nativeEndian()

func PutUint16Native(buffer []byte, v uint16) {
	NativeEndian.PutUint16(buffer, v)
}

func PutUint32Native(buffer []byte, v uint32) {
	NativeEndian.PutUint32(buffer, v)
}

func PutUint64Native(buffer []byte, v uint64) {
	NativeEndian.PutUint64(buffer, v)
}

func PutFloat32Native(buffer []byte, v float32) {
	NativeEndian.PutUint32(buffer, math.Float32bits(v))
}

func PutFloat64Native(buffer []byte, v float64) {
	NativeEndian.PutUint64(buffer, math.Float64bits(v))
}

func ReadUint16Native(buffer []byte, offset int) (uint16, int) {
	return NativeEndian.Uint16(buffer[offset:]), offset + 2
}

func ReadUint32Native(buffer []byte, offset int) (uint32, int) {
	return NativeEndian.Uint32(buffer[offset:]), offset + 4
}

func ReadUint64Native(buffer []byte, offset int) (uint64, int) {
	if IsLittleEndian {
		// nolint: gosec
		return *(*uint64)(unsafe.Pointer(&buffer[offset])), offset + 8
	}
	return NativeEndian.Uint64(buffer[offset:]), offset + 8
}

func ReadInt64Native(buffer []byte, offset int) (int64, int) {
	u, off := ReadUint64Native(buffer, offset)
	return int64(u), off
}

func ReadFloat32Native(buffer []byte, offset int) (float32, int) {
	u, off := ReadUint32Native(buffer, offset)
	return math.Float32frombits(u), off
}

func ReadFloat64Native(buffer []byte, offset int) (float64, int) {
	u, off := ReadUint64Native(buffer, offset)
	return math.Float64frombits(u), off
}

func nativeEndian() binary.ByteOrder {
	if IsLittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Are we running on a machine with a little endian architecture?
func isLittleEndian() bool {
	val := uint64(123456)
	buffer := make([]byte, 8)
	binary.LittleEndian.PutUint64(buffer, val)
	valRead := *(*uint64)(unsafe.Pointer(&buffer[0])) // nolint: gosec
	return val == valRead
}
