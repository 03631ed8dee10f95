package unsaferow

// SlotAlignment is the alignment, in bytes, of every value in the variable length region.
const SlotAlignment = 8

// PaddedSize returns n rounded up to a multiple of SlotAlignment.
func PaddedSize(n int) int {
	return (n + SlotAlignment - 1) / SlotAlignment * SlotAlignment
}

// Arena is the append-only variable length region of a row. Every value is followed by
// zero bytes up to the next multiple of SlotAlignment. Offsets returned by Append stay
// valid for the life of the arena, the backing slice does not, so hold on to offsets
// only.
type Arena struct {
	buf []byte
}

func NewArena(capacity int) *Arena {
	return &Arena{buf: make([]byte, 0, PaddedSize(capacity))}
}

// Append copies data into the arena and returns the offset it was written at and its
// unpadded length.
func (a *Arena) Append(data []byte) (offset int, length int) {
	offset = len(a.buf)
	padded := PaddedSize(len(data))
	a.ensure(padded)
	a.buf = a.buf[:offset+padded]
	n := copy(a.buf[offset:], data)
	// capacity may hold bytes from before a Reset
	for i := offset + n; i < offset+padded; i++ {
		a.buf[i] = 0
	}
	return offset, len(data)
}

func (a *Arena) ensure(n int) {
	if cap(a.buf)-len(a.buf) >= n {
		return
	}
	newCap := 2 * cap(a.buf)
	if newCap < len(a.buf)+n {
		newCap = len(a.buf) + n
	}
	buf := make([]byte, len(a.buf), newCap)
	copy(buf, a.buf)
	a.buf = buf
}

// Len is the number of bytes written, padding included.
func (a *Arena) Len() int {
	return len(a.buf)
}

func (a *Arena) Cap() int {
	return cap(a.buf)
}

// Bytes returns the written region. It is only valid until the next Append or Reset.
func (a *Arena) Bytes() []byte {
	return a.buf
}

// Reset empties the arena and keeps its capacity.
func (a *Arena) Reset() {
	a.buf = a.buf[:0]
}
