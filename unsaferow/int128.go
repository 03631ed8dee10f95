package unsaferow

import (
	"math/big"
	"math/bits"

	"github.com/squareup/unsaferow/common"
	"github.com/squareup/unsaferow/errors"
)

// Int128Size is the number of bytes an Int128 occupies in the variable length region.
const Int128Size = 16

// Int128 is a two's complement signed 128-bit integer.
type Int128 struct {
	Hi int64
	Lo uint64
}

// ParseInt128 parses a base 10 integer with an optional leading sign. Any other
// character is an InvalidTextRepresentation error, a value outside the range of Int128 a
// ValueOutOfRange error.
func ParseInt128(s string) (Int128, error) {
	i := 0
	neg := false
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		i = 1
	}
	if i == len(s) {
		return Int128{}, errors.WithStack(errors.NewInvalidTextRepresentationError("int128", s))
	}
	var hi, lo uint64
	for ; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return Int128{}, errors.WithStack(errors.NewInvalidTextRepresentationError("int128", s))
		}
		var ok bool
		hi, lo, ok = mulAdd10(hi, lo, uint64(c-'0'))
		// magnitude may reach 2^127 only for a negative value
		if !ok || hi > 1<<63 || (hi == 1<<63 && (lo != 0 || !neg)) {
			return Int128{}, errors.WithStack(errors.NewValueOutOfRangeError(s + " does not fit in a 128-bit integer"))
		}
	}
	if neg {
		var carry uint64
		lo, carry = bits.Add64(^lo, 1, 0)
		hi = ^hi + carry
	}
	return Int128{Hi: int64(hi), Lo: lo}, nil
}

// mulAdd10 returns (hi, lo) * 10 + d, and false if the result does not fit in 128 bits.
func mulAdd10(hi, lo, d uint64) (uint64, uint64, bool) {
	loHi, loLo := bits.Mul64(lo, 10)
	hiHi, hiLo := bits.Mul64(hi, 10)
	if hiHi != 0 {
		return 0, 0, false
	}
	newHi, carry := bits.Add64(hiLo, loHi, 0)
	if carry != 0 {
		return 0, 0, false
	}
	newLo, carry := bits.Add64(loLo, d, 0)
	newHi, carry = bits.Add64(newHi, 0, carry)
	if carry != 0 {
		return 0, 0, false
	}
	return newHi, newLo, true
}

// Bytes returns the value as it is laid out in memory on the host.
func (i Int128) Bytes() [Int128Size]byte {
	var b [Int128Size]byte
	if common.IsLittleEndian {
		common.PutUint64Native(b[:8], i.Lo)
		common.PutUint64Native(b[8:], uint64(i.Hi))
	} else {
		common.PutUint64Native(b[:8], uint64(i.Hi))
		common.PutUint64Native(b[8:], i.Lo)
	}
	return b
}

// Int128FromBytes is the inverse of Int128.Bytes.
func Int128FromBytes(b []byte) Int128 {
	first, _ := common.ReadUint64Native(b, 0)
	second, _ := common.ReadUint64Native(b, 8)
	if common.IsLittleEndian {
		return Int128{Hi: int64(second), Lo: first}
	}
	return Int128{Hi: int64(first), Lo: second}
}

func (i Int128) Big() *big.Int {
	b := big.NewInt(i.Hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(i.Lo))
}

func (i Int128) String() string {
	return i.Big().String()
}
