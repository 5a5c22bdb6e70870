// Package apint implements fixed-width twos-complement integers of
// arbitrary bit width. Values are immutable; every operation returns a
// new Int masked to its declared width.
package apint

import (
	"fmt"
	"math/big"
)

// Int represents an integer value of a fixed bit width. The zero value is
// invalid; construct with New, FromBig, FromInt64, or Bool.
type Int struct {
	width int
	bits  *big.Int // unsigned bit pattern, always in [0, 2^width)
}

// New returns an Int holding the low width bits of value.
func New(value uint64, width int) Int {
	assert(width > 0, "apint: non-positive width: %d", width)
	b := new(big.Int).SetUint64(value)
	return Int{width: width, bits: mask(b, width)}
}

// FromBig returns an Int holding the low width bits of value. Negative
// values are interpreted as twos-complement.
func FromBig(value *big.Int, width int) Int {
	assert(width > 0, "apint: non-positive width: %d", width)
	return Int{width: width, bits: mask(new(big.Int).Set(value), width)}
}

// FromInt64 returns an Int holding the low width bits of value.
func FromInt64(value int64, width int) Int {
	return FromBig(big.NewInt(value), width)
}

// Bool returns a 1-bit Int: 1 if value is true, 0 otherwise.
func Bool(value bool) Int {
	if value {
		return New(1, 1)
	}
	return New(0, 1)
}

// Width returns the bit width of i.
func (i Int) Width() int { return i.width }

// Big returns the unsigned bit pattern of i as a big.Int.
func (i Int) Big() *big.Int { return new(big.Int).Set(i.bits) }

// SignedBig returns the value of i interpreted as twos-complement.
func (i Int) SignedBig() *big.Int {
	v := new(big.Int).Set(i.bits)
	if i.bits.Bit(i.width-1) == 1 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(i.width)))
	}
	return v
}

// Uint64 returns the low 64 bits of i.
func (i Int) Uint64() uint64 {
	return new(big.Int).And(i.bits, mask64).Uint64()
}

// IsZero returns true if all bits are zero.
func (i Int) IsZero() bool { return i.bits.Sign() == 0 }

// IsOne returns true if i equals one.
func (i Int) IsOne() bool { return i.bits.Cmp(bigOne) == 0 }

// IsAllOnes returns true if every bit of i is set.
func (i Int) IsAllOnes() bool {
	return i.bits.BitLen() == i.width && i.bits.Cmp(onesOf(i.width)) == 0
}

// IsNegative returns true if the sign bit is set.
func (i Int) IsNegative() bool { return i.bits.Bit(i.width-1) == 1 }

// Bit returns bit n of i (0 or 1).
func (i Int) Bit(n int) uint { return i.bits.Bit(n) }

// String returns a Verilog-style representation, e.g. "8'hff".
func (i Int) String() string {
	return fmt.Sprintf("%d'h%s", i.width, i.bits.Text(16))
}

// Add returns the sum of i and other.
func (i Int) Add(other Int) Int {
	assert(i.width == other.width, "add: width mismatch: %d != %d", i.width, other.width)
	return Int{width: i.width, bits: mask(new(big.Int).Add(i.bits, other.bits), i.width)}
}

// Sub returns the difference of i and other.
func (i Int) Sub(other Int) Int {
	assert(i.width == other.width, "sub: width mismatch: %d != %d", i.width, other.width)
	return Int{width: i.width, bits: mask(new(big.Int).Sub(i.bits, other.bits), i.width)}
}

// Mul returns the product of i and other.
func (i Int) Mul(other Int) Int {
	assert(i.width == other.width, "mul: width mismatch: %d != %d", i.width, other.width)
	return Int{width: i.width, bits: mask(new(big.Int).Mul(i.bits, other.bits), i.width)}
}

// UDiv returns the quotient of unsigned division of i by other.
// Panics if other is zero.
func (i Int) UDiv(other Int) Int {
	assert(i.width == other.width, "udiv: width mismatch: %d != %d", i.width, other.width)
	assert(!other.IsZero(), "udiv: division by zero")
	return Int{width: i.width, bits: new(big.Int).Quo(i.bits, other.bits)}
}

// SDiv returns the quotient of signed division of i by other, truncated
// toward zero. Panics if other is zero.
func (i Int) SDiv(other Int) Int {
	assert(i.width == other.width, "sdiv: width mismatch: %d != %d", i.width, other.width)
	assert(!other.IsZero(), "sdiv: division by zero")
	q := new(big.Int).Quo(i.SignedBig(), other.SignedBig())
	return FromBig(q, i.width)
}

// URem returns the remainder of unsigned division of i by other.
// Panics if other is zero.
func (i Int) URem(other Int) Int {
	assert(i.width == other.width, "urem: width mismatch: %d != %d", i.width, other.width)
	assert(!other.IsZero(), "urem: division by zero")
	return Int{width: i.width, bits: new(big.Int).Rem(i.bits, other.bits)}
}

// SRem returns the remainder of signed division of i by other, with the
// sign of the dividend. Panics if other is zero.
func (i Int) SRem(other Int) Int {
	assert(i.width == other.width, "srem: width mismatch: %d != %d", i.width, other.width)
	assert(!other.IsZero(), "srem: division by zero")
	r := new(big.Int).Rem(i.SignedBig(), other.SignedBig())
	return FromBig(r, i.width)
}

// And returns the bitwise AND of i and other.
func (i Int) And(other Int) Int {
	assert(i.width == other.width, "and: width mismatch: %d != %d", i.width, other.width)
	return Int{width: i.width, bits: new(big.Int).And(i.bits, other.bits)}
}

// Or returns the bitwise OR of i and other.
func (i Int) Or(other Int) Int {
	assert(i.width == other.width, "or: width mismatch: %d != %d", i.width, other.width)
	return Int{width: i.width, bits: new(big.Int).Or(i.bits, other.bits)}
}

// Xor returns the bitwise XOR of i and other.
func (i Int) Xor(other Int) Int {
	assert(i.width == other.width, "xor: width mismatch: %d != %d", i.width, other.width)
	return Int{width: i.width, bits: new(big.Int).Xor(i.bits, other.bits)}
}

// Not returns the bitwise NOT of i.
func (i Int) Not() Int {
	return Int{width: i.width, bits: new(big.Int).Xor(i.bits, onesOf(i.width))}
}

// Shl returns i shifted left by n bits. The width is unchanged; bits
// shifted past the top are dropped.
func (i Int) Shl(n uint) Int {
	return Int{width: i.width, bits: mask(new(big.Int).Lsh(i.bits, n), i.width)}
}

// LShr returns i logically shifted right by n bits.
func (i Int) LShr(n uint) Int {
	return Int{width: i.width, bits: new(big.Int).Rsh(i.bits, n)}
}

// AShr returns i arithmetically shifted right by n bits. The sign bit is
// replicated into the vacated positions.
func (i Int) AShr(n uint) Int {
	// big.Int.Rsh floors, which is exactly arithmetic shift on the
	// signed interpretation.
	return FromBig(new(big.Int).Rsh(i.SignedBig(), n), i.width)
}

// Eq returns true if i and other hold the same bit pattern.
func (i Int) Eq(other Int) bool {
	assert(i.width == other.width, "eq: width mismatch: %d != %d", i.width, other.width)
	return i.bits.Cmp(other.bits) == 0
}

// Ult returns true if i < other, unsigned.
func (i Int) Ult(other Int) bool {
	assert(i.width == other.width, "ult: width mismatch: %d != %d", i.width, other.width)
	return i.bits.Cmp(other.bits) < 0
}

// Ule returns true if i <= other, unsigned.
func (i Int) Ule(other Int) bool {
	assert(i.width == other.width, "ule: width mismatch: %d != %d", i.width, other.width)
	return i.bits.Cmp(other.bits) <= 0
}

// Ugt returns true if i > other, unsigned.
func (i Int) Ugt(other Int) bool { return other.Ult(i) }

// Uge returns true if i >= other, unsigned.
func (i Int) Uge(other Int) bool { return other.Ule(i) }

// Slt returns true if i < other, signed.
func (i Int) Slt(other Int) bool {
	assert(i.width == other.width, "slt: width mismatch: %d != %d", i.width, other.width)
	return i.SignedBig().Cmp(other.SignedBig()) < 0
}

// Sle returns true if i <= other, signed.
func (i Int) Sle(other Int) bool {
	assert(i.width == other.width, "sle: width mismatch: %d != %d", i.width, other.width)
	return i.SignedBig().Cmp(other.SignedBig()) <= 0
}

// Sgt returns true if i > other, signed.
func (i Int) Sgt(other Int) bool { return other.Slt(i) }

// Sge returns true if i >= other, signed.
func (i Int) Sge(other Int) bool { return other.Sle(i) }

// ZExt returns i zero-extended to width w.
func (i Int) ZExt(w int) Int {
	assert(w >= i.width, "zext: narrowing extension: %d -> %d", i.width, w)
	return Int{width: w, bits: new(big.Int).Set(i.bits)}
}

// SExt returns i sign-extended to width w.
func (i Int) SExt(w int) Int {
	assert(w >= i.width, "sext: narrowing extension: %d -> %d", i.width, w)
	return FromBig(i.SignedBig(), w)
}

// Trunc returns the low w bits of i.
func (i Int) Trunc(w int) Int {
	assert(w <= i.width, "trunc: widening truncation: %d -> %d", i.width, w)
	assert(w > 0, "trunc: non-positive width: %d", w)
	return Int{width: w, bits: mask(new(big.Int).Set(i.bits), w)}
}

// TruncOrSelf truncates i to w bits, or returns i unchanged if it is
// already w bits or narrower.
func (i Int) TruncOrSelf(w int) Int {
	if w >= i.width {
		return i
	}
	return i.Trunc(w)
}

// Extract returns width bits of i starting at offset.
func (i Int) Extract(offset, width int) Int {
	assert(offset+width <= i.width, "extract out of bounds: %d+%d > %d", offset, width, i.width)
	return i.LShr(uint(offset)).Trunc(width)
}

// Concat returns the concatenation of i (most significant) and lsb.
func (i Int) Concat(lsb Int) Int {
	bits := new(big.Int).Lsh(i.bits, uint(lsb.width))
	bits.Or(bits, lsb.bits)
	return Int{width: i.width + lsb.width, bits: bits}
}

// AndR returns the AND reduction of all bits.
func (i Int) AndR() bool { return i.IsAllOnes() }

// OrR returns the OR reduction of all bits.
func (i Int) OrR() bool { return !i.IsZero() }

// XorR returns the XOR reduction (parity) of all bits.
func (i Int) XorR() bool {
	n := 0
	for _, w := range i.bits.Bits() {
		for ; w != 0; w &= w - 1 {
			n++
		}
	}
	return n%2 == 1
}

var (
	bigOne = big.NewInt(1)
	mask64 = new(big.Int).SetUint64(^uint64(0))
)

// onesOf returns 2^width - 1.
func onesOf(width int) *big.Int {
	v := new(big.Int).Lsh(bigOne, uint(width))
	return v.Sub(v, bigOne)
}

// mask reduces v modulo 2^width in place and returns it.
func mask(v *big.Int, width int) *big.Int {
	return v.And(v, onesOf(width))
}

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
