package apint_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtlgo/rtl/apint"
)

func TestNew(t *testing.T) {
	v := apint.New(0x1ff, 8)
	assert.Equal(t, 8, v.Width())
	assert.Equal(t, uint64(0xff), v.Uint64())
	assert.True(t, v.IsAllOnes())

	v = apint.New(0, 4)
	assert.True(t, v.IsZero())
	assert.False(t, v.IsAllOnes())
}

func TestFromBig(t *testing.T) {
	v := apint.FromBig(big.NewInt(-1), 16)
	assert.True(t, v.IsAllOnes())
	assert.True(t, v.IsNegative())
	assert.Equal(t, int64(-1), v.SignedBig().Int64())

	wide := new(big.Int).Lsh(big.NewInt(1), 100) // 2^100
	v = apint.FromBig(wide, 128)
	assert.Equal(t, 128, v.Width())
	assert.Equal(t, uint(1), v.Bit(100))
	assert.Equal(t, uint(0), v.Bit(99))
}

func TestArithmetic(t *testing.T) {
	a := apint.New(200, 8)
	b := apint.New(100, 8)

	assert.Equal(t, uint64(44), a.Add(b).Uint64()) // wraps at 8 bits
	assert.Equal(t, uint64(100), a.Sub(b).Uint64())
	assert.Equal(t, uint64(0x20), a.Mul(b).Uint64()) // 20000 & 0xff
	assert.Equal(t, uint64(2), a.UDiv(b).Uint64())
	assert.Equal(t, uint64(0), a.URem(b).Uint64())
}

func TestSignedDivRem(t *testing.T) {
	a := apint.FromInt64(-7, 8)
	b := apint.FromInt64(2, 8)

	require.Equal(t, int64(-3), a.SDiv(b).SignedBig().Int64()) // truncates toward zero
	require.Equal(t, int64(-1), a.SRem(b).SignedBig().Int64()) // sign of dividend

	assert.Panics(t, func() { a.SDiv(apint.New(0, 8)) })
	assert.Panics(t, func() { a.UDiv(apint.New(0, 8)) })
}

func TestBitwise(t *testing.T) {
	a := apint.New(0b1010, 4)
	b := apint.New(0b1111, 4)

	assert.Equal(t, uint64(0b1010), a.And(b).Uint64())
	assert.Equal(t, uint64(0b1111), a.Or(b).Uint64())
	assert.Equal(t, uint64(0b0101), a.Xor(b).Uint64())
	assert.Equal(t, uint64(0b0101), a.Not().Uint64())
}

func TestShifts(t *testing.T) {
	a := apint.FromInt64(-8, 8) // 0xf8

	assert.Equal(t, uint64(0xe0), a.Shl(2).Uint64())
	assert.Equal(t, uint64(0x3e), a.LShr(2).Uint64())
	assert.Equal(t, int64(-2), a.AShr(2).SignedBig().Int64())
	assert.Equal(t, int64(-1), a.AShr(7).SignedBig().Int64())
}

func TestCompare(t *testing.T) {
	a := apint.FromInt64(-1, 8) // 0xff
	b := apint.New(1, 8)

	assert.True(t, a.Ugt(b)) // 255 > 1 unsigned
	assert.True(t, a.Slt(b)) // -1 < 1 signed
	assert.True(t, a.Uge(b))
	assert.True(t, a.Sle(b))
	assert.False(t, a.Eq(b))
	assert.True(t, a.Eq(apint.New(0xff, 8)))
}

func TestExtension(t *testing.T) {
	a := apint.FromInt64(-2, 4) // 0xe

	assert.Equal(t, uint64(0x0e), a.ZExt(8).Uint64())
	assert.Equal(t, uint64(0xfe), a.SExt(8).Uint64())
	assert.Equal(t, uint64(0x2), a.Trunc(2).Uint64())
	assert.Equal(t, 4, a.TruncOrSelf(8).Width())
	assert.Equal(t, 2, a.TruncOrSelf(2).Width())
}

func TestExtractConcat(t *testing.T) {
	a := apint.New(0xabcd, 16)

	e := a.Extract(4, 8)
	require.Equal(t, 8, e.Width())
	require.Equal(t, uint64(0xbc), e.Uint64())

	hi := apint.New(0xab, 8)
	lo := apint.New(0xcd, 8)
	c := hi.Concat(lo)
	require.Equal(t, 16, c.Width())
	require.Equal(t, uint64(0xabcd), c.Uint64())
}

func TestReductions(t *testing.T) {
	assert.True(t, apint.New(0xf, 4).AndR())
	assert.False(t, apint.New(0xe, 4).AndR())
	assert.True(t, apint.New(0x2, 4).OrR())
	assert.False(t, apint.New(0, 4).OrR())
	assert.True(t, apint.New(0b0111, 4).XorR())
	assert.False(t, apint.New(0b0110, 4).XorR())
}

func TestString(t *testing.T) {
	assert.Equal(t, "8'hff", apint.New(255, 8).String())
	assert.Equal(t, "1'h0", apint.Bool(false).String())
}

func TestWideArithmetic(t *testing.T) {
	// 2^100 - 1 at 100 bits is all ones.
	ones := apint.FromBig(big.NewInt(-1), 100)
	one := apint.New(1, 100)

	assert.True(t, ones.IsAllOnes())
	assert.True(t, ones.Add(one).IsZero())
	assert.False(t, ones.XorR()) // 100 set bits, even parity
}
