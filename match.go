package rtl

import "github.com/rtlgo/rtl/apint"

// ConstantValue returns the payload of v's defining constant operation.
// It reports false if v is a graph input or produced by any other kind.
func ConstantValue(v *Value) (apint.Int, bool) {
	if op := v.DefiningOp(); op != nil && op.Kind() == OpConstant {
		return op.value, true
	}
	return apint.Int{}, false
}

// IsConstantZero returns true if v is a constant with all bits clear.
func IsConstantZero(v *Value) bool {
	c, ok := ConstantValue(v)
	return ok && c.IsZero()
}

// IsConstantAllOnes returns true if v is a constant with all bits set.
func IsConstantAllOnes(v *Value) bool {
	c, ok := ConstantValue(v)
	return ok && c.IsAllOnes()
}
