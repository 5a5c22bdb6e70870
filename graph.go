package rtl

import (
	"fmt"
	"math/bits"
	"strings"

	"fortio.org/safecast"
	"github.com/benbjohnson/immutable"

	"github.com/rtlgo/rtl/apint"
)

// Graph owns the operations and values of a single operation DAG. It is
// the arena the host builds into and the fold/canonicalization engine
// rewrites through. A Graph is not safe for concurrent mutation.
type Graph struct {
	ops    []*Operation
	nextID uint64

	// Uniqued constant results, keyed by type and payload.
	constants *immutable.SortedMap
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		constants: immutable.NewSortedMap(&stringComparer{}),
	}
}

// Input creates a free value of the given type, analogous to a block
// argument supplied by the surrounding module.
func (g *Graph) Input(t Type) *Value {
	return g.newValue(t, nil)
}

// Operations returns the live (non-retired) operations in creation order.
func (g *Graph) Operations() []*Operation {
	a := make([]*Operation, 0, len(g.ops))
	for _, op := range g.ops {
		if !op.retired {
			a = append(a, op)
		}
	}
	return a
}

// NumOperations returns the number of live operations.
func (g *Graph) NumOperations() int {
	return len(g.Operations())
}

// ReplaceAllUses redirects every operand slot referencing old to new.
func (g *Graph) ReplaceAllUses(old, new *Value) {
	if old == new {
		return
	}
	for _, user := range old.uses {
		for i, operand := range user.operands {
			if operand == old {
				user.operands[i] = new
				new.uses = append(new.uses, user)
			}
		}
	}
	old.uses = nil
}

// ReplaceOp redirects all consumers of op's result to with, then retires
// op. The replacement value must already exist in the graph.
func (g *Graph) ReplaceOp(op *Operation, with *Value) {
	assert(!op.retired, "replacing retired operation %s", op)
	g.ReplaceAllUses(op.result, with)
	g.Retire(op)
}

// Retire removes op from the live graph and from its operands' use
// lists. The operation's result must no longer have consumers.
func (g *Graph) Retire(op *Operation) {
	op.retired = true
	for _, operand := range op.operands {
		removeUse(operand, op)
	}
}

func removeUse(v *Value, op *Operation) {
	uses := v.uses[:0]
	for _, u := range v.uses {
		if u != op {
			uses = append(uses, u)
		}
	}
	v.uses = uses
}

// String returns a printable listing of the live operations.
func (g *Graph) String() string {
	var sb strings.Builder
	for _, op := range g.Operations() {
		fmt.Fprintf(&sb, "%%%d = %s", op.result.id, op)
		for _, operand := range op.operands {
			fmt.Fprintf(&sb, " %%%d", operand.id)
		}
		fmt.Fprintf(&sb, " : %s\n", op.result.typ)
	}
	return sb.String()
}

func (g *Graph) newValue(t Type, def *Operation) *Value {
	g.nextID++
	return &Value{id: g.nextID, typ: t, def: def}
}

func (g *Graph) addOp(op *Operation, resultType Type) *Value {
	op.result = g.newValue(resultType, op)
	for _, operand := range op.operands {
		operand.uses = append(operand.uses, op)
	}
	g.ops = append(g.ops, op)
	return op.result
}

// Constant returns an unsigned constant value holding payload. Constants
// are uniqued: an identical payload returns the existing value.
func (g *Graph) Constant(payload apint.Int) *Value {
	return g.ConstantOfType(payload, UInt(payload.Width()))
}

// ConstantOfType returns a constant value of the given integer type.
// The type width must match the payload width.
func (g *Graph) ConstantOfType(payload apint.Int, t IntType) *Value {
	assert(t.HasWidth() && t.Width == payload.Width(),
		"constant width mismatch: %s vs %s", t, payload)

	key := fmt.Sprintf("%s:%s", t, payload)
	if v, ok := g.constants.Get(key); ok {
		return v.(*Value)
	}
	result := g.addOp(&Operation{kind: OpConstant, value: payload}, t)
	g.constants = g.constants.Set(key, result)
	return result
}

// Add returns the sum of xs.
func (g *Graph) Add(xs ...*Value) *Value { return g.variadic(OpAdd, xs) }

// Mul returns the product of xs.
func (g *Graph) Mul(xs ...*Value) *Value { return g.variadic(OpMul, xs) }

// And returns the bitwise AND of xs.
func (g *Graph) And(xs ...*Value) *Value { return g.variadic(OpAnd, xs) }

// Or returns the bitwise OR of xs.
func (g *Graph) Or(xs ...*Value) *Value { return g.variadic(OpOr, xs) }

// Xor returns the bitwise XOR of xs.
func (g *Graph) Xor(xs ...*Value) *Value { return g.variadic(OpXor, xs) }

// Merge returns the multi-driver wire union of xs.
func (g *Graph) Merge(xs ...*Value) *Value { return g.variadic(OpMerge, xs) }

func (g *Graph) variadic(kind OpKind, xs []*Value) *Value {
	assert(len(xs) > 0, "%s: no operands", kind)
	return g.addOp(&Operation{kind: kind, operands: xs}, xs[0].typ)
}

// Sub returns the difference of x and y.
func (g *Graph) Sub(x, y *Value) *Value { return g.binary(OpSub, x, y) }

// DivU returns the unsigned quotient of x and y.
func (g *Graph) DivU(x, y *Value) *Value { return g.binary(OpDivU, x, y) }

// DivS returns the signed quotient of x and y.
func (g *Graph) DivS(x, y *Value) *Value { return g.binary(OpDivS, x, y) }

// ModU returns the unsigned remainder of x and y.
func (g *Graph) ModU(x, y *Value) *Value { return g.binary(OpModU, x, y) }

// ModS returns the signed remainder of x and y.
func (g *Graph) ModS(x, y *Value) *Value { return g.binary(OpModS, x, y) }

func (g *Graph) binary(kind OpKind, x, y *Value) *Value {
	return g.addOp(&Operation{kind: kind, operands: []*Value{x, y}}, x.typ)
}

// ICmp returns the 1-bit comparison of x and y under pred.
func (g *Graph) ICmp(pred ICmpPredicate, x, y *Value) *Value {
	return g.addOp(&Operation{kind: OpICmp, pred: pred, operands: []*Value{x, y}}, UInt(1))
}

// AndR returns the AND reduction of all bits of x.
func (g *Graph) AndR(x *Value) *Value { return g.reduction(OpAndR, x) }

// OrR returns the OR reduction of all bits of x.
func (g *Graph) OrR(x *Value) *Value { return g.reduction(OpOrR, x) }

// XorR returns the XOR reduction of all bits of x.
func (g *Graph) XorR(x *Value) *Value { return g.reduction(OpXorR, x) }

func (g *Graph) reduction(kind OpKind, x *Value) *Value {
	return g.addOp(&Operation{kind: kind, operands: []*Value{x}}, UInt(1))
}

// Extract returns bits hi down to lo of x as an unsigned integer.
func (g *Graph) Extract(x *Value, hi, lo int) *Value {
	op := &Operation{kind: OpExtract, operands: []*Value{x}, hi: hi, lo: lo}
	return g.addOp(op, UInt(hi-lo+1))
}

// Pad returns x extended to the given width, preserving signedness.
func (g *Graph) Pad(x *Value, width int) *Value {
	t := IntType{Width: width, Sign: signOf(x.typ)}
	op := &Operation{kind: OpPad, operands: []*Value{x}, amount: width}
	return g.addOp(op, t)
}

// Shl returns x shifted left by the literal amount. The result is wider
// than the input by the shift amount.
func (g *Graph) Shl(x *Value, amount int) *Value {
	t := IntType{Width: WidthUnknown, Sign: signOf(x.typ)}
	if it, ok := x.typ.(IntType); ok && it.HasWidth() {
		t.Width = it.Width + amount
	}
	op := &Operation{kind: OpShl, operands: []*Value{x}, amount: amount}
	return g.addOp(op, t)
}

// Shr returns x shifted right by the literal amount. The result keeps at
// least one bit.
func (g *Graph) Shr(x *Value, amount int) *Value {
	t := IntType{Width: WidthUnknown, Sign: signOf(x.typ)}
	if it, ok := x.typ.(IntType); ok && it.HasWidth() {
		t.Width = max(it.Width-amount, 1)
	}
	op := &Operation{kind: OpShr, operands: []*Value{x}, amount: amount}
	return g.addOp(op, t)
}

// Head returns the amount most significant bits of x.
func (g *Graph) Head(x *Value, amount int) *Value {
	op := &Operation{kind: OpHead, operands: []*Value{x}, amount: amount}
	return g.addOp(op, UInt(amount))
}

// Tail returns x with the amount most significant bits dropped.
func (g *Graph) Tail(x *Value, amount int) *Value {
	width := WidthUnknown
	if it, ok := x.typ.(IntType); ok && it.HasWidth() {
		width = it.Width - amount
	}
	op := &Operation{kind: OpTail, operands: []*Value{x}, amount: amount}
	return g.addOp(op, UInt(width))
}

// Concat returns the concatenation of xs, first operand occupying the
// most significant bits.
func (g *Graph) Concat(xs ...*Value) *Value {
	assert(len(xs) > 0, "cat: no operands")
	width := 0
	for _, x := range xs {
		it, ok := x.typ.(IntType)
		if !ok || !it.HasWidth() {
			width = WidthUnknown
			break
		}
		width += it.Width
	}
	return g.addOp(&Operation{kind: OpConcat, operands: xs}, UInt(width))
}

// Mux returns high when sel is 1, low otherwise.
func (g *Graph) Mux(sel, high, low *Value) *Value {
	return g.addOp(&Operation{kind: OpMux, operands: []*Value{sel, high, low}}, high.typ)
}

// StructExtract returns the named field of struct value x.
func (g *Graph) StructExtract(x *Value, field string) *Value {
	t := Type(IntType{Width: WidthUnknown})
	if st, ok := x.typ.(StructType); ok {
		if ft := st.FieldType(field); ft != nil {
			t = ft
		}
	}
	op := &Operation{kind: OpStructExtract, operands: []*Value{x}, field: field}
	return g.addOp(op, t)
}

// StructInject returns struct value x with the named field replaced by v.
func (g *Graph) StructInject(x *Value, field string, v *Value) *Value {
	op := &Operation{kind: OpStructInject, operands: []*Value{x, v}, field: field}
	return g.addOp(op, x.typ)
}

// ArraySlice returns a size-element slice of array x starting at the
// dynamic index.
func (g *Graph) ArraySlice(x *Value, index *Value, size int) *Value {
	n, err := safecast.Conv[uint32](size)
	assert(err == nil, "array_slice: invalid size %d", size)

	t := x.typ
	if elem := ArrayElementType(x.typ); elem != nil {
		t = ArrayType{Elem: elem, Size: n}
	}
	op := &Operation{kind: OpArraySlice, operands: []*Value{x, index}}
	return g.addOp(op, t)
}

// AsSInt reinterprets the bits of x as a signed integer.
func (g *Graph) AsSInt(x *Value) *Value { return g.reinterpret(OpAsSInt, x, Signed) }

// AsUInt reinterprets the bits of x as an unsigned integer.
func (g *Graph) AsUInt(x *Value) *Value { return g.reinterpret(OpAsUInt, x, Unsigned) }

func (g *Graph) reinterpret(kind OpKind, x *Value, sign Signedness) *Value {
	t := IntType{Width: WidthUnknown, Sign: sign}
	if it, ok := x.typ.(IntType); ok {
		t.Width = it.Width
	}
	return g.addOp(&Operation{kind: kind, operands: []*Value{x}}, t)
}

// AsPassive converts x to the passive variant of its type.
func (g *Graph) AsPassive(x *Value) *Value {
	op := &Operation{kind: OpAsPassive, operands: []*Value{x}}
	return g.addOp(op, PassiveType(x.typ))
}

// AsNonPassiveOf converts passive value x back to the oriented type t.
func (g *Graph) AsNonPassiveOf(x *Value, t Type) *Value {
	op := &Operation{kind: OpAsNonPassive, operands: []*Value{x}}
	return g.addOp(op, t)
}

// ArraySliceIndexWidth returns the bit width required of an array-slice
// index into an array of the given size: ceil(log2(size)).
func ArraySliceIndexWidth(size uint32) int {
	if size <= 1 {
		return 0
	}
	return bits.Len32(size - 1)
}

func signOf(t Type) Signedness {
	if it, ok := t.(IntType); ok {
		return it.Sign
	}
	return Signless
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// stringComparer compares two string keys. Implements immutable.Comparer.
type stringComparer struct{}

// Compare returns -1 if a is less than b, 0 if equal, and 1 otherwise.
func (c *stringComparer) Compare(a, b interface{}) int {
	return strings.Compare(a.(string), b.(string))
}
