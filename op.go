package rtl

import (
	"fmt"

	"github.com/rtlgo/rtl/apint"
)

// OpKind identifies the kind of an operation.
type OpKind uint8

const (
	OpInvalid OpKind = iota

	OpConstant

	// Variadic, commutative integer operations.
	OpAdd
	OpMul
	OpAnd
	OpOr
	OpXor

	// Binary integer operations.
	OpSub
	OpDivU
	OpDivS
	OpModU
	OpModS

	// Comparison.
	OpICmp

	// Bitwise reductions.
	OpAndR
	OpOrR
	OpXorR

	// Bit manipulation with literal attributes.
	OpExtract
	OpPad
	OpShl
	OpShr
	OpHead
	OpTail

	OpConcat
	OpMux
	OpMerge

	// Aggregates.
	OpStructExtract
	OpStructInject
	OpArraySlice

	// Reinterpretation casts.
	OpAsSInt
	OpAsUInt
	OpAsPassive
	OpAsNonPassive
)

var opKindNames = [...]string{
	OpConstant:      "constant",
	OpAdd:           "add",
	OpMul:           "mul",
	OpAnd:           "and",
	OpOr:            "or",
	OpXor:           "xor",
	OpSub:           "sub",
	OpDivU:          "divu",
	OpDivS:          "divs",
	OpModU:          "modu",
	OpModS:          "mods",
	OpICmp:          "icmp",
	OpAndR:          "andr",
	OpOrR:           "orr",
	OpXorR:          "xorr",
	OpExtract:       "bits",
	OpPad:           "pad",
	OpShl:           "shl",
	OpShr:           "shr",
	OpHead:          "head",
	OpTail:          "tail",
	OpConcat:        "cat",
	OpMux:           "mux",
	OpMerge:         "merge",
	OpStructExtract: "struct_extract",
	OpStructInject:  "struct_inject",
	OpArraySlice:    "array_slice",
	OpAsSInt:        "as_sint",
	OpAsUInt:        "as_uint",
	OpAsPassive:     "as_passive",
	OpAsNonPassive:  "as_non_passive",
}

// String returns the string representation of the kind.
func (k OpKind) String() string {
	if int(k) < len(opKindNames) && opKindNames[k] != "" {
		return opKindNames[k]
	}
	return fmt.Sprintf("OpKind<%d>", k)
}

// IsVariadic returns true if k accepts two or more operands.
func (k OpKind) IsVariadic() bool {
	switch k {
	case OpAdd, OpMul, OpAnd, OpOr, OpXor, OpConcat, OpMerge:
		return true
	default:
		return false
	}
}

// IsBinary returns true if k takes exactly two integer operands.
func (k OpKind) IsBinary() bool {
	switch k {
	case OpSub, OpDivU, OpDivS, OpModU, OpModS:
		return true
	default:
		return false
	}
}

// IsCast returns true if k is a reinterpretation cast.
func (k OpKind) IsCast() bool {
	switch k {
	case OpAsSInt, OpAsUInt, OpAsPassive, OpAsNonPassive:
		return true
	default:
		return false
	}
}

// ICmpPredicate selects the comparison performed by an icmp operation.
type ICmpPredicate uint8

const (
	PredEq ICmpPredicate = iota
	PredNe
	PredSlt
	PredSle
	PredSgt
	PredSge
	PredUlt
	PredUle
	PredUgt
	PredUge
)

var predicateNames = [...]string{
	PredEq:  "eq",
	PredNe:  "ne",
	PredSlt: "slt",
	PredSle: "sle",
	PredSgt: "sgt",
	PredSge: "sge",
	PredUlt: "ult",
	PredUle: "ule",
	PredUgt: "ugt",
	PredUge: "uge",
}

// String returns the string representation of the predicate.
func (p ICmpPredicate) String() string {
	if int(p) < len(predicateNames) {
		return predicateNames[p]
	}
	return fmt.Sprintf("ICmpPredicate<%d>", p)
}

// IsSigned returns true if p compares under the signed interpretation.
func (p ICmpPredicate) IsSigned() bool {
	switch p {
	case PredSlt, PredSle, PredSgt, PredSge:
		return true
	default:
		return false
	}
}

// IsEquality returns true if p is eq or ne.
func (p ICmpPredicate) IsEquality() bool {
	return p == PredEq || p == PredNe
}

// Value is a handle to the single result of an operation or to a graph
// input. A value is produced by at most one operation and consumed by any
// number of operations.
type Value struct {
	id   uint64
	typ  Type
	def  *Operation
	uses []*Operation
}

// ID returns the stable identifier of v within its graph.
func (v *Value) ID() uint64 { return v.id }

// Type returns the type of v.
func (v *Value) Type() Type { return v.typ }

// DefiningOp returns the operation producing v, or nil for graph inputs.
func (v *Value) DefiningOp() *Operation { return v.def }

// Uses returns the operations consuming v, one entry per operand slot.
func (v *Value) Uses() []*Operation { return v.uses }

// NumUses returns the number of operand slots referencing v.
func (v *Value) NumUses() int { return len(v.uses) }

// String returns a short description of v.
func (v *Value) String() string {
	if v.def != nil {
		return fmt.Sprintf("%%%d = %s : %s", v.id, v.def.Kind(), v.typ)
	}
	return fmt.Sprintf("%%%d : %s", v.id, v.typ)
}

// Operation is a single node in the graph: a kind, ordered operands, one
// typed result, and kind-specific attributes. Operations are immutable
// after construction; the only sanctioned mutation is replace-and-retire
// through the owning Graph.
type Operation struct {
	kind     OpKind
	operands []*Value
	result   *Value

	value  apint.Int     // OpConstant payload
	pred   ICmpPredicate // OpICmp
	lo, hi int           // OpExtract bit range
	amount int           // OpPad/OpShl/OpShr/OpHead/OpTail literal
	field  string        // struct operations

	retired bool
}

// Kind returns the operation kind.
func (op *Operation) Kind() OpKind { return op.kind }

// Operands returns the ordered operand values.
func (op *Operation) Operands() []*Value { return op.operands }

// Operand returns operand i.
func (op *Operation) Operand(i int) *Value { return op.operands[i] }

// NumOperands returns the number of operands.
func (op *Operation) NumOperands() int { return len(op.operands) }

// Result returns the single result value.
func (op *Operation) Result() *Value { return op.result }

// ConstantPayload returns the payload of a constant operation.
func (op *Operation) ConstantPayload() apint.Int {
	assert(op.kind == OpConstant, "payload of non-constant %s", op.kind)
	return op.value
}

// Predicate returns the comparison predicate of an icmp operation.
func (op *Operation) Predicate() ICmpPredicate {
	assert(op.kind == OpICmp, "predicate of non-icmp %s", op.kind)
	return op.pred
}

// Lo returns the low bit of an extract operation.
func (op *Operation) Lo() int { return op.lo }

// Hi returns the high bit of an extract operation.
func (op *Operation) Hi() int { return op.hi }

// Amount returns the literal amount of a pad, shift, head, or tail
// operation.
func (op *Operation) Amount() int { return op.amount }

// Field returns the field name of a struct operation.
func (op *Operation) Field() string { return op.field }

// Retired returns true once op has been replaced and removed from the
// live graph.
func (op *Operation) Retired() bool { return op.retired }

// String returns a short description of op.
func (op *Operation) String() string {
	switch op.kind {
	case OpConstant:
		return fmt.Sprintf("%s %s", op.kind, op.value)
	case OpICmp:
		return fmt.Sprintf("%s %s", op.kind, op.pred)
	case OpExtract:
		return fmt.Sprintf("%s %d:%d", op.kind, op.hi, op.lo)
	case OpPad, OpShl, OpShr, OpHead, OpTail:
		return fmt.Sprintf("%s %d", op.kind, op.amount)
	case OpStructExtract, OpStructInject:
		return fmt.Sprintf("%s %q", op.kind, op.field)
	default:
		return op.kind.String()
	}
}
