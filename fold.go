package rtl

import (
	"github.com/rtlgo/rtl/apint"
)

// FoldResult is the outcome of a fold attempt: nil for "no
// simplification", a FoldedValue to reuse an existing value, or a
// FoldedConstant carrying a payload for the host to materialize.
type FoldResult interface {
	foldResult()
}

// FoldedValue replaces an operation's result with an existing value.
type FoldedValue struct {
	Value *Value
}

// FoldedConstant replaces an operation's result with a constant payload
// of the operation's declared result type.
type FoldedConstant struct {
	Value apint.Int
}

func (FoldedValue) foldResult()    {}
func (FoldedConstant) foldResult() {}

// Fold attempts a pure, local simplification of op. It never allocates
// operations and never mutates the graph; the caller applies the result.
// Operations must pass VerifyOp before being folded. Rules decline
// whenever a width they depend on is statically unknown.
func Fold(op *Operation) FoldResult {
	switch op.kind {
	case OpConstant:
		return FoldedConstant{Value: op.value}
	case OpAdd, OpMul, OpSub:
		return foldArith(op)
	case OpDivU, OpDivS:
		return foldDiv(op)
	case OpModU, OpModS:
		return foldMod(op)
	case OpAnd:
		return foldAnd(op)
	case OpOr:
		return foldOr(op)
	case OpXor:
		return foldXor(op)
	case OpICmp:
		return foldICmp(op)
	case OpAndR, OpOrR, OpXorR:
		return foldReduction(op)
	case OpExtract:
		return foldExtract(op)
	case OpPad:
		return foldPad(op)
	case OpShl:
		return foldShl(op)
	case OpShr:
		return foldShr(op)
	case OpConcat:
		return foldConcat(op)
	case OpMux:
		return foldMux(op)
	case OpAsSInt, OpAsUInt:
		return foldReinterpret(op)
	case OpAsPassive, OpAsNonPassive:
		return foldOrientationCast(op)
	default:
		// merge, head, tail, and the aggregate operations have no folds.
		return nil
	}
}

// constOperands returns the payloads of all operands if every operand is
// a constant of one shared width.
func constOperands(op *Operation) ([]apint.Int, bool) {
	a := make([]apint.Int, len(op.operands))
	for i, operand := range op.operands {
		c, ok := ConstantValue(operand)
		if !ok {
			return nil, false
		}
		if i > 0 && c.Width() != a[0].Width() {
			return nil, false
		}
		a[i] = c
	}
	return a, len(a) > 0
}

func foldArith(op *Operation) FoldResult {
	cs, ok := constOperands(op)
	if !ok {
		return nil
	}
	acc := cs[0]
	for _, c := range cs[1:] {
		switch op.kind {
		case OpAdd:
			acc = acc.Add(c)
		case OpMul:
			acc = acc.Mul(c)
		case OpSub:
			acc = acc.Sub(c)
		}
	}
	return FoldedConstant{Value: acc}
}

func foldDiv(op *Operation) FoldResult {
	lhs, rhs := op.operands[0], op.operands[1]

	// div(x, x) -> 1. Division by zero is undefined, which lets self
	// division fold without a zero check. Width 2 stands in when the
	// result width is unknown.
	if lhs == rhs {
		width := intWidthOf(op.result.typ)
		if width == WidthUnknown {
			width = 2
		}
		if width < 1 {
			return nil
		}
		return FoldedConstant{Value: apint.New(1, width)}
	}

	// div(x, 1) -> x, only when the operand type already matches the
	// result type; signed division that changes width needs an explicit
	// extension and is not folded here.
	if c, ok := ConstantValue(rhs); ok && c.IsOne() && TypeEqual(lhs.typ, op.result.typ) {
		return FoldedValue{Value: lhs}
	}

	if lc, ok := ConstantValue(lhs); ok {
		if rc, ok := ConstantValue(rhs); ok && !rc.IsZero() && lc.Width() == rc.Width() {
			if op.kind == OpDivS {
				return FoldedConstant{Value: lc.SDiv(rc)}
			}
			return FoldedConstant{Value: lc.UDiv(rc)}
		}
	}
	return nil
}

func foldMod(op *Operation) FoldResult {
	if lc, ok := ConstantValue(op.operands[0]); ok {
		if rc, ok := ConstantValue(op.operands[1]); ok && !rc.IsZero() && lc.Width() == rc.Width() {
			if op.kind == OpModS {
				return FoldedConstant{Value: lc.SRem(rc)}
			}
			return FoldedConstant{Value: lc.URem(rc)}
		}
	}
	return nil
}

func foldAnd(op *Operation) FoldResult {
	if len(op.operands) == 2 {
		lhs, rhs := op.operands[0], op.operands[1]

		// and(x, 0) -> 0
		if IsConstantZero(rhs) && TypeEqual(rhs.typ, op.result.typ) {
			return FoldedValue{Value: rhs}
		}

		// and(x, -1) -> x
		if IsConstantAllOnes(rhs) && TypeEqual(lhs.typ, op.result.typ) &&
			TypeEqual(rhs.typ, op.result.typ) {
			return FoldedValue{Value: lhs}
		}

		// and(x, x) -> x. Referential identity only.
		if lhs == rhs && TypeEqual(rhs.typ, op.result.typ) {
			return FoldedValue{Value: rhs}
		}
	}
	return foldBitwiseConst(op)
}

func foldOr(op *Operation) FoldResult {
	if len(op.operands) == 2 {
		lhs, rhs := op.operands[0], op.operands[1]

		// or(x, 0) -> x
		if IsConstantZero(rhs) && TypeEqual(lhs.typ, op.result.typ) {
			return FoldedValue{Value: lhs}
		}

		// or(x, -1) -> -1
		if IsConstantAllOnes(rhs) && TypeEqual(rhs.typ, op.result.typ) &&
			TypeEqual(lhs.typ, op.result.typ) {
			return FoldedValue{Value: rhs}
		}

		// or(x, x) -> x
		if lhs == rhs && TypeEqual(rhs.typ, op.result.typ) {
			return FoldedValue{Value: rhs}
		}
	}
	return foldBitwiseConst(op)
}

func foldXor(op *Operation) FoldResult {
	if len(op.operands) == 2 {
		lhs, rhs := op.operands[0], op.operands[1]

		// xor(x, 0) -> x
		if IsConstantZero(rhs) && TypeEqual(lhs.typ, op.result.typ) {
			return FoldedValue{Value: lhs}
		}

		// xor(x, x) -> 0. Declined for zero or unknown widths: there is
		// no zero-width constant to materialize.
		if lhs == rhs {
			if width := intWidthOf(op.result.typ); width > 0 {
				return FoldedConstant{Value: apint.New(0, width)}
			}
			return nil
		}
	}
	return foldBitwiseConst(op)
}

func foldBitwiseConst(op *Operation) FoldResult {
	cs, ok := constOperands(op)
	if !ok {
		return nil
	}
	acc := cs[0]
	for _, c := range cs[1:] {
		switch op.kind {
		case OpAnd:
			acc = acc.And(c)
		case OpOr:
			acc = acc.Or(c)
		case OpXor:
			acc = acc.Xor(c)
		}
	}
	return FoldedConstant{Value: acc}
}

func foldICmp(op *Operation) FoldResult {
	lhs, rhs := op.operands[0], op.operands[1]

	rc, rok := ConstantValue(rhs)
	if !rok {
		return nil
	}

	if lc, ok := ConstantValue(lhs); ok && lc.Width() == rc.Width() {
		return FoldedConstant{Value: apint.Bool(evalPredicate(op.pred, lc, rc))}
	}

	// eq(x, 1) -> x and ne(x, 0) -> x when x is 1 bit and the operand
	// type matches the result type exactly.
	if TypeEqual(lhs.typ, op.result.typ) && TypeEqual(rhs.typ, op.result.typ) {
		if op.pred == PredEq && rc.IsAllOnes() {
			return FoldedValue{Value: lhs}
		}
		if op.pred == PredNe && rc.IsZero() {
			return FoldedValue{Value: lhs}
		}
	}
	return nil
}

func evalPredicate(pred ICmpPredicate, a, b apint.Int) bool {
	switch pred {
	case PredEq:
		return a.Eq(b)
	case PredNe:
		return !a.Eq(b)
	case PredSlt:
		return a.Slt(b)
	case PredSle:
		return a.Sle(b)
	case PredSgt:
		return a.Sgt(b)
	case PredSge:
		return a.Sge(b)
	case PredUlt:
		return a.Ult(b)
	case PredUle:
		return a.Ule(b)
	case PredUgt:
		return a.Ugt(b)
	case PredUge:
		return a.Uge(b)
	default:
		panic("unreachable")
	}
}

func foldReduction(op *Operation) FoldResult {
	c, ok := ConstantValue(op.operands[0])
	if !ok {
		return nil
	}
	switch op.kind {
	case OpAndR:
		return FoldedConstant{Value: apint.Bool(c.AndR())}
	case OpOrR:
		return FoldedConstant{Value: apint.Bool(c.OrR())}
	case OpXorR:
		return FoldedConstant{Value: apint.Bool(c.XorR())}
	default:
		panic("unreachable")
	}
}

func foldExtract(op *Operation) FoldResult {
	in := op.operands[0]
	it, ok := in.typ.(IntType)
	if !ok || !it.HasWidth() {
		return nil
	}

	// Extracting the entire input is the input.
	if TypeEqual(in.typ, op.result.typ) {
		return FoldedValue{Value: in}
	}

	if c, ok := ConstantValue(in); ok {
		return FoldedConstant{Value: c.LShr(uint(op.lo)).TruncOrSelf(op.hi - op.lo + 1)}
	}
	return nil
}

func foldPad(op *Operation) FoldResult {
	in := op.operands[0]

	// pad(x) -> x if the width doesn't change.
	if TypeEqual(in.typ, op.result.typ) {
		return FoldedValue{Value: in}
	}

	it, ok := in.typ.(IntType)
	if !ok || !it.HasWidth() {
		return nil
	}
	destWidth := intWidthOf(op.result.typ)
	if destWidth == WidthUnknown {
		return nil
	}

	if c, ok := ConstantValue(in); ok {
		if it.Sign == Signed {
			return FoldedConstant{Value: c.SExt(destWidth)}
		}
		return FoldedConstant{Value: c.ZExt(destWidth)}
	}
	return nil
}

func foldShl(op *Operation) FoldResult {
	in := op.operands[0]

	// shl(x, 0) -> x
	if op.amount == 0 {
		return FoldedValue{Value: in}
	}

	it, ok := in.typ.(IntType)
	if !ok || !it.HasWidth() {
		return nil
	}

	if c, ok := ConstantValue(in); ok {
		resultWidth := it.Width + op.amount
		shift := op.amount
		if shift > resultWidth {
			shift = resultWidth
		}
		return FoldedConstant{Value: c.ZExt(resultWidth).Shl(uint(shift))}
	}
	return nil
}

func foldShr(op *Operation) FoldResult {
	in := op.operands[0]

	// shr(x, 0) -> x
	if op.amount == 0 {
		return FoldedValue{Value: in}
	}

	it, ok := in.typ.(IntType)
	if !ok || !it.HasWidth() {
		return nil
	}

	// shr(x, n) where n covers all of x's bits is 0 for unsigned x.
	// Signed x keeps its sign bit; that case is a canonicalization.
	if op.amount >= it.Width && it.Sign == Unsigned {
		return FoldedConstant{Value: apint.New(0, 1)}
	}

	if c, ok := ConstantValue(in); ok {
		var v apint.Int
		if it.Sign == Signed {
			v = c.AShr(uint(min(op.amount, it.Width-1)))
		} else {
			v = c.LShr(uint(min(op.amount, it.Width)))
		}
		return FoldedConstant{Value: v.TruncOrSelf(max(it.Width-op.amount, 1))}
	}
	return nil
}

func foldConcat(op *Operation) FoldResult {
	acc, ok := ConstantValue(op.operands[0])
	if !ok {
		return nil
	}
	for _, operand := range op.operands[1:] {
		c, ok := ConstantValue(operand)
		if !ok {
			return nil
		}
		acc = acc.Concat(c)
	}
	return FoldedConstant{Value: acc}
}

func foldMux(op *Operation) FoldResult {
	sel, high, low := op.operands[0], op.operands[1], op.operands[2]

	// mux(0, a, b) -> b; mux(1, a, b) -> a.
	if c, ok := ConstantValue(sel); ok {
		if c.IsZero() && TypeEqual(low.typ, op.result.typ) {
			return FoldedValue{Value: low}
		}
		if !c.IsZero() && TypeEqual(high.typ, op.result.typ) {
			return FoldedValue{Value: high}
		}
	}

	// mux(cond, x, x) -> x. Referential identity only.
	if high == low {
		return FoldedValue{Value: high}
	}

	// mux(cond, 1, 0) -> cond.
	if lc, ok := ConstantValue(low); ok {
		if hc, ok := ConstantValue(high); ok {
			if hc.IsOne() && lc.IsZero() && TypeEqual(op.result.typ, sel.typ) {
				return FoldedValue{Value: sel}
			}
		}
	}
	return nil
}

func foldReinterpret(op *Operation) FoldResult {
	in := op.operands[0]

	// Cast of an opposite cast back to the original type cancels.
	if inner := in.DefiningOp(); inner != nil && (inner.kind == OpAsSInt || inner.kind == OpAsUInt) {
		if TypeEqual(inner.operands[0].typ, op.result.typ) {
			return FoldedValue{Value: inner.operands[0]}
		}
	}

	// A constant reinterprets to the same bit pattern at the new type.
	if c, ok := ConstantValue(in); ok {
		if w := intWidthOf(op.result.typ); w == c.Width() {
			return FoldedConstant{Value: c}
		}
	}
	return nil
}

func foldOrientationCast(op *Operation) FoldResult {
	in := op.operands[0]

	// Already the right orientation.
	if op.kind == OpAsPassive && TypeEqual(in.typ, op.result.typ) {
		return FoldedValue{Value: in}
	}

	opposite := OpAsNonPassive
	if op.kind == OpAsNonPassive {
		opposite = OpAsPassive
	}
	if inner := in.DefiningOp(); inner != nil && inner.kind == opposite {
		if TypeEqual(inner.operands[0].typ, op.result.typ) {
			return FoldedValue{Value: inner.operands[0]}
		}
	}
	return nil
}

func intWidthOf(t Type) int {
	if it, ok := t.(IntType); ok {
		return it.Width
	}
	return WidthUnknown
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
