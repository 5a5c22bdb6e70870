package rtl

import (
	"tlog.app/go/errors"
)

// Verify checks every live operation in the graph. The first failure is
// returned with the offending operation's result id.
func (g *Graph) Verify() error {
	for _, op := range g.Operations() {
		if err := VerifyOp(op); err != nil {
			return errors.Wrap(err, "%%%d", op.result.id)
		}
	}
	return nil
}

// VerifyOp checks the structural well-formedness of a single operation:
// operand counts, type contracts, and attribute ranges. Runtime-undefined
// behavior (division by zero, out-of-range dynamic indexes, oversized
// shift amounts) is deliberately not rejected here.
func VerifyOp(op *Operation) error {
	switch op.kind {
	case OpConstant:
		return verifyConstant(op)
	case OpAdd, OpMul, OpAnd, OpOr, OpXor:
		return verifyVariadicInt(op)
	case OpSub, OpDivU, OpDivS, OpModU, OpModS:
		return verifyBinaryInt(op)
	case OpICmp:
		return verifyICmp(op)
	case OpAndR, OpOrR, OpXorR:
		return verifyReduction(op)
	case OpExtract:
		return verifyExtract(op)
	case OpPad:
		return verifyPad(op)
	case OpShl, OpShr:
		return verifyShift(op)
	case OpHead, OpTail:
		return verifyHeadTail(op)
	case OpConcat:
		return verifyConcat(op)
	case OpMux:
		return verifyMux(op)
	case OpMerge:
		return verifyMerge(op)
	case OpStructExtract:
		return verifyStructExtract(op)
	case OpStructInject:
		return verifyStructInject(op)
	case OpArraySlice:
		return verifyArraySlice(op)
	case OpAsSInt, OpAsUInt:
		return verifyReinterpret(op)
	case OpAsPassive, OpAsNonPassive:
		return verifyOrientationCast(op)
	default:
		return errors.New("unknown operation kind %d", op.kind)
	}
}

func intOperand(op *Operation, i int) (IntType, error) {
	t, ok := op.operands[i].typ.(IntType)
	if !ok {
		return IntType{}, errors.New("%s: operand %d must be an integer, got %s",
			op.kind, i, op.operands[i].typ)
	}
	return t, nil
}

func intResult(op *Operation) (IntType, error) {
	t, ok := op.result.typ.(IntType)
	if !ok {
		return IntType{}, errors.New("%s: result must be an integer, got %s",
			op.kind, op.result.typ)
	}
	return t, nil
}

func verifyConstant(op *Operation) error {
	if len(op.operands) != 0 {
		return errors.New("constant: expected no operands, got %d", len(op.operands))
	}
	t, err := intResult(op)
	if err != nil {
		return err
	}
	if t.HasWidth() && t.Width != op.value.Width() {
		return errors.New("constant: payload width %d does not match type %s",
			op.value.Width(), t)
	}
	return nil
}

func verifyVariadicInt(op *Operation) error {
	if len(op.operands) < 2 {
		return errors.New("%s: expected at least 2 operands, got %d", op.kind, len(op.operands))
	}
	return verifySameTypeIntOperands(op)
}

func verifyBinaryInt(op *Operation) error {
	if len(op.operands) != 2 {
		return errors.New("%s: expected 2 operands, got %d", op.kind, len(op.operands))
	}
	return verifySameTypeIntOperands(op)
}

func verifySameTypeIntOperands(op *Operation) error {
	if _, err := intResult(op); err != nil {
		return err
	}
	for i := range op.operands {
		if _, err := intOperand(op, i); err != nil {
			return err
		}
		if !TypeEqual(op.operands[i].typ, op.result.typ) {
			return errors.New("%s: operand %d type %s does not match result type %s",
				op.kind, i, op.operands[i].typ, op.result.typ)
		}
	}
	return nil
}

func verifyICmp(op *Operation) error {
	if len(op.operands) != 2 {
		return errors.New("icmp: expected 2 operands, got %d", len(op.operands))
	}
	if int(op.pred) >= len(predicateNames) {
		return errors.New("icmp: invalid predicate %d", op.pred)
	}
	if _, err := intOperand(op, 0); err != nil {
		return err
	}
	if _, err := intOperand(op, 1); err != nil {
		return err
	}
	if !TypeEqual(op.operands[0].typ, op.operands[1].typ) {
		return errors.New("icmp: operand types %s and %s differ",
			op.operands[0].typ, op.operands[1].typ)
	}
	return verifyBitResult(op)
}

func verifyBitResult(op *Operation) error {
	t, err := intResult(op)
	if err != nil {
		return err
	}
	if t.Width != 1 {
		return errors.New("%s: result must be 1 bit, got %s", op.kind, t)
	}
	return nil
}

func verifyReduction(op *Operation) error {
	if len(op.operands) != 1 {
		return errors.New("%s: expected 1 operand, got %d", op.kind, len(op.operands))
	}
	if _, err := intOperand(op, 0); err != nil {
		return err
	}
	return verifyBitResult(op)
}

func verifyExtract(op *Operation) error {
	if len(op.operands) != 1 {
		return errors.New("bits: expected 1 operand, got %d", len(op.operands))
	}
	in, err := intOperand(op, 0)
	if err != nil {
		return err
	}
	res, err := intResult(op)
	if err != nil {
		return err
	}
	if op.lo < 0 || op.hi < op.lo {
		return errors.New("bits: invalid range [%d:%d]", op.hi, op.lo)
	}
	if res.HasWidth() && res.Width != op.hi-op.lo+1 {
		return errors.New("bits: result width %d does not match range [%d:%d]",
			res.Width, op.hi, op.lo)
	}
	if in.HasWidth() && op.hi >= in.Width {
		return errors.New("bits: range [%d:%d] exceeds input width %d",
			op.hi, op.lo, in.Width)
	}
	return nil
}

func verifyPad(op *Operation) error {
	if len(op.operands) != 1 {
		return errors.New("pad: expected 1 operand, got %d", len(op.operands))
	}
	in, err := intOperand(op, 0)
	if err != nil {
		return err
	}
	res, err := intResult(op)
	if err != nil {
		return err
	}
	if res.Sign != in.Sign {
		return errors.New("pad: result sign %s does not match input sign %s",
			res.Sign, in.Sign)
	}
	if in.HasWidth() && res.HasWidth() && res.Width < in.Width {
		return errors.New("pad: result width %d narrower than input width %d",
			res.Width, in.Width)
	}
	return nil
}

func verifyShift(op *Operation) error {
	if len(op.operands) != 1 {
		return errors.New("%s: expected 1 operand, got %d", op.kind, len(op.operands))
	}
	in, err := intOperand(op, 0)
	if err != nil {
		return err
	}
	res, err := intResult(op)
	if err != nil {
		return err
	}
	if op.amount < 0 {
		return errors.New("%s: negative shift amount %d", op.kind, op.amount)
	}
	if res.Sign != in.Sign {
		return errors.New("%s: result sign %s does not match input sign %s",
			op.kind, res.Sign, in.Sign)
	}
	if in.HasWidth() && res.HasWidth() {
		want := in.Width + op.amount
		if op.kind == OpShr {
			want = max(in.Width-op.amount, 1)
		}
		if res.Width != want {
			return errors.New("%s: result width %d, expected %d", op.kind, res.Width, want)
		}
	}
	return nil
}

func verifyHeadTail(op *Operation) error {
	if len(op.operands) != 1 {
		return errors.New("%s: expected 1 operand, got %d", op.kind, len(op.operands))
	}
	in, err := intOperand(op, 0)
	if err != nil {
		return err
	}
	res, err := intResult(op)
	if err != nil {
		return err
	}
	if op.amount < 0 {
		return errors.New("%s: negative amount %d", op.kind, op.amount)
	}
	if in.HasWidth() {
		if op.amount > in.Width {
			return errors.New("%s: amount %d exceeds input width %d",
				op.kind, op.amount, in.Width)
		}
		want := op.amount
		if op.kind == OpTail {
			want = in.Width - op.amount
		}
		if res.HasWidth() && res.Width != want {
			return errors.New("%s: result width %d, expected %d", op.kind, res.Width, want)
		}
	}
	return nil
}

func verifyConcat(op *Operation) error {
	if len(op.operands) < 2 {
		return errors.New("cat: expected at least 2 operands, got %d", len(op.operands))
	}
	res, err := intResult(op)
	if err != nil {
		return err
	}
	sum, known := 0, true
	for i := range op.operands {
		in, err := intOperand(op, i)
		if err != nil {
			return err
		}
		if !in.HasWidth() {
			known = false
			continue
		}
		sum += in.Width
	}
	if known && res.HasWidth() && res.Width != sum {
		return errors.New("cat: result width %d does not match operand sum %d",
			res.Width, sum)
	}
	return nil
}

func verifyMux(op *Operation) error {
	if len(op.operands) != 3 {
		return errors.New("mux: expected 3 operands, got %d", len(op.operands))
	}
	sel, err := intOperand(op, 0)
	if err != nil {
		return err
	}
	if sel.HasWidth() && sel.Width != 1 {
		return errors.New("mux: selector must be 1 bit, got %s", sel)
	}
	if !TypeEqual(op.operands[1].typ, op.operands[2].typ) {
		return errors.New("mux: arm types %s and %s differ",
			op.operands[1].typ, op.operands[2].typ)
	}
	if !TypeEqual(op.operands[1].typ, op.result.typ) {
		return errors.New("mux: result type %s does not match arm type %s",
			op.result.typ, op.operands[1].typ)
	}
	return nil
}

func verifyMerge(op *Operation) error {
	if len(op.operands) < 2 {
		return errors.New("merge: expected at least 2 operands, got %d", len(op.operands))
	}
	if !IsValueType(op.result.typ) {
		return errors.New("merge: result type %s is not a value type", op.result.typ)
	}
	for i := range op.operands {
		if !TypeEqual(op.operands[i].typ, op.result.typ) {
			return errors.New("merge: operand %d type %s does not match result type %s",
				i, op.operands[i].typ, op.result.typ)
		}
	}
	return nil
}

func verifyStructExtract(op *Operation) error {
	if len(op.operands) != 1 {
		return errors.New("struct_extract: expected 1 operand, got %d", len(op.operands))
	}
	st, ok := op.operands[0].typ.(StructType)
	if !ok {
		return errors.New("struct_extract: operand must be a struct, got %s",
			op.operands[0].typ)
	}
	ft := st.FieldType(op.field)
	if ft == nil {
		return errors.New("struct_extract: no field %q in %s", op.field, st)
	}
	if !TypeEqual(op.result.typ, ft) {
		return errors.New("struct_extract: result type %s does not match field type %s",
			op.result.typ, ft)
	}
	return nil
}

func verifyStructInject(op *Operation) error {
	if len(op.operands) != 2 {
		return errors.New("struct_inject: expected 2 operands, got %d", len(op.operands))
	}
	st, ok := op.operands[0].typ.(StructType)
	if !ok {
		return errors.New("struct_inject: operand must be a struct, got %s",
			op.operands[0].typ)
	}
	ft := st.FieldType(op.field)
	if ft == nil {
		return errors.New("struct_inject: no field %q in %s", op.field, st)
	}
	if !TypeEqual(op.operands[1].typ, ft) {
		return errors.New("struct_inject: value type %s does not match field type %s",
			op.operands[1].typ, ft)
	}
	if !TypeEqual(op.result.typ, op.operands[0].typ) {
		return errors.New("struct_inject: result type %s does not match struct type %s",
			op.result.typ, op.operands[0].typ)
	}
	return nil
}

func verifyArraySlice(op *Operation) error {
	if len(op.operands) != 2 {
		return errors.New("array_slice: expected 2 operands, got %d", len(op.operands))
	}
	var inSize uint32
	var elem Type
	switch t := op.operands[0].typ.(type) {
	case ArrayType:
		inSize, elem = t.Size, t.Elem
	case UnpackedArrayType:
		inSize, elem = t.Size, t.Elem
	default:
		return errors.New("array_slice: operand must be an array, got %s", t)
	}

	res, ok := op.result.typ.(ArrayType)
	if !ok {
		return errors.New("array_slice: result must be an array, got %s", op.result.typ)
	}
	if !TypeEqual(res.Elem, elem) {
		return errors.New("array_slice: element type %s does not match input %s",
			res.Elem, elem)
	}
	if res.Size > inSize {
		return errors.New("array_slice: result size %d exceeds input size %d",
			res.Size, inSize)
	}

	idx, err := intOperand(op, 1)
	if err != nil {
		return err
	}
	if want := ArraySliceIndexWidth(inSize); idx.HasWidth() && idx.Width != want {
		return errors.New("array_slice: index width %d, expected %d for size %d",
			idx.Width, want, inSize)
	}
	return nil
}

func verifyReinterpret(op *Operation) error {
	if len(op.operands) != 1 {
		return errors.New("%s: expected 1 operand, got %d", op.kind, len(op.operands))
	}
	in, err := intOperand(op, 0)
	if err != nil {
		return err
	}
	res, err := intResult(op)
	if err != nil {
		return err
	}
	want := Signed
	if op.kind == OpAsUInt {
		want = Unsigned
	}
	if res.Sign != want {
		return errors.New("%s: result must be %s, got %s", op.kind, want, res)
	}
	if in.HasWidth() && res.HasWidth() && in.Width != res.Width {
		return errors.New("%s: result width %d does not match input width %d",
			op.kind, res.Width, in.Width)
	}
	return nil
}

func verifyOrientationCast(op *Operation) error {
	if len(op.operands) != 1 {
		return errors.New("%s: expected 1 operand, got %d", op.kind, len(op.operands))
	}
	in, res := op.operands[0].typ, op.result.typ
	switch op.kind {
	case OpAsPassive:
		if !TypeEqual(res, PassiveType(in)) {
			return errors.New("as_passive: result %s is not the passive form of %s", res, in)
		}
	case OpAsNonPassive:
		if !TypeEqual(in, PassiveType(res)) {
			return errors.New("as_non_passive: operand %s is not the passive form of %s", in, res)
		}
	}
	return nil
}
