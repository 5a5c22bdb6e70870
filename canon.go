package rtl

// RewritePattern attempts a local graph rewrite rooted at op. It returns
// true after replacing and retiring op, and false to decline; declining
// is never an error. Patterns may create new operations, which folds
// never do.
type RewritePattern func(g *Graph, op *Operation) bool

// CanonicalizationPatterns returns the rewrite patterns registered for
// an operation kind. Most kinds have none; merge deliberately has none.
func CanonicalizationPatterns(kind OpKind) []RewritePattern {
	switch kind {
	case OpConcat:
		return []RewritePattern{concatOfExtracts}
	case OpExtract:
		return []RewritePattern{extractOfExtract}
	case OpHead:
		return []RewritePattern{headToExtract}
	case OpTail:
		return []RewritePattern{tailToExtract}
	case OpShr:
		return []RewritePattern{shrToExtract}
	default:
		return nil
	}
}

// Canonicalize applies the first matching pattern for op's kind.
func Canonicalize(g *Graph, op *Operation) bool {
	for _, pattern := range CanonicalizationPatterns(op.kind) {
		if pattern(g, op) {
			return true
		}
	}
	return false
}

// concatOfExtracts fuses cat(bits(x, hi1, lo1), bits(x, hi2, lo2)) into
// bits(x, hi1, lo2) when both extract from the same source and the
// ranges are adjacent (lo1 - 1 == hi2).
func concatOfExtracts(g *Graph, op *Operation) bool {
	for i := 0; i+1 < len(op.operands); i++ {
		msb := op.operands[i].DefiningOp()
		lsb := op.operands[i+1].DefiningOp()
		if msb == nil || lsb == nil || msb.kind != OpExtract || lsb.kind != OpExtract {
			continue
		}
		if msb.operands[0] != lsb.operands[0] || msb.lo-1 != lsb.hi {
			continue
		}

		fused := g.Extract(msb.operands[0], msb.hi, lsb.lo)
		if len(op.operands) == 2 {
			g.ReplaceOp(op, fused)
			return true
		}

		operands := make([]*Value, 0, len(op.operands)-1)
		operands = append(operands, op.operands[:i]...)
		operands = append(operands, fused)
		operands = append(operands, op.operands[i+2:]...)
		g.ReplaceOp(op, g.Concat(operands...))
		return true
	}
	return false
}

// extractOfExtract fuses bits(bits(x, ...), hi, lo) into a single
// extraction from x; offsets compose additively.
func extractOfExtract(g *Graph, op *Operation) bool {
	inner := op.operands[0].DefiningOp()
	if inner == nil || inner.kind != OpExtract {
		return false
	}
	newLo := op.lo + inner.lo
	newHi := newLo + op.hi - op.lo
	g.ReplaceOp(op, g.Extract(inner.operands[0], newHi, newLo))
	return true
}

// headToExtract lowers head(x, n) to bits(x, w-1, w-n) once the input
// width is known.
func headToExtract(g *Graph, op *Operation) bool {
	it, ok := op.operands[0].typ.(IntType)
	if !ok || !it.HasWidth() || op.amount == 0 {
		return false
	}
	replaceWithBits(g, op, op.operands[0], it.Width-1, it.Width-op.amount)
	return true
}

// tailToExtract lowers tail(x, n) to bits(x, w-n-1, 0) once the input
// width is known. Dropping every bit would leave a zero-width result, so
// that case declines.
func tailToExtract(g *Graph, op *Operation) bool {
	it, ok := op.operands[0].typ.(IntType)
	if !ok || !it.HasWidth() || op.amount == it.Width {
		return false
	}
	replaceWithBits(g, op, op.operands[0], it.Width-op.amount-1, 0)
	return true
}

// shrToExtract lowers shr(x, n) to a bit extraction once the input width
// is known. Shifting a signed value by the full width or more takes the
// sign bit; the all-zero unsigned case is left to the fold.
func shrToExtract(g *Graph, op *Operation) bool {
	it, ok := op.operands[0].typ.(IntType)
	if !ok || !it.HasWidth() {
		return false
	}
	shiftAmount := op.amount
	if shiftAmount >= it.Width {
		if it.Sign == Unsigned {
			return false
		}
		shiftAmount = it.Width - 1
	}
	replaceWithBits(g, op, op.operands[0], it.Width-1, shiftAmount)
	return true
}

// replaceWithBits replaces op with an extraction of bits hi..lo of
// value, inserting a reinterpretation cast when the original result was
// signed (or unsigned) and the replacement is not.
func replaceWithBits(g *Graph, op *Operation, value *Value, hi, lo int) {
	res := op.result.typ.(IntType)
	if w := intWidthOf(value.typ); w != res.Width {
		value = g.Extract(value, hi, lo)
	}
	if vt, ok := value.typ.(IntType); ok {
		if res.Sign == Signed && vt.Sign != Signed {
			value = g.AsSInt(value)
		} else if res.Sign == Unsigned && vt.Sign != Unsigned {
			value = g.AsUInt(value)
		}
	}
	g.ReplaceOp(op, value)
}
