package rtl_test

import (
	"testing"

	"github.com/rtlgo/rtl"
)

// replacementOf returns the value that now feeds consumer's operand i,
// after a canonicalization replaced the original producer.
func replacementOf(consumer *rtl.Value, i int) *rtl.Value {
	return consumer.DefiningOp().Operand(i)
}

func TestCanonicalizeExtractOfExtract(t *testing.T) {
	g := rtl.NewGraph()
	x := g.Input(rtl.UInt(16))
	inner := g.Extract(x, 10, 4)
	outer := g.Extract(inner, 5, 2)
	sink := g.OrR(outer)

	if !rtl.Canonicalize(g, outer.DefiningOp()) {
		t.Fatalf("expected rewrite")
	}
	if !outer.DefiningOp().Retired() {
		t.Fatalf("expected original op retired")
	}

	fused := replacementOf(sink, 0)
	op := fused.DefiningOp()
	if op.Kind() != rtl.OpExtract || op.Hi() != 9 || op.Lo() != 6 {
		t.Fatalf("unexpected replacement: %s", op)
	}
	if op.Operand(0) != x {
		t.Fatalf("expected extraction from the original source")
	}
	if !rtl.TypeEqual(fused.Type(), outer.Type()) {
		t.Fatalf("width not preserved: got %s, want %s", fused.Type(), outer.Type())
	}
}

func TestCanonicalizeConcatOfExtracts(t *testing.T) {
	t.Run("CoversSource", func(t *testing.T) {
		g := rtl.NewGraph()
		x := g.Input(rtl.UInt(16))
		hi := g.Extract(x, 15, 8)
		lo := g.Extract(x, 7, 0)
		cat := g.Concat(hi, lo)
		sink := g.OrR(cat)

		if !rtl.Canonicalize(g, cat.DefiningOp()) {
			t.Fatalf("expected rewrite")
		}

		fused := replacementOf(sink, 0)
		op := fused.DefiningOp()
		if op.Kind() != rtl.OpExtract || op.Hi() != 15 || op.Lo() != 0 {
			t.Fatalf("unexpected replacement: %s", op)
		}

		// The covering extraction then folds away entirely.
		r, ok := rtl.Fold(op).(rtl.FoldedValue)
		if !ok || r.Value != x {
			t.Fatalf("expected fold to the source value")
		}
	})
	t.Run("Adjacent", func(t *testing.T) {
		g := rtl.NewGraph()
		x := g.Input(rtl.UInt(16))
		cat := g.Concat(g.Extract(x, 11, 8), g.Extract(x, 7, 4))
		sink := g.OrR(cat)

		if !rtl.Canonicalize(g, cat.DefiningOp()) {
			t.Fatalf("expected rewrite")
		}
		op := replacementOf(sink, 0).DefiningOp()
		if op.Kind() != rtl.OpExtract || op.Hi() != 11 || op.Lo() != 4 {
			t.Fatalf("unexpected replacement: %s", op)
		}
	})
	t.Run("PartialFusion", func(t *testing.T) {
		g := rtl.NewGraph()
		x := g.Input(rtl.UInt(16))
		y := g.Input(rtl.UInt(4))
		cat := g.Concat(y, g.Extract(x, 7, 4), g.Extract(x, 3, 0))
		sink := g.OrR(cat)

		if !rtl.Canonicalize(g, cat.DefiningOp()) {
			t.Fatalf("expected rewrite")
		}
		op := replacementOf(sink, 0).DefiningOp()
		if op.Kind() != rtl.OpConcat || op.NumOperands() != 2 {
			t.Fatalf("unexpected replacement: %s", op)
		}
		if op.Operand(0) != y {
			t.Fatalf("expected leading operand kept")
		}
		fused := op.Operand(1).DefiningOp()
		if fused.Kind() != rtl.OpExtract || fused.Hi() != 7 || fused.Lo() != 0 {
			t.Fatalf("unexpected fused operand: %s", fused)
		}
	})
	t.Run("NonAdjacent", func(t *testing.T) {
		g := rtl.NewGraph()
		x := g.Input(rtl.UInt(16))
		cat := g.Concat(g.Extract(x, 15, 9), g.Extract(x, 7, 0))
		if rtl.Canonicalize(g, cat.DefiningOp()) {
			t.Fatalf("expected no rewrite")
		}
	})
	t.Run("DifferentSources", func(t *testing.T) {
		g := rtl.NewGraph()
		x := g.Input(rtl.UInt(16))
		y := g.Input(rtl.UInt(16))
		cat := g.Concat(g.Extract(x, 15, 8), g.Extract(y, 7, 0))
		if rtl.Canonicalize(g, cat.DefiningOp()) {
			t.Fatalf("expected no rewrite")
		}
	})
}

func TestCanonicalizeHead(t *testing.T) {
	g := rtl.NewGraph()
	x := g.Input(rtl.UInt(16))
	h := g.Head(x, 4)
	sink := g.OrR(h)

	if !rtl.Canonicalize(g, h.DefiningOp()) {
		t.Fatalf("expected rewrite")
	}
	op := replacementOf(sink, 0).DefiningOp()
	if op.Kind() != rtl.OpExtract || op.Hi() != 15 || op.Lo() != 12 {
		t.Fatalf("unexpected replacement: %s", op)
	}

	t.Run("ZeroAmount", func(t *testing.T) {
		h := g.Head(x, 0)
		if rtl.Canonicalize(g, h.DefiningOp()) {
			t.Fatalf("expected no rewrite")
		}
	})
	t.Run("UnknownWidth", func(t *testing.T) {
		u := g.Input(rtl.IntType{Width: rtl.WidthUnknown, Sign: rtl.Unsigned})
		h := g.Head(u, 4)
		if rtl.Canonicalize(g, h.DefiningOp()) {
			t.Fatalf("expected no rewrite")
		}
	})
}

func TestCanonicalizeTail(t *testing.T) {
	g := rtl.NewGraph()
	x := g.Input(rtl.UInt(16))
	tl := g.Tail(x, 4)
	sink := g.OrR(tl)

	if !rtl.Canonicalize(g, tl.DefiningOp()) {
		t.Fatalf("expected rewrite")
	}
	op := replacementOf(sink, 0).DefiningOp()
	if op.Kind() != rtl.OpExtract || op.Hi() != 11 || op.Lo() != 0 {
		t.Fatalf("unexpected replacement: %s", op)
	}

	t.Run("DropAll", func(t *testing.T) {
		tl := g.Tail(x, 16)
		if rtl.Canonicalize(g, tl.DefiningOp()) {
			t.Fatalf("expected no rewrite")
		}
	})
}

func TestCanonicalizeShr(t *testing.T) {
	t.Run("InRange", func(t *testing.T) {
		g := rtl.NewGraph()
		x := g.Input(rtl.UInt(32))
		s := g.Shr(x, 8)
		sink := g.OrR(s)

		if !rtl.Canonicalize(g, s.DefiningOp()) {
			t.Fatalf("expected rewrite")
		}
		op := replacementOf(sink, 0).DefiningOp()
		if op.Kind() != rtl.OpExtract || op.Hi() != 31 || op.Lo() != 8 {
			t.Fatalf("unexpected replacement: %s", op)
		}
	})
	t.Run("SignedBeyondWidth", func(t *testing.T) {
		g := rtl.NewGraph()
		x := g.Input(rtl.SInt(32))
		s := g.Shr(x, 40)
		sink := g.OrR(s)

		// The fold declines: a signed over-shift keeps the sign bit and
		// is never a constant zero.
		if r := rtl.Fold(s.DefiningOp()); r != nil {
			t.Fatalf("expected no fold, got %#v", r)
		}
		if !rtl.Canonicalize(g, s.DefiningOp()) {
			t.Fatalf("expected rewrite")
		}

		cast := replacementOf(sink, 0)
		castOp := cast.DefiningOp()
		if castOp.Kind() != rtl.OpAsSInt {
			t.Fatalf("expected sign reinterpretation, got %s", castOp)
		}
		if !rtl.TypeEqual(cast.Type(), rtl.SInt(1)) {
			t.Fatalf("unexpected result type: %s", cast.Type())
		}
		bitsOp := castOp.Operand(0).DefiningOp()
		if bitsOp.Kind() != rtl.OpExtract || bitsOp.Hi() != 31 || bitsOp.Lo() != 31 {
			t.Fatalf("expected sign bit extraction, got %s", bitsOp)
		}
		if bitsOp.Operand(0) != x {
			t.Fatalf("expected extraction from the original source")
		}
	})
	t.Run("UnsignedBeyondWidth", func(t *testing.T) {
		g := rtl.NewGraph()
		s := g.Shr(g.Input(rtl.UInt(32)), 40)
		if rtl.Canonicalize(g, s.DefiningOp()) {
			t.Fatalf("expected no rewrite, the fold produces zero")
		}
	})
	t.Run("SignedInRange", func(t *testing.T) {
		g := rtl.NewGraph()
		x := g.Input(rtl.SInt(32))
		s := g.Shr(x, 8)
		sink := g.OrR(s)

		if !rtl.Canonicalize(g, s.DefiningOp()) {
			t.Fatalf("expected rewrite")
		}
		cast := replacementOf(sink, 0)
		if cast.DefiningOp().Kind() != rtl.OpAsSInt {
			t.Fatalf("expected sign reinterpretation, got %s", cast.DefiningOp())
		}
		if !rtl.TypeEqual(cast.Type(), rtl.SInt(24)) {
			t.Fatalf("unexpected result type: %s", cast.Type())
		}
	})
}

func TestCanonicalizationPatterns(t *testing.T) {
	if rtl.CanonicalizationPatterns(rtl.OpMerge) != nil {
		t.Fatalf("merge must have no patterns")
	}
	if rtl.CanonicalizationPatterns(rtl.OpConcat) == nil {
		t.Fatalf("cat must have patterns")
	}
}
