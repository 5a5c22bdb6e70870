package rtl_test

import (
	"strings"
	"testing"

	"github.com/rtlgo/rtl"
	"github.com/rtlgo/rtl/apint"
)

func TestGraphConstantUniquing(t *testing.T) {
	g := rtl.NewGraph()
	a := g.Constant(apint.New(5, 8))
	b := g.Constant(apint.New(5, 8))
	if a != b {
		t.Fatalf("expected uniqued constant, got %s and %s", a, b)
	}

	t.Run("DifferentPayload", func(t *testing.T) {
		if c := g.Constant(apint.New(6, 8)); c == a {
			t.Fatalf("expected distinct constant")
		}
	})
	t.Run("DifferentType", func(t *testing.T) {
		if c := g.ConstantOfType(apint.New(5, 8), rtl.SInt(8)); c == a {
			t.Fatalf("expected distinct constant")
		}
	})
}

func TestGraphReplaceOp(t *testing.T) {
	g := rtl.NewGraph()
	x := g.Input(rtl.UInt(8))
	y := g.Input(rtl.UInt(8))
	a := g.And(x, y)
	b := g.Or(a, x)

	g.ReplaceOp(a.DefiningOp(), x)

	if got := b.DefiningOp().Operand(0); got != x {
		t.Fatalf("expected operand redirected to %s, got %s", x, got)
	}
	if !a.DefiningOp().Retired() {
		t.Fatalf("expected replaced op to be retired")
	}
	if a.NumUses() != 0 {
		t.Fatalf("expected no remaining uses, got %d", a.NumUses())
	}

	// x is now consumed by both operand slots of the or.
	n := 0
	for _, use := range x.Uses() {
		if use == b.DefiningOp() {
			n++
		}
	}
	if n != 2 {
		t.Fatalf("expected 2 operand slots on x, got %d", n)
	}
}

func TestGraphRetire(t *testing.T) {
	g := rtl.NewGraph()
	x := g.Input(rtl.UInt(8))
	a := g.AndR(x)

	g.Retire(a.DefiningOp())

	if x.NumUses() != 0 {
		t.Fatalf("expected operand use removed, got %d", x.NumUses())
	}
	for _, op := range g.Operations() {
		if op == a.DefiningOp() {
			t.Fatalf("retired op still listed")
		}
	}
}

func TestGraphOperationsOrder(t *testing.T) {
	g := rtl.NewGraph()
	x := g.Input(rtl.UInt(8))
	first := g.AndR(x)
	second := g.OrR(x)

	ops := g.Operations()
	if len(ops) != 2 {
		t.Fatalf("unexpected op count: %d", len(ops))
	}
	if ops[0] != first.DefiningOp() || ops[1] != second.DefiningOp() {
		t.Fatalf("expected creation order")
	}
}

func TestGraphString(t *testing.T) {
	g := rtl.NewGraph()
	x := g.Input(rtl.UInt(8))
	g.Extract(x, 3, 0)
	if s := g.String(); !strings.Contains(s, "bits 3:0") || !strings.Contains(s, "uint<4>") {
		t.Fatalf("unexpected listing:\n%s", s)
	}
}

func TestBuilderResultTypes(t *testing.T) {
	g := rtl.NewGraph()
	u8 := g.Input(rtl.UInt(8))
	s8 := g.Input(rtl.SInt(8))
	unknown := g.Input(rtl.IntType{Width: rtl.WidthUnknown, Sign: rtl.Unsigned})

	for _, tt := range []struct {
		name string
		v    *rtl.Value
		want rtl.Type
	}{
		{"Shl", g.Shl(u8, 4), rtl.UInt(12)},
		{"ShlSigned", g.Shl(s8, 4), rtl.SInt(12)},
		{"ShlUnknown", g.Shl(unknown, 4), rtl.IntType{Width: rtl.WidthUnknown, Sign: rtl.Unsigned}},
		{"Shr", g.Shr(u8, 4), rtl.UInt(4)},
		{"ShrBeyondWidth", g.Shr(u8, 20), rtl.UInt(1)},
		{"ShrSigned", g.Shr(s8, 4), rtl.SInt(4)},
		{"Extract", g.Extract(u8, 6, 2), rtl.UInt(5)},
		{"Head", g.Head(u8, 3), rtl.UInt(3)},
		{"Tail", g.Tail(u8, 3), rtl.UInt(5)},
		{"Concat", g.Concat(u8, g.Input(rtl.UInt(4))), rtl.UInt(12)},
		{"ConcatUnknown", g.Concat(u8, unknown), rtl.IntType{Width: rtl.WidthUnknown, Sign: rtl.Unsigned}},
		{"Pad", g.Pad(s8, 12), rtl.SInt(12)},
		{"ICmp", g.ICmp(rtl.PredUlt, u8, u8), rtl.UInt(1)},
		{"AndR", g.AndR(u8), rtl.UInt(1)},
		{"AsSInt", g.AsSInt(u8), rtl.SInt(8)},
		{"AsUInt", g.AsUInt(s8), rtl.UInt(8)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if !rtl.TypeEqual(tt.v.Type(), tt.want) {
				t.Fatalf("unexpected result type: got %s, want %s", tt.v.Type(), tt.want)
			}
		})
	}
}

func TestArraySliceIndexWidth(t *testing.T) {
	for _, tt := range []struct {
		size uint32
		want int
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {8, 3}, {9, 4}, {16, 4}, {17, 5},
	} {
		if got := rtl.ArraySliceIndexWidth(tt.size); got != tt.want {
			t.Fatalf("ArraySliceIndexWidth(%d): got %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestOpKindString(t *testing.T) {
	for _, tt := range []struct {
		kind rtl.OpKind
		want string
	}{
		{rtl.OpConstant, "constant"},
		{rtl.OpExtract, "bits"},
		{rtl.OpConcat, "cat"},
		{rtl.OpDivU, "divu"},
		{rtl.OpStructExtract, "struct_extract"},
		{rtl.OpAsNonPassive, "as_non_passive"},
	} {
		if got := tt.kind.String(); got != tt.want {
			t.Fatalf("unexpected name: got %q, want %q", got, tt.want)
		}
	}
}

func TestICmpPredicate(t *testing.T) {
	if rtl.PredSlt.String() != "slt" || rtl.PredUge.String() != "uge" {
		t.Fatalf("unexpected predicate names")
	}
	if !rtl.PredSle.IsSigned() || rtl.PredUle.IsSigned() || rtl.PredEq.IsSigned() {
		t.Fatalf("unexpected signedness")
	}
	if !rtl.PredNe.IsEquality() || rtl.PredUlt.IsEquality() {
		t.Fatalf("unexpected equality")
	}
}

func TestStructBuilders(t *testing.T) {
	g := rtl.NewGraph()
	st := rtl.StructType{Fields: []rtl.StructField{
		{Name: "data", Type: rtl.UInt(8)},
		{Name: "valid", Type: rtl.UInt(1)},
	}}
	x := g.Input(st)

	field := g.StructExtract(x, "data")
	if !rtl.TypeEqual(field.Type(), rtl.UInt(8)) {
		t.Fatalf("unexpected field type: %s", field.Type())
	}

	injected := g.StructInject(x, "valid", g.Input(rtl.UInt(1)))
	if !rtl.TypeEqual(injected.Type(), st) {
		t.Fatalf("unexpected inject type: %s", injected.Type())
	}
}

func TestArraySliceBuilder(t *testing.T) {
	g := rtl.NewGraph()
	arr := g.Input(rtl.ArrayType{Elem: rtl.UInt(8), Size: 16})
	idx := g.Input(rtl.UInt(4))

	slice := g.ArraySlice(arr, idx, 4)
	want := rtl.ArrayType{Elem: rtl.UInt(8), Size: 4}
	if !rtl.TypeEqual(slice.Type(), want) {
		t.Fatalf("unexpected slice type: got %s, want %s", slice.Type(), want)
	}
}
