package rtl

import (
	"github.com/davecgh/go-spew/spew"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/rtlgo/rtl/apint"
)

// DefaultMaxIterations bounds the simplify fixpoint loop when the caller
// does not provide a budget.
const DefaultMaxIterations = 10

// SimplifyOptions configures a Simplify run.
type SimplifyOptions struct {
	// MaxIterations caps the number of whole-graph passes. Zero means
	// DefaultMaxIterations. Exhausting the budget before reaching a
	// fixpoint is reported as an error.
	MaxIterations int

	// Logger, when non-nil, traces every applied rewrite. The "dump"
	// topic additionally dumps the graph after each pass.
	Logger *tlog.Logger
}

// Simplify folds and canonicalizes every live operation in the graph
// until a fixpoint is reached. It returns true if anything changed.
// Operations are visited in creation order, so the result is
// deterministic for a given graph.
func Simplify(g *Graph, opts SimplifyOptions) (changed bool, err error) {
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	for iteration := 0; ; iteration++ {
		if iteration >= maxIterations {
			return changed, errors.New("no fixpoint after %d iterations", maxIterations)
		}

		n := simplifyOnce(g, opts.Logger)
		if opts.Logger != nil {
			opts.Logger.Printw("simplify pass", "iteration", iteration, "rewrites", n, "live", g.NumOperations())
			if l := opts.Logger.V("dump"); l != nil {
				l.Printw("graph state", "dump", spew.Sdump(g.Operations()))
			}
		}
		if n == 0 {
			return changed, nil
		}
		changed = true
	}
}

// simplifyOnce runs one fold+canonicalize pass and returns the number of
// rewrites applied.
func simplifyOnce(g *Graph, l *tlog.Logger) int {
	n := 0
	for _, op := range g.Operations() {
		// An earlier rewrite in this pass may have retired op.
		if op.Retired() {
			continue
		}
		// Constants fold to their own payload; re-materializing them is
		// not progress.
		if op.kind == OpConstant {
			continue
		}

		switch r := Fold(op).(type) {
		case FoldedValue:
			if l != nil {
				l.Printw("fold", "op", op.String(), "value", r.Value.String())
			}
			g.ReplaceOp(op, r.Value)
			n++
			continue
		case FoldedConstant:
			if l != nil {
				l.Printw("fold", "op", op.String(), "constant", r.Value.String())
			}
			g.ReplaceOp(op, g.ConstantOfType(r.Value, constantTypeFor(op, r.Value)))
			n++
			continue
		}

		if Canonicalize(g, op) {
			if l != nil {
				l.Printw("canonicalize", "op", op.String())
			}
			n++
		}
	}
	return n
}

// constantTypeFor chooses the integer type for a folded constant: the
// operation's result type when its width is known, otherwise a type of
// the payload's own width (the div-by-self fold on unknown widths).
func constantTypeFor(op *Operation, payload apint.Int) IntType {
	if it, ok := op.result.typ.(IntType); ok && it.HasWidth() && it.Width == payload.Width() {
		return it
	}
	return IntType{Width: payload.Width(), Sign: signOf(op.result.typ)}
}
