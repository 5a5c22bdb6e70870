// Package rtl implements a typed operation model for register-transfer
// level hardware, together with the constant-folding and peephole
// canonicalization rules that simplify operation graphs before emission.
//
// The package owns no pass scheduling of its own: a host driver builds
// operations in a Graph, verifies them once with VerifyOp, and then
// repeatedly applies Fold and CanonicalizationPatterns (or the bundled
// Simplify loop) until a fixpoint is reached.
package rtl

import "fmt"

// assert panics if condition is false.
func assert(condition bool, format string, args ...interface{}) {
	if !condition {
		panic(fmt.Sprintf("assert: "+format, args...))
	}
}
