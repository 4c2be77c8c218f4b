package compiler

import "fmt"

// SemanticError is a compile-time failure that isn't a parse error: a
// break outside any loop, an assignment target that only the parser's
// grammar allows but the compiler still can't place, and similar
// (teacher's compiler/errors.go SemanticError, carried over unchanged).
type SemanticError struct {
	Line    int32
	Message string
}

func (e SemanticError) Error() string {
	return fmt.Sprintf("💥 SemanticError: line %d: %s", e.Line, e.Message)
}

// DeveloperError marks an invariant the compiler itself should never
// violate (an opcode rejected by vm.Get, an upvalue resolution that
// found nothing where the caller already proved it must exist).
type DeveloperError struct {
	Message string
}

func (e DeveloperError) Error() string {
	return fmt.Sprintf("🤖 DeveloperError: %s", e.Message)
}
