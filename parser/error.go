package parser

import "fmt"

// SyntaxError is a parse-time failure: a token the grammar didn't
// expect, or a malformed assignment target (spec §7's lexical/syntax
// error class, sitting alongside vm's runtime error taxonomy).
type SyntaxError struct {
	Line    int32
	Message string
}

func CreateSyntaxError(line int32, message string) SyntaxError {
	return SyntaxError{Line: line, Message: message}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("💥 Nilan Syntax error:\nline:%d - %s", e.Line, e.Message)
}
