// Package cerr defines the uniform error type every pipeline stage
// returns. It is a leaf package with no dependency on pkg/compiler (or
// any other pipeline stage), so lexer, parser, sema, irgen, and
// codegen/amd64 can each return *cerr.Error without importing the
// package that wires them together.
package cerr

import "fmt"

// Stage names which pipeline stage produced an Error.
type Stage string

const (
	StageLex      Stage = "Lex"
	StageParse    Stage = "Parse"
	StageSemantic Stage = "Semantic"
	StageIrGen    Stage = "IrGen"
	StageCodeGen  Stage = "CodeGen"
)

// Error is the single typed failure value every stage returns. It names the
// stage, the source position (when one is available — code generation
// failures have none), and a human-readable cause.
type Error struct {
	Stage   Stage
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	if e.Line == 0 && e.Column == 0 {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %d:%d: %s", e.Stage, e.Line, e.Column, e.Message)
}

// Errorf builds an Error positioned at line/col with a formatted message.
func Errorf(stage Stage, line, col int, format string, args ...interface{}) *Error {
	return &Error{Stage: stage, Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}
