// Package kryerr defines the typed error taxonomy shared by every
// compilation stage, replacing ad-hoc fmt.Errorf strings with
// structured values that carry source position and stage identity.
package kryerr

import "fmt"

// Kind identifies which stage of the pipeline produced an error.
type Kind int

const (
	Lex Kind = iota
	Parse
	Preprocessor
	Variable
	Semantic
	Component
	Codegen
	IO
)

func (k Kind) String() string {
	switch k {
	case Lex:
		return "LexError"
	case Parse:
		return "ParseError"
	case Preprocessor:
		return "PreprocessorError"
	case Variable:
		return "VarError"
	case Semantic:
		return "SemanticError"
	case Component:
		return "ComponentError"
	case Codegen:
		return "CodegenError"
	case IO:
		return "IoError"
	default:
		return "Error"
	}
}

// Error is the single structured error type returned by every stage.
// File/Line/Column are populated when the error originates in source
// text; Stage is populated otherwise (e.g. codegen index overflow).
type Error struct {
	Kind    Kind
	File    string
	Line    int
	Column  int
	Stage   string
	Reason  string // machine-friendly sub-kind, e.g. "cycle", "undefined"
	Message string
	Cause   error
}

func (e *Error) Error() string {
	loc := e.Stage
	if e.File != "" {
		if e.Line > 0 {
			loc = fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
		} else {
			loc = e.File
		}
	}
	if loc == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, loc, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func At(kind Kind, file string, line, col int, format string, args ...any) *Error {
	return &Error{Kind: kind, File: file, Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

func Stage(kind Kind, stage, format string, args ...any) *Error {
	return &Error{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, stage string, cause error) *Error {
	return &Error{Kind: kind, Stage: stage, Message: cause.Error(), Cause: cause}
}

// Warning is a non-fatal diagnostic collected into Stats.Warnings
// instead of aborting compilation (spec §7: demotable SemanticError,
// optimizer notices).
type Warning struct {
	Stage   string
	File    string
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.File != "" && w.Line > 0 {
		return fmt.Sprintf("%s: %s:%d: %s", w.Stage, w.File, w.Line, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}

// Collector accumulates warnings across stages without aborting.
// Grounded on the teacher's CompilerState acting as shared mutable
// pipeline state (main.go), generalized into its own small type.
type Collector struct {
	Warnings []Warning
}

func (c *Collector) Warn(stage, file string, line int, format string, args ...any) {
	c.Warnings = append(c.Warnings, Warning{Stage: stage, File: file, Line: line, Message: fmt.Sprintf(format, args...)})
}
