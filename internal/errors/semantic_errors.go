package errors

import (
	"fmt"

	"minic/internal/ast"
)

// SemanticErrorBuilder provides a fluent interface for creating semantic
// errors with suggestions, in the same style as the reporter itself.
type SemanticErrorBuilder struct {
	err CompilerError
}

// NewSemanticError creates a new semantic error builder.
func NewSemanticError(code, message string, pos ast.Position) *SemanticErrorBuilder {
	return &SemanticErrorBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

// WithLength sets the length of the error span.
func (b *SemanticErrorBuilder) WithLength(length int) *SemanticErrorBuilder {
	b.err.Length = length
	return b
}

// WithHelp adds help text to the error.
func (b *SemanticErrorBuilder) WithHelp(help string) *SemanticErrorBuilder {
	b.err.HelpText = help
	return b
}

// Build returns the completed compiler error.
func (b *SemanticErrorBuilder) Build() CompilerError {
	return b.err
}

// UndeclaredVariable reports the §4.B scoping failure for a Var use that
// does not resolve in any enclosing scope. Message text is exactly what
// spec.md §4.B names: "Variable '<name>' not declared.".
func UndeclaredVariable(name string, pos ast.Position) CompilerError {
	return NewSemanticError(ErrorUndeclaredVariable,
		fmt.Sprintf("Variable '%s' not declared.", name), pos).
		WithLength(len(name)).
		WithHelp("declare the variable with 'int " + name + ";' before using it").
		Build()
}

// RedeclaredVariable reports the §4.B scoping failure for a second Decl of
// the same name in one scope. Message text is exactly what spec.md §4.B
// names: "Variable '<name>' already declared in this scope.".
func RedeclaredVariable(name string, pos ast.Position) CompilerError {
	return NewSemanticError(ErrorRedeclaredVariable,
		fmt.Sprintf("Variable '%s' already declared in this scope.", name), pos).
		WithLength(len(name)).
		WithHelp("remove the duplicate 'int " + name + ";' or rename one of them").
		Build()
}

// IOError reports §7 kind 1: a source or IR file that could not be opened.
func IOError(message string) CompilerError {
	return CompilerError{Level: Error, Code: ErrorIO, Message: message}
}

// ParseError reports §7 kind 2: a syntax error at a known position.
func ParseError(message string, pos ast.Position) CompilerError {
	return CompilerError{Level: Error, Code: ErrorParse, Message: message, Position: pos, Length: 1}
}

// InternalError reports §7 kinds 4/5: an invariant violation that a
// correct pipeline can never produce. These are fatal and abort the
// pipeline with no partial output.
func InternalError(code, message string) CompilerError {
	return CompilerError{Level: Error, Code: code, Message: message}
}
