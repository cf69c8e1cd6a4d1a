package parser

import (
	"github.com/alecthomas/participle/v2"

	"minic/internal/errors"
)

// AsCompilerError converts a participle parse error into the same
// errors.CompilerError shape every other pipeline stage reports through
// (§7 kind 2), so the driver's caret-pointer formatting is identical
// whether the failure came from parsing, scoping, or an internal check.
func AsCompilerError(err error) errors.CompilerError {
	pe, ok := err.(participle.Error)
	if !ok {
		return errors.IOError(err.Error())
	}
	return errors.ParseError(pe.Message(), pos(pe.Position()))
}
