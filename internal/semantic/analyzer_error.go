package semantic

import (
	"minic/internal/ast"
	"minic/internal/errors"
)

func (a *Analyzer) addUndeclaredVariableError(name string, pos ast.Position) {
	a.errors = append(a.errors, errors.UndeclaredVariable(name, pos))
}

func (a *Analyzer) addRedeclaredVariableError(name string, pos ast.Position) {
	a.errors = append(a.errors, errors.RedeclaredVariable(name, pos))
}
