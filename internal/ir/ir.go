package ir

import "minic/internal/ast"

// BuildProgram lowers a checked AST into a Module, ready for optimization
// and then backend code generation. The caller is responsible for having
// already run the semantic checker and confirmed it reported no errors
// (§7): Build panics on any AST shape the checker should have rejected.
func BuildProgram(prog *ast.Program) *Module {
	return NewBuilder().Build(prog)
}

// PrintProgram returns the textual IR form of m (§6).
func PrintProgram(m *Module) string {
	return Print(m)
}
