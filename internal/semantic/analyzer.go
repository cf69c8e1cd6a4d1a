package semantic

import (
	"minic/internal/ast"
	"minic/internal/errors"
)

// Analyzer performs the scoping check of §4.B: every Var must resolve to an
// enclosing Decl or the function parameter, and no Decl may repeat a name
// already declared in the same scope. It does not check types; miniC has
// exactly one type (32-bit int), so there is nothing to check.
type Analyzer struct {
	errors []errors.CompilerError
	scope  *Scope
}

// NewAnalyzer creates an Analyzer ready to check a single Program.
func NewAnalyzer() *Analyzer {
	return &Analyzer{errors: make([]errors.CompilerError, 0)}
}

// Analyze walks prog and returns every scoping error found. Per §7, the
// driver treats any non-empty result as fatal: the pipeline stops before
// IR construction.
func (a *Analyzer) Analyze(prog *ast.Program) []errors.CompilerError {
	a.errors = make([]errors.CompilerError, 0)
	a.analyzeFunction(prog.Func)
	return a.errors
}

func (a *Analyzer) analyzeFunction(fn *ast.Function) {
	// The function-body scope is the root scope; the parameter lives in it
	// from the start, so it is visible to every statement in the body (§4.B).
	a.scope = NewScope(nil)
	a.scope.Define(fn.Param.Value, SymbolParameter, fn, fn.Param.Pos)
	a.analyzeBlockIn(fn.Body, a.scope)
}

// analyzeBlock pushes a fresh scope nested in the current one, analyzes
// block in it, and pops back. Used for while bodies and if/else branches.
func (a *Analyzer) analyzeBlock(block *ast.Block) {
	a.analyzeBlockIn(block, NewScope(a.scope))
}

// analyzeBlockIn analyzes block using scope as its scope, without creating
// a further nested scope. Used for the function body, whose scope already
// holds the parameter.
func (a *Analyzer) analyzeBlockIn(block *ast.Block, scope *Scope) {
	saved := a.scope
	a.scope = scope
	for _, stmt := range block.Stmts {
		a.analyzeStmt(stmt)
	}
	a.scope = saved
}

func (a *Analyzer) analyzeStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.DeclStmt:
		if existing := a.scope.LookupLocal(s.Name); existing != nil {
			a.addRedeclaredVariableError(s.Name, s.Pos)
			return
		}
		a.scope.Define(s.Name, SymbolVariable, s, s.Pos)

	case *ast.AssignStmt:
		a.resolveVar(s.LHSName, s.Pos)
		a.analyzeExpr(s.RHS)

	case *ast.ReturnStmt:
		a.analyzeExpr(s.Expr)

	case *ast.ExprStmt:
		a.analyzeExpr(s.Call)

	case *ast.IfStmt:
		a.analyzeExpr(s.Cond)
		// Each branch is its own scope, even the else branch, per §4.B.
		a.analyzeBlock(s.Then)
		if s.Else != nil {
			a.analyzeBlock(s.Else)
		}

	case *ast.WhileStmt:
		a.analyzeExpr(s.Cond)
		a.analyzeBlock(s.Body)

	case *ast.Block:
		a.analyzeBlock(s)
	}
}

func (a *Analyzer) analyzeExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.VarExpr:
		a.resolveVar(e.Name, e.Pos)
	case *ast.ConstExpr:
		// no names to resolve
	case *ast.BinOpExpr:
		a.analyzeExpr(e.LHS)
		a.analyzeExpr(e.RHS)
	case *ast.RelOpExpr:
		a.analyzeExpr(e.LHS)
		a.analyzeExpr(e.RHS)
	case *ast.UnaryMinusExpr:
		a.analyzeExpr(e.Expr)
	case *ast.CallExpr:
		if e.Arg != nil {
			a.analyzeExpr(e.Arg)
		}
	}
}

func (a *Analyzer) resolveVar(name string, pos ast.Position) {
	if a.scope.Lookup(name) == nil {
		a.addUndeclaredVariableError(name, pos)
	}
}
