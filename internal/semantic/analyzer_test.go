package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"minic/internal/ast"
	"minic/internal/errors"
)

func program(body *ast.Block) *ast.Program {
	return &ast.Program{
		Func: &ast.Function{
			Name:  ast.Ident{Value: "func"},
			Param: ast.Ident{Value: "p"},
			Body:  body,
		},
	}
}

func TestAnalyzeAcceptsParameterUse(t *testing.T) {
	prog := program(&ast.Block{Stmts: []ast.Stmt{
		&ast.ReturnStmt{Expr: &ast.VarExpr{Name: "p"}},
	}})

	errs := NewAnalyzer().Analyze(prog)
	assert.Empty(t, errs)
}

func TestAnalyzeUndeclaredVariable(t *testing.T) {
	prog := program(&ast.Block{Stmts: []ast.Stmt{
		&ast.ReturnStmt{Expr: &ast.VarExpr{Name: "x", Pos: ast.Position{Line: 1, Column: 8}}},
	}})

	errs := NewAnalyzer().Analyze(prog)
	assert.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorUndeclaredVariable, errs[0].Code)
	assert.Equal(t, "Variable 'x' not declared.", errs[0].Message)
}

func TestAnalyzeRedeclaredVariable(t *testing.T) {
	prog := program(&ast.Block{Stmts: []ast.Stmt{
		&ast.DeclStmt{Name: "x"},
		&ast.DeclStmt{Name: "x", Pos: ast.Position{Line: 2, Column: 5}},
	}})

	errs := NewAnalyzer().Analyze(prog)
	assert.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorRedeclaredVariable, errs[0].Code)
}

func TestAnalyzeIfBranchesAreSeparateScopes(t *testing.T) {
	// "x" declared only in the then-branch must not leak into the else-branch.
	prog := program(&ast.Block{Stmts: []ast.Stmt{
		&ast.IfStmt{
			Cond: &ast.VarExpr{Name: "p"},
			Then: &ast.Block{Stmts: []ast.Stmt{&ast.DeclStmt{Name: "x"}}},
			Else: &ast.Block{Stmts: []ast.Stmt{
				&ast.ReturnStmt{Expr: &ast.VarExpr{Name: "x"}},
			}},
		},
	}})

	errs := NewAnalyzer().Analyze(prog)
	assert.Len(t, errs, 1)
	assert.Equal(t, errors.ErrorUndeclaredVariable, errs[0].Code)
}

func TestAnalyzeWhileBodyCanRedeclareOuterName(t *testing.T) {
	// A decl inside a while body is a fresh scope, so it may reuse a name
	// declared in an outer scope without being flagged as redeclaration
	// (shadowing, not redeclaration, since it is a distinct scope level).
	prog := program(&ast.Block{Stmts: []ast.Stmt{
		&ast.DeclStmt{Name: "i"},
		&ast.WhileStmt{
			Cond: &ast.VarExpr{Name: "i"},
			Body: &ast.Block{Stmts: []ast.Stmt{
				&ast.DeclStmt{Name: "i"},
			}},
		},
	}})

	errs := NewAnalyzer().Analyze(prog)
	assert.Empty(t, errs)
}

func TestAnalyzeCallArgumentChecked(t *testing.T) {
	prog := program(&ast.Block{Stmts: []ast.Stmt{
		&ast.ExprStmt{Call: &ast.CallExpr{
			Callee: "print",
			Arg:    &ast.VarExpr{Name: "missing", Pos: ast.Position{Line: 1, Column: 1}},
		}},
		&ast.ReturnStmt{Expr: &ast.ConstExpr{Value: 0}},
	}})

	errs := NewAnalyzer().Analyze(prog)
	assert.Len(t, errs, 1)
}
