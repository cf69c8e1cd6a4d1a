package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFunctionString(t *testing.T) {
	prog := &Program{
		Func: &Function{
			Name:  Ident{Value: "func"},
			Param: Ident{Value: "p"},
			Body: &Block{
				Stmts: []Stmt{
					&DeclStmt{Name: "x"},
					&AssignStmt{LHSName: "x", RHS: &BinOpExpr{
						Op:  OpAdd,
						LHS: &VarExpr{Name: "p"},
						RHS: &VarExpr{Name: "p"},
					}},
					&ReturnStmt{Expr: &VarExpr{Name: "x"}},
				},
			},
		},
	}

	out := prog.String()
	assert.Contains(t, out, "int func(int p)")
	assert.Contains(t, out, "int x;")
	assert.Contains(t, out, "x = (p + p);")
	assert.Contains(t, out, "return x;")
}

func TestCallExprString(t *testing.T) {
	withArg := &CallExpr{Callee: "print", Arg: &ConstExpr{Value: 7}}
	assert.Equal(t, "print(7)", withArg.String())

	noArg := &CallExpr{Callee: "read"}
	assert.Equal(t, "read()", noArg.String())
}

func TestRelOpString(t *testing.T) {
	rel := &RelOpExpr{Op: RelLt, LHS: &VarExpr{Name: "i"}, RHS: &VarExpr{Name: "p"}}
	assert.Equal(t, "(i < p)", rel.String())
}
