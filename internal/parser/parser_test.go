package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minic/internal/ast"
)

func TestParseSourceSimpleFunction(t *testing.T) {
	prog, err := ParseSource("t.c", `int func(int p) { int x; x = p + p; return x; }`)
	require.NoError(t, err)

	assert.Equal(t, "func", prog.Func.Name.Value)
	assert.Equal(t, "p", prog.Func.Param.Value)
	require.Len(t, prog.Func.Body.Stmts, 3)

	decl, ok := prog.Func.Body.Stmts[0].(*ast.DeclStmt)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)

	assign, ok := prog.Func.Body.Stmts[1].(*ast.AssignStmt)
	require.True(t, ok)
	assert.Equal(t, "x", assign.LHSName)
	bin, ok := assign.RHS.(*ast.BinOpExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, bin.Op)

	ret, ok := prog.Func.Body.Stmts[2].(*ast.ReturnStmt)
	require.True(t, ok)
	v, ok := ret.Expr.(*ast.VarExpr)
	require.True(t, ok)
	assert.Equal(t, "x", v.Name)
}

func TestParseSourceIfElse(t *testing.T) {
	prog, err := ParseSource("t.c", `int func(int p) {
		int x;
		x = 7;
		if (p < 0) { x = 8; } else { x = 9; }
		return x;
	}`)
	require.NoError(t, err)

	ifStmt, ok := prog.Func.Body.Stmts[2].(*ast.IfStmt)
	require.True(t, ok)
	rel, ok := ifStmt.Cond.(*ast.RelOpExpr)
	require.True(t, ok)
	assert.Equal(t, ast.RelLt, rel.Op)
	require.NotNil(t, ifStmt.Else)
}

func TestParseSourceWhileAndCalls(t *testing.T) {
	prog, err := ParseSource("t.c", `int func(int p) {
		int i;
		i = 0;
		while (i < p) {
			print(i);
			i = i + 1;
		}
		return 0;
	}`)
	require.NoError(t, err)

	while, ok := prog.Func.Body.Stmts[2].(*ast.WhileStmt)
	require.True(t, ok)
	require.Len(t, while.Body.Stmts, 2)

	exprStmt, ok := while.Body.Stmts[0].(*ast.ExprStmt)
	require.True(t, ok)
	assert.Equal(t, "print", exprStmt.Call.Callee)
	require.NotNil(t, exprStmt.Call.Arg)
}

func TestParseSourceReadCallNoArgs(t *testing.T) {
	prog, err := ParseSource("t.c", `int func(int p) {
		int x;
		x = read();
		return x;
	}`)
	require.NoError(t, err)

	assign := prog.Func.Body.Stmts[1].(*ast.AssignStmt)
	call, ok := assign.RHS.(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "read", call.Callee)
	assert.Nil(t, call.Arg)
}

func TestParseSourcePrecedence(t *testing.T) {
	// "p + 1 * 2" must parse as p + (1 * 2), not (p + 1) * 2.
	prog, err := ParseSource("t.c", `int func(int p) { return p + 1 * 2; }`)
	require.NoError(t, err)

	ret := prog.Func.Body.Stmts[0].(*ast.ReturnStmt)
	top, ok := ret.Expr.(*ast.BinOpExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, top.Op)
	_, lhsIsVar := top.LHS.(*ast.VarExpr)
	assert.True(t, lhsIsVar)
	rhs, ok := top.RHS.(*ast.BinOpExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpMul, rhs.Op)
}

func TestParseSourceUnaryMinus(t *testing.T) {
	prog, err := ParseSource("t.c", `int func(int p) { return -p; }`)
	require.NoError(t, err)

	ret := prog.Func.Body.Stmts[0].(*ast.ReturnStmt)
	neg, ok := ret.Expr.(*ast.UnaryMinusExpr)
	require.True(t, ok)
	_, ok = neg.Expr.(*ast.VarExpr)
	assert.True(t, ok)
}

func TestParseSourceSyntaxError(t *testing.T) {
	_, err := ParseSource("t.c", `int func(int p) { x = ; }`)
	require.Error(t, err)

	ce := AsCompilerError(err)
	assert.NotEmpty(t, ce.Message)
}
