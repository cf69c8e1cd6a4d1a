package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"minic/internal/ast"
)

// lexerPosition is embedded (by field name convention, "Pos"/"End") in
// every grammar node so participle stamps in source positions without
// any further grammar annotation, the same convention the teacher's own
// internal/parser uses for its hand-rolled Position (internal/parser/types.go),
// just sourced from participle's lexer instead of a hand-rolled scanner.
type lexerPosition = lexer.Position

var miniCParser = participle.MustBuild[grammarProgram](
	participle.Lexer(MiniCLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ParseSource parses a miniC translation unit from source text into the
// §3.1 AST. filename is used only for error positions. Per spec.md §6,
// the lexer/parser is an external collaborator to the core: this function
// is that collaborator's entire contract.
func ParseSource(filename, source string) (*ast.Program, error) {
	gp, err := miniCParser.ParseString(filename, source)
	if err != nil {
		return nil, err
	}
	return convertProgram(gp), nil
}

func pos(p lexerPosition) ast.Position {
	return ast.Position{Filename: p.Filename, Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func convertProgram(g *grammarProgram) *ast.Program {
	fn := convertFunction(g.Func)
	return &ast.Program{Pos: pos(g.Pos), EndPos: fn.EndPos, Func: fn}
}

func convertFunction(g *grammarFunction) *ast.Function {
	body := convertBlock(g.Body)
	return &ast.Function{
		Pos:    pos(g.Pos),
		EndPos: body.EndPos,
		Name:   ast.Ident{Pos: pos(g.Pos), Value: g.Name},
		Param:  ast.Ident{Pos: pos(g.Pos), Value: g.Param},
		Body:   body,
	}
}

func convertBlock(g *grammarBlock) *ast.Block {
	blk := &ast.Block{Pos: pos(g.Pos), EndPos: pos(g.End)}
	for _, s := range g.Stmts {
		blk.Stmts = append(blk.Stmts, convertStmt(s))
	}
	return blk
}

func convertStmt(g *grammarStmt) ast.Stmt {
	switch {
	case g.Decl != nil:
		return &ast.DeclStmt{Pos: pos(g.Decl.Pos), EndPos: pos(g.Decl.End), Name: g.Decl.Name}

	case g.If != nil:
		stmt := &ast.IfStmt{Pos: pos(g.If.Pos), Cond: convertExpr(g.If.Cond), Then: convertBlock(g.If.Then)}
		stmt.EndPos = stmt.Then.EndPos
		if g.If.Else != nil {
			stmt.Else = convertBlock(g.If.Else)
			stmt.EndPos = stmt.Else.EndPos
		}
		return stmt

	case g.While != nil:
		body := convertBlock(g.While.Body)
		return &ast.WhileStmt{Pos: pos(g.While.Pos), EndPos: body.EndPos, Cond: convertExpr(g.While.Cond), Body: body}

	case g.Return != nil:
		return &ast.ReturnStmt{Pos: pos(g.Return.Pos), EndPos: pos(g.Return.End), Expr: convertExpr(g.Return.Expr)}

	case g.Assign != nil:
		return &ast.AssignStmt{
			Pos: pos(g.Assign.Pos), EndPos: pos(g.Assign.End),
			LHSName: g.Assign.Name, RHS: convertExpr(g.Assign.RHS),
		}

	case g.Expr != nil:
		return &ast.ExprStmt{Pos: pos(g.Expr.Pos), EndPos: pos(g.Expr.End), Call: convertCall(g.Expr.Call)}

	case g.Block != nil:
		return convertBlock(g.Block)

	default:
		panic("parser: empty statement alternative")
	}
}

// convertExpr collapses the grammar's precedence-climbing levels
// (grammarExpr -> grammarAddExpr -> grammarMulExpr -> grammarUnaryExpr ->
// grammarPrimaryExpr) into the flat ast.Expr sum type of §3.1: a level
// that contributed nothing (no operator present) is skipped rather than
// wrapped, so "p" parses to a bare VarExpr, not a BinOp chain of one.
func convertExpr(g *grammarExpr) ast.Expr {
	left := convertAddExpr(g.Left)
	if g.RelOp == nil {
		return left
	}
	right := convertAddExpr(g.Right)
	return &ast.RelOpExpr{Pos: left.NodePos(), EndPos: right.NodeEndPos(), Op: relOpOf(*g.RelOp), LHS: left, RHS: right}
}

func convertAddExpr(g *grammarAddExpr) ast.Expr {
	left := convertMulExpr(g.Left)
	for _, op := range g.Ops {
		right := convertMulExpr(op.Right)
		left = &ast.BinOpExpr{Pos: left.NodePos(), EndPos: right.NodeEndPos(), Op: binOpOf(op.Operator), LHS: left, RHS: right}
	}
	return left
}

func convertMulExpr(g *grammarMulExpr) ast.Expr {
	left := convertUnaryExpr(g.Left)
	for _, op := range g.Ops {
		right := convertUnaryExpr(op.Right)
		left = &ast.BinOpExpr{Pos: left.NodePos(), EndPos: right.NodeEndPos(), Op: binOpOf(op.Operator), LHS: left, RHS: right}
	}
	return left
}

func convertUnaryExpr(g *grammarUnaryExpr) ast.Expr {
	primary := convertPrimaryExpr(g.Primary)
	if !g.Minus {
		return primary
	}
	return &ast.UnaryMinusExpr{Pos: pos(g.Pos), EndPos: primary.NodeEndPos(), Expr: primary}
}

func convertPrimaryExpr(g *grammarPrimaryExpr) ast.Expr {
	switch {
	case g.Call != nil:
		return convertCall(g.Call)
	case g.Number != nil:
		return &ast.ConstExpr{Pos: pos(g.Pos), EndPos: pos(g.End), Value: *g.Number}
	case g.Ident != nil:
		return &ast.VarExpr{Pos: pos(g.Pos), EndPos: pos(g.End), Name: *g.Ident}
	case g.Paren != nil:
		return convertExpr(g.Paren)
	default:
		panic("parser: empty primary expression alternative")
	}
}

func convertCall(g *grammarCallExpr) *ast.CallExpr {
	call := &ast.CallExpr{Pos: pos(g.Pos), EndPos: pos(g.End), Callee: g.Callee}
	if g.Arg != nil {
		call.Arg = convertExpr(g.Arg)
	}
	return call
}

func binOpOf(op string) ast.BinOpKind {
	switch op {
	case "+":
		return ast.OpAdd
	case "-":
		return ast.OpSub
	case "*":
		return ast.OpMul
	case "/":
		return ast.OpDiv
	default:
		panic(fmt.Sprintf("parser: unrecognized arithmetic operator %q", op))
	}
}

func relOpOf(op string) ast.RelOpKind {
	switch op {
	case "<":
		return ast.RelLt
	case ">":
		return ast.RelGt
	case "<=":
		return ast.RelLe
	case ">=":
		return ast.RelGe
	case "==":
		return ast.RelEq
	case "!=":
		return ast.RelNe
	default:
		panic(fmt.Sprintf("parser: unrecognized relational operator %q", op))
	}
}
