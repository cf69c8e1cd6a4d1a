package ast

import (
	"fmt"
	"strings"
)

func (p *Program) String() string {
	return p.Func.String()
}

func (f *Function) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("int %s(int %s) ", f.Name.Value, f.Param.Value))
	b.WriteString(f.Body.String())
	return b.String()
}

func (b *Block) String() string {
	var out strings.Builder
	out.WriteString("{\n")
	for _, stmt := range b.Stmts {
		out.WriteString("  ")
		out.WriteString(strings.ReplaceAll(stmt.String(), "\n", "\n  "))
		out.WriteByte('\n')
	}
	out.WriteString("}")
	return out.String()
}

func (i *IfStmt) String() string {
	if i.Else != nil {
		return fmt.Sprintf("if (%s) %s else %s", i.Cond.String(), i.Then.String(), i.Else.String())
	}
	return fmt.Sprintf("if (%s) %s", i.Cond.String(), i.Then.String())
}

func (w *WhileStmt) String() string {
	return fmt.Sprintf("while (%s) %s", w.Cond.String(), w.Body.String())
}

func (a *AssignStmt) String() string {
	return fmt.Sprintf("%s = %s;", a.LHSName, a.RHS.String())
}

func (d *DeclStmt) String() string {
	return fmt.Sprintf("int %s;", d.Name)
}

func (r *ReturnStmt) String() string {
	return fmt.Sprintf("return %s;", r.Expr.String())
}

func (e *ExprStmt) String() string {
	return e.Call.String() + ";"
}

func (v *VarExpr) String() string {
	return v.Name
}

func (c *ConstExpr) String() string {
	return fmt.Sprintf("%d", c.Value)
}

func (b *BinOpExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.LHS.String(), b.Op, b.RHS.String())
}

func (r *RelOpExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", r.LHS.String(), r.Op, r.RHS.String())
}

func (u *UnaryMinusExpr) String() string {
	return fmt.Sprintf("(-%s)", u.Expr.String())
}

func (c *CallExpr) String() string {
	if c.Arg == nil {
		return fmt.Sprintf("%s()", c.Callee)
	}
	return fmt.Sprintf("%s(%s)", c.Callee, c.Arg.String())
}
