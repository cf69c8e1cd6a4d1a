package ast

// Expr is implemented by every expression form.
type Expr interface {
	Node
	isExpr()
}

func (*VarExpr) isExpr()        {}
func (*ConstExpr) isExpr()      {}
func (*BinOpExpr) isExpr()      {}
func (*RelOpExpr) isExpr()      {}
func (*UnaryMinusExpr) isExpr() {}
func (*CallExpr) isExpr()       {}

// BinOpKind enumerates the four arithmetic operators (§3.1).
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpDiv
)

func (op BinOpKind) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// RelOpKind enumerates the six relational operators (§3.1).
type RelOpKind int

const (
	RelLt RelOpKind = iota
	RelGt
	RelLe
	RelGe
	RelEq
	RelNe
)

func (op RelOpKind) String() string {
	switch op {
	case RelLt:
		return "<"
	case RelGt:
		return ">"
	case RelLe:
		return "<="
	case RelGe:
		return ">="
	case RelEq:
		return "=="
	case RelNe:
		return "!="
	default:
		return "?"
	}
}

// VarExpr is a reference to a declared variable or the function parameter.
// Example: "x"
type VarExpr struct {
	Pos    Position
	EndPos Position
	Name   string
}

func (v *VarExpr) NodePos() Position    { return v.Pos }
func (v *VarExpr) NodeEndPos() Position { return v.EndPos }
func (*VarExpr) NodeType() NodeType     { return VAR_EXPR }

// ConstExpr is a signed 32-bit integer literal.
// Example: "42"
type ConstExpr struct {
	Pos    Position
	EndPos Position
	Value  int32
}

func (c *ConstExpr) NodePos() Position    { return c.Pos }
func (c *ConstExpr) NodeEndPos() Position { return c.EndPos }
func (*ConstExpr) NodeType() NodeType     { return CONST_EXPR }

// BinOpExpr is one of the four arithmetic binary operators.
// Example: "p + 1"
type BinOpExpr struct {
	Pos    Position
	EndPos Position
	Op     BinOpKind
	LHS    Expr
	RHS    Expr
}

func (b *BinOpExpr) NodePos() Position    { return b.Pos }
func (b *BinOpExpr) NodeEndPos() Position { return b.EndPos }
func (*BinOpExpr) NodeType() NodeType     { return BINOP_EXPR }

// RelOpExpr is one of the six relational operators; it produces an i1.
// Example: "p < 0"
type RelOpExpr struct {
	Pos    Position
	EndPos Position
	Op     RelOpKind
	LHS    Expr
	RHS    Expr
}

func (r *RelOpExpr) NodePos() Position    { return r.Pos }
func (r *RelOpExpr) NodeEndPos() Position { return r.EndPos }
func (*RelOpExpr) NodeType() NodeType     { return RELOP_EXPR }

// UnaryMinusExpr negates its operand.
// Example: "-x"
type UnaryMinusExpr struct {
	Pos    Position
	EndPos Position
	Expr   Expr
}

func (u *UnaryMinusExpr) NodePos() Position    { return u.Pos }
func (u *UnaryMinusExpr) NodeEndPos() Position { return u.EndPos }
func (*UnaryMinusExpr) NodeType() NodeType     { return UNARY_MINUS_EXPR }

// CallExpr targets "print" (i32 -> void) or "read" (() -> i32) (§3.1
// invariant). Neither the grammar nor the semantic checker checks the
// callee name.
// Example: "print(i)", "read()"
type CallExpr struct {
	Pos    Position
	EndPos Position
	Callee string
	Arg    Expr // nil for "read()"
}

func (c *CallExpr) NodePos() Position    { return c.Pos }
func (c *CallExpr) NodeEndPos() Position { return c.EndPos }
func (*CallExpr) NodeType() NodeType     { return CALL_EXPR }
