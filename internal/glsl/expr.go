package glsl

import (
	"strings"

	"shady/internal/ir"
)

const swizzleLetters = "xyzw"

// expr renders id, parenthesized when its precedence level is looser than
// limit.
func (g *generator) expr(id ir.ExprID, limit int) string {
	text, prec := g.exprPrec(id, limit)
	if prec > limit {
		return "(" + text + ")"
	}
	return text
}

// exprPrec renders id and reports the level of its outermost operator. limit
// is passed through to collapsed temporaries, which take the place of their
// argument.
func (g *generator) exprPrec(id ir.ExprID, limit int) (string, int) {
	e := g.p.Expr(id)
	switch d := e.Data.(type) {
	case ir.LiteralData:
		return formatLiteral(d)
	case ir.VarRefData:
		return g.declName(d.Decl), precPrimary
	case *ir.DeclData:
		return g.inlineDecl(id, e, d, limit)
	case ir.UnaryData:
		prec := UnaryPrecedence(d.Op)
		if d.Op.IsPostfix() {
			return g.expr(d.Operand, precPostfix) + d.Op.String(), prec
		}
		return d.Op.String() + g.expr(d.Operand, operandLimit(prec)), prec
	case ir.BinaryData:
		prec := BinaryPrecedence(d.Op)
		sep := " " + d.Op.String() + " "
		if d.Op == ir.BinComma {
			sep = ", "
		}
		return g.expr(d.Lhs, operandLimit(prec)) + sep + g.expr(d.Rhs, operandLimit(prec)), prec
	case ir.TernaryData:
		inner := operandLimit(precTernary)
		return g.expr(d.Cond, inner) + " ? " + g.expr(d.A, inner) + " : " + g.expr(d.B, inner), precTernary
	case ir.IndexData:
		return g.expr(d.Base, precPostfix) + "[" + g.expr(d.Index, precStatement) + "]", precPostfix
	case ir.MemberData:
		return g.expr(d.Base, precPostfix) + "." + g.memberName(d), precPostfix
	case ir.SwizzleData:
		var b strings.Builder
		for _, c := range d.Components {
			b.WriteByte(swizzleLetters[c])
		}
		return g.expr(d.Base, precPostfix) + "." + b.String(), precPostfix
	case ir.BuiltinCallData:
		return d.Func + "(" + g.args(d.Args) + ")", precPostfix
	case ir.UserCallData:
		return g.funcName(d.Func) + "(" + g.args(d.Args) + ")", precPostfix
	case ir.ConvertData:
		return d.To.String() + "(" + g.expr(d.Operand, precArgument) + ")", precPostfix
	default:
		panic("glsl: unhandled expression kind " + e.Kind.String())
	}
}

// inlineDecl renders a declaration in operand position. Temporaries print as
// their value; everything else prints its name.
func (g *generator) inlineDecl(id ir.ExprID, e *ir.Expr, d *ir.DeclData, limit int) (string, int) {
	if !g.flags(id).Has(ir.DeclTemporary) {
		return g.declName(id), precPrimary
	}
	if len(d.Args) == 1 && g.p.Expr(d.Args[0]).Type == e.Type {
		return g.exprPrec(d.Args[0], limit)
	}
	return e.Type.String() + "(" + g.args(d.Args) + ")", precPostfix
}

func (g *generator) args(ids []ir.ExprID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = g.expr(id, precArgument)
	}
	return strings.Join(parts, ", ")
}

func (g *generator) memberName(d ir.MemberData) string {
	var members []ir.ExprID
	switch owner := g.p.Instr(d.Struct).Data.(type) {
	case ir.StructData:
		members = owner.Members
	case ir.InterfaceBlockData:
		members = owner.Members
	}
	return g.declName(members[d.Member])
}
