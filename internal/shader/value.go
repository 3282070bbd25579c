package shader

import (
	"strings"

	"shady/internal/ir"
)

type valueKind uint8

const (
	// kindExpr is a plain expression node.
	kindExpr valueKind = iota
	// kindNamed is a declaration read by reference.
	kindNamed
	// kindTemp is an anonymous declaration consumed by copy.
	kindTemp
)

// Value is a typed handle to something recorded in a Builder. The zero Value
// is invalid; operations on it return invalid Values and record nothing.
type Value struct {
	b    *Builder
	id   ir.ExprID
	typ  ir.Type
	kind valueKind
}

// Valid reports whether v came from a successful operation.
func (v Value) Valid() bool { return v.b != nil && v.typ.Name != "" }

func (v Value) Type() ir.Type { return v.typ }

// ID returns the handle of the node behind v.
func (v Value) ID() ir.ExprID { return v.id }

// operand returns the handle to embed when v is used inside another node.
func (v Value) operand() ir.ExprID {
	switch v.kind {
	case kindNamed:
		return v.b.s.Ref(v.id)
	case kindTemp:
		return v.b.s.UseAsTemporary(v.id)
	default:
		return v.id
	}
}

func (v Value) binary(op ir.BinaryOp, o Value) Value {
	if !v.Valid() || !o.Valid() {
		return Value{}
	}
	typ, ok := binaryResult(op, v.typ, o.typ)
	if !ok {
		return v.b.fail(&OverloadError{Kind: KindOperator, Func: op.String(), Args: []ir.Type{v.typ, o.typ}})
	}
	lhs, rhs := v.operand(), o.operand()
	return v.b.value(v.b.s.Binary(typ, op, lhs, rhs), typ, kindExpr)
}

func (v Value) Add(o Value) Value    { return v.binary(ir.BinAdd, o) }
func (v Value) Sub(o Value) Value    { return v.binary(ir.BinSub, o) }
func (v Value) Mul(o Value) Value    { return v.binary(ir.BinMul, o) }
func (v Value) Div(o Value) Value    { return v.binary(ir.BinDiv, o) }
func (v Value) Mod(o Value) Value    { return v.binary(ir.BinMod, o) }
func (v Value) Lt(o Value) Value     { return v.binary(ir.BinLt, o) }
func (v Value) Le(o Value) Value     { return v.binary(ir.BinLe, o) }
func (v Value) Gt(o Value) Value     { return v.binary(ir.BinGt, o) }
func (v Value) Ge(o Value) Value     { return v.binary(ir.BinGe, o) }
func (v Value) Eq(o Value) Value     { return v.binary(ir.BinEq, o) }
func (v Value) Ne(o Value) Value     { return v.binary(ir.BinNe, o) }
func (v Value) And(o Value) Value    { return v.binary(ir.BinLogAnd, o) }
func (v Value) Or(o Value) Value     { return v.binary(ir.BinLogOr, o) }
func (v Value) Xor(o Value) Value    { return v.binary(ir.BinLogXor, o) }
func (v Value) BitAnd(o Value) Value { return v.binary(ir.BinBitAnd, o) }
func (v Value) BitOr(o Value) Value  { return v.binary(ir.BinBitOr, o) }
func (v Value) BitXor(o Value) Value { return v.binary(ir.BinBitXor, o) }
func (v Value) Shl(o Value) Value    { return v.binary(ir.BinShl, o) }
func (v Value) Shr(o Value) Value    { return v.binary(ir.BinShr, o) }

func (v Value) unary(op ir.UnaryOp) Value {
	if !v.Valid() {
		return Value{}
	}
	typ, ok := unaryResult(op, v.typ)
	if !ok {
		return v.b.fail(&OverloadError{Kind: KindOperator, Func: op.String(), Args: []ir.Type{v.typ}})
	}
	return v.b.value(v.b.s.Unary(typ, op, v.operand()), typ, kindExpr)
}

func (v Value) Neg() Value    { return v.unary(ir.UnaryNeg) }
func (v Value) Not() Value    { return v.unary(ir.UnaryNot) }
func (v Value) BitNot() Value { return v.unary(ir.UnaryBitNot) }

// Set records v = x.
func (v Value) Set(x Value) { v.assign(ir.BinAssign, x) }

func (v Value) AddSet(x Value) { v.assign(ir.BinAddAssign, x) }
func (v Value) SubSet(x Value) { v.assign(ir.BinSubAssign, x) }
func (v Value) MulSet(x Value) { v.assign(ir.BinMulAssign, x) }
func (v Value) DivSet(x Value) { v.assign(ir.BinDivAssign, x) }

func (v Value) assign(op ir.BinaryOp, x Value) {
	if !v.Valid() || !x.Valid() {
		return
	}
	ok := v.kind != kindTemp
	if ok && op == ir.BinAssign {
		ok = x.typ == v.typ
	} else if ok {
		typ, defined := binaryResult(compoundBase(op), v.typ, x.typ)
		ok = defined && typ == v.typ
	}
	if !ok {
		v.b.fail(&OverloadError{Kind: KindOperator, Func: op.String(), Args: []ir.Type{v.typ, x.typ}})
		return
	}
	lhs, rhs := v.operand(), x.operand()
	v.b.s.PushExpression(v.b.s.Binary(v.typ, op, lhs, rhs))
}

// Inc records v++.
func (v Value) Inc() { v.step(ir.UnaryPostInc) }

// Dec records v--.
func (v Value) Dec() { v.step(ir.UnaryPostDec) }

func (v Value) step(op ir.UnaryOp) {
	if !v.Valid() {
		return
	}
	if _, ok := unaryResult(op, v.typ); !ok || v.kind == kindTemp {
		v.b.fail(&OverloadError{Kind: KindOperator, Func: op.String(), Args: []ir.Type{v.typ}})
		return
	}
	v.b.s.PushExpression(v.b.s.Unary(v.typ, op, v.operand()))
}

// To converts v to another type of the same shape, such as int to float.
func (v Value) To(typ ir.Type) Value {
	if !v.Valid() {
		return Value{}
	}
	from, okFrom := shapeOf(v.typ)
	to, okTo := shapeOf(typ)
	if !okFrom || !okTo || from.rows != to.rows || from.cols != to.cols {
		return v.b.fail(&OverloadError{Kind: KindConstructor, Func: typ.String(), Args: []ir.Type{v.typ}})
	}
	if typ == v.typ {
		return v
	}
	return v.b.value(v.b.s.Convert(v.typ, typ, v.operand()), typ, kindExpr)
}

var swizzleSets = []string{"xyzw", "rgba", "stpq"}

// Swizzle selects components by letters from one of xyzw, rgba or stpq.
func (v Value) Swizzle(sel string) Value {
	if !v.Valid() {
		return Value{}
	}
	s, ok := shapeOf(v.typ)
	comps, okSel := parseSwizzle(sel, s.rows)
	if !ok || !s.isVector() || !okSel {
		return v.b.fail(&OverloadError{Kind: KindOperator, Func: "." + sel, Args: []ir.Type{v.typ}})
	}
	typ := shape{scalar: s.scalar, rows: len(comps), cols: 1}.typ()
	return v.b.value(v.b.s.Swizzle(typ, v.operand(), comps...), typ, kindExpr)
}

func parseSwizzle(sel string, n int) ([]uint8, bool) {
	if len(sel) == 0 || len(sel) > 4 {
		return nil, false
	}
	for _, set := range swizzleSets {
		comps := make([]uint8, 0, len(sel))
		for _, r := range sel {
			i := strings.IndexRune(set, r)
			if i < 0 || i >= n {
				comps = nil
				break
			}
			comps = append(comps, uint8(i)) //nolint:gosec // i < 4
		}
		if comps != nil {
			return comps, true
		}
	}
	return nil, false
}

func (v Value) X() Value { return v.Swizzle("x") }
func (v Value) Y() Value { return v.Swizzle("y") }
func (v Value) Z() Value { return v.Swizzle("z") }
func (v Value) W() Value { return v.Swizzle("w") }

// At indexes an array, vector or matrix.
func (v Value) At(i Value) Value {
	if !v.Valid() || !i.Valid() {
		return Value{}
	}
	var elem ir.Type
	s, ok := shapeOf(v.typ)
	switch {
	case v.typ.IsArray():
		elem = v.typ.Elem()
	case ok && s.isVector():
		elem = ir.T(s.scalar)
	case ok && s.isMatrix():
		elem = shape{scalar: s.scalar, rows: s.rows, cols: 1}.typ()
	}
	if elem.Name == "" || (i.typ != ir.Int && i.typ != ir.Uint) {
		return v.b.fail(&OverloadError{Kind: KindOperator, Func: "[]", Args: []ir.Type{v.typ, i.typ}})
	}
	base, idx := v.operand(), i.operand()
	return v.b.value(v.b.s.Index(elem, base, idx), elem, kindExpr)
}

// Field reads a member of a struct value.
func (v Value) Field(name string) Value {
	if !v.Valid() {
		return Value{}
	}
	st, ok := v.b.structs[v.typ.Name]
	if !ok || v.typ.IsArray() {
		return v.b.fail(&OverloadError{Kind: KindOperator, Func: "." + name, Args: []ir.Type{v.typ}})
	}
	i := st.index(name)
	if i < 0 {
		return v.b.fail(&OverloadError{Kind: KindOperator, Func: "." + name, Args: []ir.Type{v.typ}})
	}
	typ := st.fields[i].Type
	return v.b.value(v.b.s.Member(st.id, i, v.operand()), typ, kindExpr)
}
