package shader

import (
	"strconv"
	"strings"

	"shady/internal/ir"
)

// shape describes a scalar, vector or matrix type.
type shape struct {
	scalar string // float, double, int, uint or bool
	rows   int    // vector length; 1 for scalars
	cols   int    // matrix columns; 1 for scalars and vectors
}

func (s shape) isScalar() bool  { return s.rows == 1 && s.cols == 1 }
func (s shape) isVector() bool  { return s.rows > 1 && s.cols == 1 }
func (s shape) isMatrix() bool  { return s.cols > 1 }
func (s shape) components() int { return s.rows * s.cols }
func (s shape) numeric() bool   { return s.scalar != "bool" }
func (s shape) integral() bool  { return s.scalar == "int" || s.scalar == "uint" }

var vectorPrefix = map[string]string{
	"float":  "",
	"double": "d",
	"int":    "i",
	"uint":   "u",
	"bool":   "b",
}

func (s shape) typ() ir.Type {
	switch {
	case s.isScalar():
		return ir.T(s.scalar)
	case s.isVector():
		return ir.T(vectorPrefix[s.scalar] + "vec" + strconv.Itoa(s.rows))
	}
	name := vectorPrefix[s.scalar] + "mat" + strconv.Itoa(s.cols)
	if s.rows != s.cols {
		name += "x" + strconv.Itoa(s.rows)
	}
	return ir.T(name)
}

func dim(s string) int {
	switch s {
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	default:
		return 0
	}
}

// shapeOf classifies a built-in numeric type; ok is false for arrays,
// structs, samplers and anything else.
func shapeOf(t ir.Type) (shape, bool) {
	if t.IsArray() {
		return shape{}, false
	}
	if _, ok := vectorPrefix[t.Name]; ok {
		return shape{scalar: t.Name, rows: 1, cols: 1}, true
	}
	for scalar, prefix := range vectorPrefix {
		if rest, ok := strings.CutPrefix(t.Name, prefix+"vec"); ok {
			if n := dim(rest); n > 0 {
				return shape{scalar: scalar, rows: n, cols: 1}, true
			}
		}
	}
	for _, scalar := range []string{"float", "double"} {
		rest, ok := strings.CutPrefix(t.Name, vectorPrefix[scalar]+"mat")
		if !ok {
			continue
		}
		c, r, found := strings.Cut(rest, "x")
		cols, rows := dim(c), dim(c)
		if found {
			rows = dim(r)
		}
		if cols > 0 && rows > 0 {
			return shape{scalar: scalar, rows: rows, cols: cols}, true
		}
	}
	return shape{}, false
}

// binaryResult returns the type of x op y, or false when GLSL defines no
// such operator.
func binaryResult(op ir.BinaryOp, x, y ir.Type) (ir.Type, bool) {
	sx, okX := shapeOf(x)
	sy, okY := shapeOf(y)
	if !okX || !okY {
		if (op == ir.BinEq || op == ir.BinNe) && x == y {
			return ir.Bool, true
		}
		return ir.Type{}, false
	}
	switch {
	case op.IsLogical():
		if x == ir.Bool && y == ir.Bool {
			return ir.Bool, true
		}
		return ir.Type{}, false
	case op == ir.BinEq || op == ir.BinNe:
		if x == y {
			return ir.Bool, true
		}
		return ir.Type{}, false
	case op.IsComparison():
		if x == y && sx.isScalar() && sx.numeric() {
			return ir.Bool, true
		}
		return ir.Type{}, false
	case op == ir.BinComma:
		return y, true
	}
	if sx.scalar != sy.scalar || !sx.numeric() {
		return ir.Type{}, false
	}
	switch op {
	case ir.BinMod, ir.BinBitAnd, ir.BinBitOr, ir.BinBitXor, ir.BinShl, ir.BinShr:
		if !sx.integral() {
			return ir.Type{}, false
		}
	case ir.BinMul:
		if sx.isMatrix() || sy.isMatrix() {
			return matrixProduct(sx, sy)
		}
	}
	switch {
	case x == y:
		return x, true
	case sx.isScalar():
		return y, true
	case sy.isScalar():
		return x, true
	default:
		return ir.Type{}, false
	}
}

// matrixProduct types linear-algebra multiplication; a scalar operand scales
// component-wise.
func matrixProduct(x, y shape) (ir.Type, bool) {
	switch {
	case x.isScalar():
		return y.typ(), true
	case y.isScalar():
		return x.typ(), true
	case x.isMatrix() && y.isVector() && x.cols == y.rows:
		return shape{scalar: x.scalar, rows: x.rows, cols: 1}.typ(), true
	case x.isVector() && y.isMatrix() && x.rows == y.rows:
		return shape{scalar: x.scalar, rows: y.cols, cols: 1}.typ(), true
	case x.isMatrix() && y.isMatrix() && x.cols == y.rows:
		return shape{scalar: x.scalar, rows: x.rows, cols: y.cols}.typ(), true
	default:
		return ir.Type{}, false
	}
}

// compoundBase maps an assignment operator to the operator it applies.
func compoundBase(op ir.BinaryOp) ir.BinaryOp {
	switch op {
	case ir.BinAddAssign:
		return ir.BinAdd
	case ir.BinSubAssign:
		return ir.BinSub
	case ir.BinMulAssign:
		return ir.BinMul
	case ir.BinDivAssign:
		return ir.BinDiv
	case ir.BinModAssign:
		return ir.BinMod
	case ir.BinShlAssign:
		return ir.BinShl
	case ir.BinShrAssign:
		return ir.BinShr
	case ir.BinAndAssign:
		return ir.BinBitAnd
	case ir.BinXorAssign:
		return ir.BinBitXor
	case ir.BinOrAssign:
		return ir.BinBitOr
	default:
		return op
	}
}

func unaryResult(op ir.UnaryOp, t ir.Type) (ir.Type, bool) {
	s, ok := shapeOf(t)
	if !ok {
		return ir.Type{}, false
	}
	switch op {
	case ir.UnaryNot:
		return t, t == ir.Bool
	case ir.UnaryBitNot:
		return t, s.integral()
	default:
		return t, s.numeric()
	}
}

// constructible reports whether GLSL accepts T(args...) for a built-in
// numeric type T.
func constructible(target ir.Type, args []ir.Type) bool {
	t, ok := shapeOf(target)
	if !ok || len(args) == 0 {
		return false
	}
	if len(args) == 1 {
		a, ok := shapeOf(args[0])
		switch {
		case !ok:
			return false
		case a.isScalar():
			return true
		case t.isMatrix():
			return a.isMatrix()
		case t.isScalar():
			return false
		default:
			return a.isVector() && a.rows >= t.rows
		}
	}
	total := 0
	for _, arg := range args {
		a, ok := shapeOf(arg)
		if !ok || a.isMatrix() && !t.isMatrix() {
			return false
		}
		total += a.components()
	}
	return total == t.components()
}

func sameTypes(a, b []ir.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
