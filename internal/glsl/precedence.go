package glsl

import "shady/internal/ir"

// GLSL operator precedence levels, lowest number binding tightest.
const (
	precPrimary    = 0
	precPostfix    = 2
	precPrefix     = 3
	precTernary    = 15
	precAssign     = 16
	precComma      = 17
	precStatement  = precComma
	precInitialize = precAssign
	precArgument   = precAssign
)

var binaryPrec = [...]int{
	ir.BinMul:       4,
	ir.BinDiv:       4,
	ir.BinMod:       4,
	ir.BinAdd:       5,
	ir.BinSub:       5,
	ir.BinShl:       6,
	ir.BinShr:       6,
	ir.BinLt:        7,
	ir.BinLe:        7,
	ir.BinGt:        7,
	ir.BinGe:        7,
	ir.BinEq:        8,
	ir.BinNe:        8,
	ir.BinBitAnd:    9,
	ir.BinBitXor:    10,
	ir.BinBitOr:     11,
	ir.BinLogAnd:    12,
	ir.BinLogXor:    13,
	ir.BinLogOr:     14,
	ir.BinAssign:    precAssign,
	ir.BinAddAssign: precAssign,
	ir.BinSubAssign: precAssign,
	ir.BinMulAssign: precAssign,
	ir.BinDivAssign: precAssign,
	ir.BinModAssign: precAssign,
	ir.BinShlAssign: precAssign,
	ir.BinShrAssign: precAssign,
	ir.BinAndAssign: precAssign,
	ir.BinXorAssign: precAssign,
	ir.BinOrAssign:  precAssign,
	ir.BinComma:     precComma,
}

// BinaryPrecedence returns the level of a binary operator.
func BinaryPrecedence(op ir.BinaryOp) int {
	if int(op) < len(binaryPrec) {
		return binaryPrec[op]
	}
	return precComma
}

// UnaryPrecedence returns the level of a unary operator.
func UnaryPrecedence(op ir.UnaryOp) int {
	if op.IsPostfix() {
		return precPostfix
	}
	return precPrefix
}

// operandLimit is the loosest level an operand of an operator at level prec
// may have without parentheses. Equal levels are always parenthesized.
func operandLimit(prec int) int {
	return prec - 1
}
