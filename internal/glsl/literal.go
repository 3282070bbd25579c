package glsl

import (
	"math"
	"strconv"
	"strings"

	"shady/internal/ir"
)

// formatLiteral renders a literal and reports its precedence level; negative
// numbers bind like a prefix minus.
func formatLiteral(lit ir.LiteralData) (string, int) {
	switch lit.Kind {
	case ir.LitBool:
		return strconv.FormatBool(lit.Bool), precPrimary
	case ir.LitInt:
		return strconv.FormatInt(lit.Int, 10), signPrec(lit.Int < 0)
	case ir.LitUint:
		return strconv.FormatUint(lit.Uint, 10) + "u", precPrimary
	case ir.LitFloat:
		return formatFloat(lit.Float, 32, "")
	case ir.LitDouble:
		return formatFloat(lit.Float, 64, "lf")
	default:
		return "0", precPrimary
	}
}

func formatFloat(v float64, bits int, suffix string) (string, int) {
	switch {
	case math.IsNaN(v):
		return "(0.0 / 0.0)", precPrimary
	case math.IsInf(v, 1):
		return "(1.0 / 0.0)", precPrimary
	case math.IsInf(v, -1):
		return "(-1.0 / 0.0)", precPrimary
	}
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s + suffix, signPrec(math.Signbit(v))
}

func signPrec(negative bool) int {
	if negative {
		return precPrefix
	}
	return precPrimary
}
