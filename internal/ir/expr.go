package ir

// ExprKind enumerates expression node shapes.
type ExprKind uint8

const (
	// ExprLiteral is a scalar constant.
	ExprLiteral ExprKind = iota
	// ExprVarRef names a declaration by handle.
	ExprVarRef
	// ExprUnary applies a prefix or postfix operator.
	ExprUnary
	// ExprBinary applies an infix operator, assignments included.
	ExprBinary
	// ExprTernary is cond ? a : b.
	ExprTernary
	// ExprDecl declares a value; named, anonymous or external.
	ExprDecl
	// ExprIndex is base[index].
	ExprIndex
	// ExprMember is base.member of a declared struct.
	ExprMember
	// ExprSwizzle is base.xyzw.
	ExprSwizzle
	// ExprBuiltinCall calls a target-language builtin function.
	ExprBuiltinCall
	// ExprUserCall calls a function declared in the program.
	ExprUserCall
	// ExprConvert converts a value between types.
	ExprConvert
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteral:
		return "Literal"
	case ExprVarRef:
		return "VarRef"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprTernary:
		return "Ternary"
	case ExprDecl:
		return "Decl"
	case ExprIndex:
		return "Index"
	case ExprMember:
		return "Member"
	case ExprSwizzle:
		return "Swizzle"
	case ExprBuiltinCall:
		return "BuiltinCall"
	case ExprUserCall:
		return "UserCall"
	case ExprConvert:
		return "Convert"
	default:
		return "Unknown"
	}
}

// Expr is one expression node. Type is the value type the node produces.
type Expr struct {
	Kind ExprKind
	Type Type
	Data ExprData
}

// ExprData is the kind-specific payload of an Expr.
type ExprData interface {
	exprData()
}

// LiteralKind enumerates literal value kinds.
type LiteralKind uint8

const (
	LitBool LiteralKind = iota
	LitInt
	LitUint
	LitFloat
	LitDouble
)

// LiteralData holds a scalar. Only the field matching Kind is meaningful.
type LiteralData struct {
	Kind  LiteralKind
	Bool  bool
	Int   int64
	Uint  uint64
	Float float64
}

func (LiteralData) exprData() {}

// VarRefData refers to a declaration node.
type VarRefData struct {
	Decl ExprID
}

func (VarRefData) exprData() {}

// UnaryOp enumerates unary operators.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryPlus
	UnaryNot
	UnaryBitNot
	UnaryPreInc
	UnaryPreDec
	UnaryPostInc
	UnaryPostDec
)

// IsPostfix reports whether the operator is written after its operand.
func (op UnaryOp) IsPostfix() bool { return op == UnaryPostInc || op == UnaryPostDec }

// Mutates reports whether the operator writes its operand.
func (op UnaryOp) Mutates() bool {
	return op == UnaryPreInc || op == UnaryPreDec || op == UnaryPostInc || op == UnaryPostDec
}

func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryPlus:
		return "+"
	case UnaryNot:
		return "!"
	case UnaryBitNot:
		return "~"
	case UnaryPreInc, UnaryPostInc:
		return "++"
	case UnaryPreDec, UnaryPostDec:
		return "--"
	default:
		return "?"
	}
}

type UnaryData struct {
	Op      UnaryOp
	Operand ExprID
}

func (UnaryData) exprData() {}

// BinaryOp enumerates infix operators.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinShl
	BinShr
	BinLt
	BinLe
	BinGt
	BinGe
	BinEq
	BinNe
	BinBitAnd
	BinBitXor
	BinBitOr
	BinLogAnd
	BinLogXor
	BinLogOr
	BinAssign
	BinAddAssign
	BinSubAssign
	BinMulAssign
	BinDivAssign
	BinModAssign
	BinShlAssign
	BinShrAssign
	BinAndAssign
	BinXorAssign
	BinOrAssign
	BinComma
)

var binarySymbols = [...]string{
	BinAdd:       "+",
	BinSub:       "-",
	BinMul:       "*",
	BinDiv:       "/",
	BinMod:       "%",
	BinShl:       "<<",
	BinShr:       ">>",
	BinLt:        "<",
	BinLe:        "<=",
	BinGt:        ">",
	BinGe:        ">=",
	BinEq:        "==",
	BinNe:        "!=",
	BinBitAnd:    "&",
	BinBitXor:    "^",
	BinBitOr:     "|",
	BinLogAnd:    "&&",
	BinLogXor:    "^^",
	BinLogOr:     "||",
	BinAssign:    "=",
	BinAddAssign: "+=",
	BinSubAssign: "-=",
	BinMulAssign: "*=",
	BinDivAssign: "/=",
	BinModAssign: "%=",
	BinShlAssign: "<<=",
	BinShrAssign: ">>=",
	BinAndAssign: "&=",
	BinXorAssign: "^=",
	BinOrAssign:  "|=",
	BinComma:     ",",
}

func (op BinaryOp) String() string {
	if int(op) < len(binarySymbols) {
		return binarySymbols[op]
	}
	return "?"
}

// IsAssign reports whether the operator writes its left operand.
func (op BinaryOp) IsAssign() bool { return op >= BinAssign && op <= BinOrAssign }

// IsComparison reports whether the operator yields bool.
func (op BinaryOp) IsComparison() bool { return op >= BinLt && op <= BinNe }

// IsLogical reports whether the operator takes and yields bool.
func (op BinaryOp) IsLogical() bool { return op >= BinLogAnd && op <= BinLogOr }

type BinaryData struct {
	Op  BinaryOp
	Lhs ExprID
	Rhs ExprID
}

func (BinaryData) exprData() {}

type TernaryData struct {
	Cond ExprID
	A    ExprID
	B    ExprID
}

func (TernaryData) exprData() {}

// DeclFlags describe how a declaration was created. Temporary, Unused and
// inferred Const are not set by the builder; the liveness pass reports them.
type DeclFlags uint16

const (
	DeclDeclared DeclFlags = 1 << iota
	DeclInitialized
	DeclTemporary
	DeclUnused
	DeclFunctionArgument
	DeclUntracked
	DeclConst
	DeclTracked
	DeclBuiltin
	DeclStructMember
)

func (f DeclFlags) Has(mask DeclFlags) bool { return f&mask != 0 }

var declFlagNames = [...]string{
	"declared", "initialized", "temporary", "unused", "arg",
	"untracked", "const", "tracked", "builtin", "member",
}

func (f DeclFlags) String() string {
	if f == 0 {
		return "none"
	}
	out := ""
	for i, name := range declFlagNames {
		if f&(1<<i) == 0 {
			continue
		}
		if out != "" {
			out += "|"
		}
		out += name
	}
	return out
}

// DeclData is a declaration. Args are constructor arguments; an Initialized
// declaration with no Args is default-constructed.
type DeclData struct {
	Name       string
	Flags      DeclFlags
	Qualifiers []string
	Args       []ExprID
	// Moved is set when the value was consumed by copy as an anonymous
	// intermediate (builder UseAsTemporary).
	Moved bool
}

func (*DeclData) exprData() {}

type IndexData struct {
	Base  ExprID
	Index ExprID
}

func (IndexData) exprData() {}

// MemberData accesses member Member of the struct declared by Struct.
type MemberData struct {
	Struct InstrID
	Member int
	Base   ExprID
}

func (MemberData) exprData() {}

// SwizzleData selects vector components, 0..3 standing for x, y, z, w.
type SwizzleData struct {
	Components []uint8
	Base       ExprID
}

func (SwizzleData) exprData() {}

type BuiltinCallData struct {
	Func string
	Args []ExprID
}

func (BuiltinCallData) exprData() {}

type UserCallData struct {
	Func InstrID
	Args []ExprID
}

func (UserCallData) exprData() {}

type ConvertData struct {
	From    Type
	To      Type
	Operand ExprID
}

func (ConvertData) exprData() {}

// Children returns the operand handles of e in source order. Struct member
// lists and function references are not operands.
func (e *Expr) Children() []ExprID {
	switch d := e.Data.(type) {
	case UnaryData:
		return []ExprID{d.Operand}
	case BinaryData:
		return []ExprID{d.Lhs, d.Rhs}
	case TernaryData:
		return []ExprID{d.Cond, d.A, d.B}
	case *DeclData:
		return d.Args
	case IndexData:
		return []ExprID{d.Base, d.Index}
	case MemberData:
		return []ExprID{d.Base}
	case SwizzleData:
		return []ExprID{d.Base}
	case BuiltinCallData:
		return d.Args
	case UserCallData:
		return d.Args
	case ConvertData:
		return []ExprID{d.Operand}
	default:
		return nil
	}
}

// Decl returns the declaration payload when e is a declaration.
func (e *Expr) Decl() (*DeclData, bool) {
	if e == nil || e.Kind != ExprDecl {
		return nil, false
	}
	d, ok := e.Data.(*DeclData)
	return d, ok
}
