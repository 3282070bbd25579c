package ir

// InstrKind enumerates instruction node shapes.
type InstrKind uint8

const (
	// InstrStatement wraps one top-level expression.
	InstrStatement InstrKind = iota
	InstrIf
	InstrWhile
	InstrFor
	InstrSwitch
	InstrCase
	InstrFunc
	InstrStruct
	InstrInterfaceBlock
	// InstrSpecial is a control keyword such as break or return.
	InstrSpecial
)

func (k InstrKind) String() string {
	switch k {
	case InstrStatement:
		return "Statement"
	case InstrIf:
		return "If"
	case InstrWhile:
		return "While"
	case InstrFor:
		return "For"
	case InstrSwitch:
		return "Switch"
	case InstrCase:
		return "Case"
	case InstrFunc:
		return "Func"
	case InstrStruct:
		return "Struct"
	case InstrInterfaceBlock:
		return "InterfaceBlock"
	case InstrSpecial:
		return "Special"
	default:
		return "Unknown"
	}
}

// Instr is one instruction node.
type Instr struct {
	Kind InstrKind
	Data InstrData
}

// InstrData is the kind-specific payload of an Instr.
type InstrData interface {
	instrData()
}

type StatementData struct {
	Expr ExprID
}

func (StatementData) instrData() {}

// IfCase is one arm of an if-chain; Cond is NoExprID for the final else.
type IfCase struct {
	Cond ExprID
	Body BlockID
}

// IfData is an if / else if / else chain. Enclosing links to the if-chain that
// was open when this one began.
type IfData struct {
	Cases     []IfCase
	Enclosing InstrID
}

func (*IfData) instrData() {}

type WhileData struct {
	Cond ExprID
	Body BlockID
}

func (WhileData) instrData() {}

// ForData owns a header block (kind BlockForArgs) and a body block.
type ForData struct {
	Args BlockID
	Body BlockID
}

func (ForData) instrData() {}

// SwitchData holds Case instructions in Body.
type SwitchData struct {
	Cond      ExprID
	Body      BlockID
	Enclosing InstrID
}

func (SwitchData) instrData() {}

// CaseData is a switch label; Label is NoExprID for default.
type CaseData struct {
	Label ExprID
	Body  BlockID
}

func (CaseData) instrData() {}

// Overload is one signature of a function. Args has kind BlockFuncArgs.
type Overload struct {
	Return     Type
	ParamCount int
	Args       BlockID
	Body       BlockID
}

// FuncData is a function declaration. The overload slice is sized once at
// construction.
type FuncData struct {
	Name      string
	ID        uint32
	Overloads []Overload
}

func (*FuncData) instrData() {}

// StructData lists member declarations in index order.
type StructData struct {
	Name    string
	Members []ExprID
}

func (StructData) instrData() {}

// InterfaceBlockData is a uniform/buffer/in/out block. Instance is empty for
// unnamed blocks, whose members are visible at global scope.
type InterfaceBlockData struct {
	Qualifiers []string
	BlockName  string
	Instance   string
	Array      int
	Members    []ExprID
}

func (InterfaceBlockData) instrData() {}

// SpecialTag enumerates control keywords.
type SpecialTag uint8

const (
	SpecialBreak SpecialTag = iota
	SpecialContinue
	SpecialDiscard
	SpecialReturn
	SpecialEmitVertex
	SpecialEndPrimitive
	SpecialBarrier
)

func (t SpecialTag) String() string {
	switch t {
	case SpecialBreak:
		return "break"
	case SpecialContinue:
		return "continue"
	case SpecialDiscard:
		return "discard"
	case SpecialReturn:
		return "return"
	case SpecialEmitVertex:
		return "EmitVertex"
	case SpecialEndPrimitive:
		return "EndPrimitive"
	case SpecialBarrier:
		return "barrier"
	default:
		return "unknown"
	}
}

// SpecialData is a keyword statement; Value is only used by return.
type SpecialData struct {
	Tag   SpecialTag
	Value ExprID
}

func (SpecialData) instrData() {}

// BlockKind distinguishes how pushed statements are interpreted.
type BlockKind uint8

const (
	BlockPlain BlockKind = iota
	BlockRoot
	// BlockFuncArgs reclassifies every declaration as a function argument.
	BlockFuncArgs
	// BlockForArgs reclassifies statements as loop header clauses.
	BlockForArgs
)

func (k BlockKind) String() string {
	switch k {
	case BlockPlain:
		return "plain"
	case BlockRoot:
		return "root"
	case BlockFuncArgs:
		return "func-args"
	case BlockForArgs:
		return "for-args"
	default:
		return "unknown"
	}
}

// Block is an ordered list of instructions with a link to its parent.
// For BlockForArgs, ForInit/ForCond/ForIncr hold the classified header.
type Block struct {
	Kind   BlockKind
	Parent BlockID
	Instrs []InstrID

	ForInit InstrID
	ForCond ExprID
	ForIncr []InstrID
}
