package ir

import (
	"fmt"
	"sync/atomic"
)

// Hints size the initial stores of a Program.
type Hints struct{ Exprs, Instrs, Blocks uint }

var lastGeneration atomic.Uint32

func init() {
	lastGeneration.Store(uint32(StaticGeneration))
}

// NextGeneration hands out a fresh session generation.
func NextGeneration() Generation {
	return Generation(lastGeneration.Add(1))
}

// Program owns every node of one build session. Handles from another
// generation are rejected; static-pool expression handles resolve through
// the process-wide static pool.
type Program struct {
	Gen    Generation
	Mode   StorageMode
	Root   BlockID
	Exprs  Store[Expr]
	Instrs Store[Instr]
	Blocks Store[Block]
}

// NewProgram creates an empty program with a fresh generation and a root
// block.
func NewProgram(mode StorageMode, hints Hints) *Program {
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.Instrs == 0 {
		hints.Instrs = 1 << 7
	}
	if hints.Blocks == 0 {
		hints.Blocks = 1 << 6
	}
	p := &Program{
		Gen:    NextGeneration(),
		Mode:   mode,
		Exprs:  NewStore[Expr](mode, hints.Exprs),
		Instrs: NewStore[Instr](mode, hints.Instrs),
		Blocks: NewStore[Block](mode, hints.Blocks),
	}
	p.Root = p.NewBlock(BlockRoot, NoBlockID)
	return p
}

// NewExpr allocates an expression node.
func (p *Program) NewExpr(e Expr) ExprID {
	return MakeExprID(p.Gen, p.Exprs.Allocate(e))
}

// NewInstr allocates an instruction node.
func (p *Program) NewInstr(in Instr) InstrID {
	return MakeInstrID(p.Gen, p.Instrs.Allocate(in))
}

// NewBlock allocates an empty block.
func (p *Program) NewBlock(kind BlockKind, parent BlockID) BlockID {
	return MakeBlockID(p.Gen, p.Blocks.Allocate(Block{Kind: kind, Parent: parent}))
}

// Expr dereferences an expression handle. A handle that does not resolve is a
// programmer error and panics.
func (p *Program) Expr(id ExprID) *Expr {
	var e *Expr
	switch id.Gen() {
	case p.Gen:
		e = p.Exprs.Get(id.Index())
	case StaticGeneration:
		e = Static.Get(id)
	default:
		panic(fmt.Sprintf("ir: %s does not belong to program generation %d", id, p.Gen))
	}
	if e == nil {
		panic(fmt.Sprintf("ir: dangling %s", id))
	}
	return e
}

// Instr dereferences an instruction handle.
func (p *Program) Instr(id InstrID) *Instr {
	if id.Gen() != p.Gen {
		panic(fmt.Sprintf("ir: %s does not belong to program generation %d", id, p.Gen))
	}
	in := p.Instrs.Get(id.Index())
	if in == nil {
		panic(fmt.Sprintf("ir: dangling %s", id))
	}
	return in
}

// Block dereferences a block handle.
func (p *Program) Block(id BlockID) *Block {
	if id.Gen() != p.Gen {
		panic(fmt.Sprintf("ir: %s does not belong to program generation %d", id, p.Gen))
	}
	b := p.Blocks.Get(id.Index())
	if b == nil {
		panic(fmt.Sprintf("ir: dangling %s", id))
	}
	return b
}

// Owns reports whether the handle resolves in this program without panicking.
func (p *Program) Owns(id ExprID) bool {
	switch id.Gen() {
	case p.Gen:
		return p.Exprs.Get(id.Index()) != nil
	case StaticGeneration:
		return Static.Get(id) != nil
	default:
		return false
	}
}

// Decl returns the declaration payload of id, or nil when id is not a
// declaration.
func (p *Program) Decl(id ExprID) *DeclData {
	d, _ := p.Expr(id).Decl()
	return d
}

// Func returns the payload of a function instruction.
func (p *Program) Func(id InstrID) *FuncData {
	in := p.Instr(id)
	fn, ok := in.Data.(*FuncData)
	if !ok {
		panic(fmt.Sprintf("ir: %s is %s, not a function", id, in.Kind))
	}
	return fn
}

// Struct returns the payload of a struct instruction.
func (p *Program) Struct(id InstrID) StructData {
	in := p.Instr(id)
	st, ok := in.Data.(StructData)
	if !ok {
		panic(fmt.Sprintf("ir: %s is %s, not a struct", id, in.Kind))
	}
	return st
}
