package ir

import "fmt"

// Handles pack a generation in the high 32 bits and a 1-based store index in
// the low 32 bits. The zero value is the invalid handle in every family.
type (
	ExprID  uint64
	InstrID uint64
	BlockID uint64
)

const (
	NoExprID  ExprID  = 0
	NoInstrID InstrID = 0
	NoBlockID BlockID = 0
)

// Pool tells which arena a handle was allocated from.
type Pool uint8

const (
	PoolNone Pool = iota
	// PoolStatic is the process-lifetime pool for declarations made outside
	// any build session.
	PoolStatic
	PoolSession
)

func (p Pool) String() string {
	switch p {
	case PoolStatic:
		return "static"
	case PoolSession:
		return "session"
	default:
		return "none"
	}
}

// Generation identifies the arena a handle belongs to.
type Generation uint32

const (
	NoGeneration     Generation = 0
	StaticGeneration Generation = 1
)

const maxIndex = 1<<32 - 1

func pack(gen Generation, index uint32) uint64 {
	return uint64(gen)<<32 | uint64(index)
}

func MakeExprID(gen Generation, index uint32) ExprID   { return ExprID(pack(gen, index)) }
func MakeInstrID(gen Generation, index uint32) InstrID { return InstrID(pack(gen, index)) }
func MakeBlockID(gen Generation, index uint32) BlockID { return BlockID(pack(gen, index)) }

func (id ExprID) IsValid() bool  { return id != NoExprID }
func (id InstrID) IsValid() bool { return id != NoInstrID }
func (id BlockID) IsValid() bool { return id != NoBlockID }

func (id ExprID) Gen() Generation  { return Generation(uint64(id) >> 32) }
func (id InstrID) Gen() Generation { return Generation(uint64(id) >> 32) }
func (id BlockID) Gen() Generation { return Generation(uint64(id) >> 32) }

func (id ExprID) Index() uint32  { return uint32(id) }
func (id InstrID) Index() uint32 { return uint32(id) }
func (id BlockID) Index() uint32 { return uint32(id) }

// Pool reports the pool discriminator of the handle.
func (id ExprID) Pool() Pool { return poolOf(id.Gen()) }

func poolOf(gen Generation) Pool {
	switch gen {
	case NoGeneration:
		return PoolNone
	case StaticGeneration:
		return PoolStatic
	default:
		return PoolSession
	}
}

func (id ExprID) String() string {
	if !id.IsValid() {
		return "expr(none)"
	}
	return fmt.Sprintf("expr(%d:%d)", id.Gen(), id.Index())
}

func (id InstrID) String() string {
	if !id.IsValid() {
		return "instr(none)"
	}
	return fmt.Sprintf("instr(%d:%d)", id.Gen(), id.Index())
}

func (id BlockID) String() string {
	if !id.IsValid() {
		return "block(none)"
	}
	return fmt.Sprintf("block(%d:%d)", id.Gen(), id.Index())
}
