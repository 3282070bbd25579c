package build

import (
	"errors"
	"fmt"
	"strings"

	"shady/internal/ir"
	"shady/internal/trace"
)

// ErrUnbalanced is returned by Finish when constructs are still open.
var ErrUnbalanced = errors.New("unbalanced build")

// Options configure a Session.
type Options struct {
	// Name labels the program in trace output.
	Name    string
	Storage ir.StorageMode
	Hints   ir.Hints
	Tracer  trace.Tracer
	// ParentSpan is the trace span the session span nests under.
	ParentSpan uint64
}

// Session records one program. It is the explicit context every builder call
// goes through; independent sessions may be used from different goroutines,
// a single session may not.
type Session struct {
	prog    *ir.Program
	tracer  trace.Tracer
	span    *trace.Span
	current ir.BlockID
	frames  []frame

	suspended  int
	finished   bool
	nextFuncID uint32
}

// New opens a session with an empty program whose root block is current.
func New(opts Options) *Session {
	tr := opts.Tracer
	if tr == nil {
		tr = trace.Nop
	}
	name := opts.Name
	if name == "" {
		name = "program"
	}
	prog := ir.NewProgram(opts.Storage, opts.Hints)
	return &Session{
		prog:    prog,
		tracer:  tr,
		span:    trace.Begin(tr, trace.ScopeProgram, "build:"+name, opts.ParentSpan),
		current: prog.Root,
	}
}

// Program exposes the program under construction. Callers must treat it as
// read-only until Finish.
func (s *Session) Program() *ir.Program { return s.prog }

// Current returns the block statements are pushed into.
func (s *Session) Current() ir.BlockID { return s.current }

// Depth returns how many blocks enclose the current block.
func (s *Session) Depth() int {
	depth := 0
	for id := s.prog.Block(s.current).Parent; id.IsValid(); id = s.prog.Block(id).Parent {
		depth++
	}
	return depth
}

// Suspend turns every builder call into a no-op until the returned function
// runs. Host code uses it to evaluate a body once for its types without
// recording anything. Suspensions nest.
//
//	defer s.Suspend()()
func (s *Session) Suspend() (restore func()) {
	s.mustBeOpen()
	s.suspended++
	done := false
	return func() {
		if done {
			return
		}
		done = true
		s.suspended--
	}
}

// Suspended reports whether builder calls are currently ignored.
func (s *Session) Suspended() bool { return s.suspended > 0 }

// skip reports whether the call should do nothing. It panics on a finished
// session.
func (s *Session) skip() bool {
	s.mustBeOpen()
	return s.suspended > 0
}

func (s *Session) mustBeOpen() {
	if s == nil {
		panic("build: call without a session")
	}
	if s.finished {
		panic("build: session already finished")
	}
}

// Finish closes trailing if-chains and checks that every construct was
// closed. The program is returned even when the check fails so callers can
// inspect it.
func (s *Session) Finish() (*ir.Program, error) {
	s.mustBeOpen()
	if s.suspended > 0 {
		panic("build: Finish while suspended")
	}
	s.closeWaitingIfs()
	s.finished = true

	var err error
	if len(s.frames) > 0 || s.current != s.prog.Root {
		open := make([]string, 0, len(s.frames))
		for i := range s.frames {
			open = append(open, s.frames[i].kind.String())
		}
		err = fmt.Errorf("%w: open constructs [%s]", ErrUnbalanced, strings.Join(open, " > "))
	}
	detail := "ok"
	if err != nil {
		detail = err.Error()
	}
	s.span.WithExtra("exprs", fmt.Sprint(s.prog.Exprs.Len())).
		WithExtra("instrs", fmt.Sprint(s.prog.Instrs.Len())).
		End(detail)
	return s.prog, err
}

// push appends an instruction to the current block. Housekeeping runs first,
// in this order: if-chains still waiting for an else are closed, then
// function argument feeding and for-header classification apply.
func (s *Session) push(id ir.InstrID) {
	s.closeWaitingIfs()
	blk := s.prog.Block(s.current)
	switch blk.Kind {
	case ir.BlockFuncArgs:
		s.feedArgument(blk, id)
	case ir.BlockForArgs:
		s.classifyForClause(blk, id)
	default:
		blk.Instrs = append(blk.Instrs, id)
	}
}

// PushExpression records e as a statement of the current block.
func (s *Session) PushExpression(e ir.ExprID) ir.InstrID {
	if s.skip() {
		return ir.NoInstrID
	}
	s.mustOwn(e)
	id := s.prog.NewInstr(ir.Instr{Kind: ir.InstrStatement, Data: ir.StatementData{Expr: e}})
	s.push(id)
	return id
}

// AddSpecial records a control keyword. value is only meaningful for return.
func (s *Session) AddSpecial(tag ir.SpecialTag, value ir.ExprID) ir.InstrID {
	if s.skip() {
		return ir.NoInstrID
	}
	if value.IsValid() {
		if tag != ir.SpecialReturn {
			panic(fmt.Sprintf("build: %s takes no value", tag))
		}
		s.mustOwn(value)
	}
	id := s.prog.NewInstr(ir.Instr{Kind: ir.InstrSpecial, Data: ir.SpecialData{Tag: tag, Value: value}})
	s.push(id)
	return id
}

func (s *Session) mustOwn(ids ...ir.ExprID) {
	for _, id := range ids {
		if !id.IsValid() {
			panic("build: invalid expression handle")
		}
		if !s.prog.Owns(id) {
			panic(fmt.Sprintf("build: %s does not belong to this session", id))
		}
	}
}
