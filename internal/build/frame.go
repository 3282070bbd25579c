package build

import (
	"fmt"

	"shady/internal/ir"
	"shady/internal/trace"
)

type frameKind uint8

const (
	frameIf frameKind = iota
	frameFor
	frameWhile
	frameSwitch
	frameFunc
)

func (k frameKind) String() string {
	switch k {
	case frameIf:
		return "if"
	case frameFor:
		return "for"
	case frameWhile:
		return "while"
	case frameSwitch:
		return "switch"
	case frameFunc:
		return "func"
	default:
		return "unknown"
	}
}

type ifState uint8

const (
	ifInCase ifState = iota
	// ifWaitingElse: the last case is closed; an else may still attach.
	ifWaitingElse
	// ifClosed: the else case is closed; nothing may attach.
	ifClosed
)

// frame is one open construct. Fields past parent are used by the kinds
// noted next to them.
type frame struct {
	kind   frameKind
	instr  ir.InstrID
	parent ir.BlockID // block that was current when the construct began
	span   *trace.Span

	ifState ifState // if
	sawElse bool    // if

	body   ir.BlockID // switch
	inCase bool       // switch

	overload int  // func
	pushed   int  // func
	inArgs   bool // func
}

func (s *Session) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return &s.frames[len(s.frames)-1]
}

func (s *Session) pushFrame(f frame) *frame {
	f.span = trace.Begin(s.tracer, trace.ScopeConstruct, f.kind.String(), s.span.ID())
	s.frames = append(s.frames, f)
	return s.top()
}

func (s *Session) popFrame(detail string) {
	f := s.top()
	f.span.End(detail)
	s.frames = s.frames[:len(s.frames)-1]
}

// expect returns the top frame, panicking when it is not of kind k.
func (s *Session) expect(k frameKind, call string) *frame {
	f := s.top()
	if f == nil {
		panic(fmt.Sprintf("build: %s with no open %s", call, k))
	}
	if f.kind != k {
		panic(fmt.Sprintf("build: %s while %s is open", call, f.kind))
	}
	return f
}

// innermost returns the instruction of the closest open frame of kind k.
func (s *Session) innermost(k frameKind) ir.InstrID {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].kind == k {
			return s.frames[i].instr
		}
	}
	return ir.NoInstrID
}

// closeWaitingIfs pops if-chains whose cases are all closed. Any builder call
// other than ElseIf/Else/EndIf means the chain will not get another case.
func (s *Session) closeWaitingIfs() {
	for {
		f := s.top()
		if f == nil || f.kind != frameIf || f.ifState == ifInCase {
			return
		}
		s.popFrame(fmt.Sprintf("%d cases", len(s.ifData(f.instr).Cases)))
	}
}

func (s *Session) ifData(id ir.InstrID) *ir.IfData {
	return s.prog.Instr(id).Data.(*ir.IfData) //nolint:errcheck // built by BeginIf
}
