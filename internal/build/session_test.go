package build

import (
	"errors"
	"strings"
	"testing"

	"shady/internal/ir"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	return New(Options{Name: t.Name()})
}

func finish(t *testing.T, s *Session) *ir.Program {
	t.Helper()
	p, err := s.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return p
}

func mustPanic(t *testing.T, want string, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", want)
		}
		msg, _ := r.(string)
		if !strings.Contains(msg, want) {
			t.Fatalf("panic %q does not contain %q", msg, want)
		}
	}()
	f()
}

func assign(s *Session, decl ir.ExprID, v int64) {
	s.PushExpression(s.Binary(ir.Int, ir.BinAssign, s.Ref(decl), s.Int(v)))
}

func TestIfElseIfElseChain(t *testing.T) {
	s := newSession(t)
	x := s.Declare(ir.Int, "x", nil, 0)
	cond := s.Declare(ir.Bool, "cond", nil, 0)
	other := s.Declare(ir.Bool, "other", nil, 0)
	root := s.Current()

	ifID := s.BeginIf(s.Ref(cond))
	assign(s, x, 1)
	s.EndIf()
	s.ElseIf(s.Ref(other))
	assign(s, x, 2)
	s.EndIf()
	s.Else()
	assign(s, x, 3)
	s.EndIf()
	if s.Current() != root {
		t.Fatalf("current block not restored after else")
	}
	s.EndIf() // second call after the else changes nothing
	s.PushExpression(s.Ref(x))

	p := finish(t, s)
	rootBlk := p.Block(p.Root)
	ifCount := 0
	for _, in := range rootBlk.Instrs {
		if p.Instr(in).Kind == ir.InstrIf {
			ifCount++
		}
	}
	if ifCount != 1 {
		t.Fatalf("root holds %d if nodes, want 1", ifCount)
	}
	data := p.Instr(ifID).Data.(*ir.IfData)
	if len(data.Cases) != 3 {
		t.Fatalf("if has %d cases, want 3", len(data.Cases))
	}
	for i, c := range data.Cases {
		if p.Block(c.Body).Parent != root {
			t.Fatalf("case %d body parented under %s, want root", i, p.Block(c.Body).Parent)
		}
		if len(p.Block(c.Body).Instrs) != 1 {
			t.Fatalf("case %d holds %d statements", i, len(p.Block(c.Body).Instrs))
		}
	}
	if data.Cases[2].Cond.IsValid() {
		t.Fatalf("else case carries a condition")
	}
	// The trailing statement lands after the if, not inside a case.
	last := rootBlk.Instrs[len(rootBlk.Instrs)-1]
	if p.Instr(last).Kind != ir.InstrStatement {
		t.Fatalf("last root instruction is %s", p.Instr(last).Kind)
	}
}

func TestNestedIfClosesEnclosingCase(t *testing.T) {
	s := newSession(t)
	a := s.Declare(ir.Bool, "a", nil, 0)
	b := s.Declare(ir.Bool, "b", nil, 0)
	x := s.Declare(ir.Int, "x", nil, 0)

	outer := s.BeginIf(s.Ref(a))
	inner := s.BeginIf(s.Ref(b))
	assign(s, x, 1)
	s.EndIf() // inner case
	s.EndIf() // closes inner chain and the outer case
	s.Else()  // attaches to the outer chain
	assign(s, x, 2)
	s.EndIf()

	p := finish(t, s)
	od := p.Instr(outer).Data.(*ir.IfData)
	id := p.Instr(inner).Data.(*ir.IfData)
	if len(od.Cases) != 2 || len(id.Cases) != 1 {
		t.Fatalf("outer cases = %d, inner cases = %d; want 2, 1", len(od.Cases), len(id.Cases))
	}
	if id.Enclosing != outer {
		t.Fatalf("inner if not linked to outer chain")
	}
	if got := p.Block(od.Cases[0].Body).Instrs; len(got) != 1 || got[0] != inner {
		t.Fatalf("inner if not inside the first outer case")
	}
}

func TestEndIfAfterNestedElseClosesOuterCase(t *testing.T) {
	s := newSession(t)
	a := s.Declare(ir.Bool, "a", nil, 0)
	b := s.Declare(ir.Bool, "b", nil, 0)
	x := s.Declare(ir.Int, "x", nil, 0)
	root := s.Program().Root

	outer := s.BeginIf(s.Ref(a))
	outerCase := s.Current()
	inner := s.BeginIf(s.Ref(b))
	assign(s, x, 1)
	s.EndIf()
	s.Else()
	assign(s, x, 2)
	s.EndIf() // closes the else case
	if s.Current() != outerCase {
		t.Fatalf("current = %v after the else case, want outer case %v", s.Current(), outerCase)
	}
	s.EndIf() // pops the inner chain and closes the outer case
	if s.Current() != root {
		t.Fatalf("current = %v after the second EndIf, want root %v", s.Current(), root)
	}
	last := s.PushExpression(s.Binary(ir.Int, ir.BinAssign, s.Ref(x), s.Int(3)))
	mustPanic(t, "no open if", func() { s.EndIf() })

	p := finish(t, s)
	od := p.Instr(outer).Data.(*ir.IfData)
	id := p.Instr(inner).Data.(*ir.IfData)
	if len(od.Cases) != 1 || len(id.Cases) != 2 {
		t.Fatalf("outer cases = %d, inner cases = %d; want 1, 2", len(od.Cases), len(id.Cases))
	}
	if got := p.Block(od.Cases[0].Body).Instrs; len(got) != 1 || got[0] != inner {
		t.Fatalf("outer case holds %v, want only the inner if", got)
	}
	rootInstrs := p.Block(root).Instrs
	if rootInstrs[len(rootInstrs)-1] != last || rootInstrs[len(rootInstrs)-2] != outer {
		t.Fatalf("statement after the chains not placed after the outer if in root: %v", rootInstrs)
	}
}

func TestElseMisuse(t *testing.T) {
	s := newSession(t)
	c := s.Declare(ir.Bool, "c", nil, 0)
	s.BeginIf(s.Ref(c))
	mustPanic(t, "before EndIf", func() { s.Else() })
	s.EndIf()
	s.Else()
	s.EndIf()
	mustPanic(t, "after else", func() { s.ElseIf(s.Ref(c)) })

	s2 := newSession(t)
	mustPanic(t, "no open if", func() { s2.EndIf() })
}

func TestForHeaderClassification(t *testing.T) {
	s := newSession(t)
	forID := s.BeginFor()
	s.BeginForArgs()
	i := s.Declare(ir.Int, "i", nil, 0, s.Int(0))
	s.PushExpression(s.Binary(ir.Bool, ir.BinLt, s.Ref(i), s.Int(10)))
	s.PushExpression(s.Unary(ir.Int, ir.UnaryPostInc, s.Ref(i)))
	s.BeginForBody()
	s.AddSpecial(ir.SpecialBreak, ir.NoExprID)
	s.EndFor()

	p := finish(t, s)
	fd := p.Instr(forID).Data.(ir.ForData)
	args := p.Block(fd.Args)
	if !args.ForInit.IsValid() || !args.ForCond.IsValid() || len(args.ForIncr) != 1 {
		t.Fatalf("header classified as init=%v cond=%v incr=%d", args.ForInit, args.ForCond, len(args.ForIncr))
	}
	if p.Expr(args.ForCond).Kind != ir.ExprBinary {
		t.Fatalf("condition is %s", p.Expr(args.ForCond).Kind)
	}
	if len(p.Block(fd.Body).Instrs) != 1 {
		t.Fatalf("body holds %d instructions", len(p.Block(fd.Body).Instrs))
	}
}

func TestEmptyForHeader(t *testing.T) {
	s := newSession(t)
	forID := s.BeginFor()
	s.BeginForArgs()
	s.BeginForBody()
	s.EndFor()
	p := finish(t, s)
	args := p.Block(p.Instr(forID).Data.(ir.ForData).Args)
	if args.ForInit.IsValid() || args.ForCond.IsValid() || len(args.ForIncr) != 0 {
		t.Fatalf("empty header picked up clauses")
	}
}

func TestFunctionOverloadsFlipToBody(t *testing.T) {
	s := newSession(t)
	fn := s.BeginFunc("scale", []ir.Type{ir.Float, ir.T("vec2")}, []int{2, 1})
	a := s.Declare(ir.Float, "a", nil, 0)
	b := s.Declare(ir.Float, "b", nil, 0)
	s.AddSpecial(ir.SpecialReturn, s.Binary(ir.Float, ir.BinMul, s.Ref(a), s.Ref(b)))
	s.NextOverload()
	v := s.Declare(ir.T("vec2"), "v", nil, 0)
	s.AddSpecial(ir.SpecialReturn, s.Ref(v))
	s.EndFunc()

	p := finish(t, s)
	fd := p.Func(fn)
	if len(fd.Overloads) != 2 {
		t.Fatalf("overloads = %d", len(fd.Overloads))
	}
	wantArgs := []int{2, 1}
	for i, ov := range fd.Overloads {
		args := p.Block(ov.Args)
		if len(args.Instrs) != wantArgs[i] {
			t.Fatalf("overload %d has %d args, want %d", i, len(args.Instrs), wantArgs[i])
		}
		for _, in := range args.Instrs {
			d := p.Decl(p.Instr(in).Data.(ir.StatementData).Expr)
			if !d.Flags.Has(ir.DeclFunctionArgument) || d.Flags.Has(ir.DeclDeclared) {
				t.Fatalf("argument %q flags = %s", d.Name, d.Flags)
			}
		}
		if len(p.Block(ov.Body).Instrs) != 1 {
			t.Fatalf("overload %d body holds %d instructions", i, len(p.Block(ov.Body).Instrs))
		}
	}
}

func TestFunctionMisuse(t *testing.T) {
	mustPanic(t, "return types", func() {
		newSession(t).BeginFunc("f", []ir.Type{ir.Float}, []int{1, 2})
	})

	s := newSession(t)
	s.BeginFunc("f", []ir.Type{ir.Void, ir.Void}, []int{1, 0})
	mustPanic(t, "still expects 1 arguments", func() { s.NextOverload() })
	s.Declare(ir.Float, "a", nil, 0)
	mustPanic(t, "after 1 of 2 overloads", func() { s.EndFunc() })
	s.NextOverload()
	mustPanic(t, "declares only 2 overloads", func() { s.NextOverload() })
	s.EndFunc()
	finish(t, s)
}

func TestSwitchCases(t *testing.T) {
	s := newSession(t)
	sel := s.Declare(ir.Int, "sel", nil, 0)
	x := s.Declare(ir.Int, "x", nil, 0)
	sw := s.BeginSwitch(s.Ref(sel))
	s.AddCase(s.Int(0))
	assign(s, x, 1)
	s.AddSpecial(ir.SpecialBreak, ir.NoExprID)
	s.AddCase(ir.NoExprID)
	assign(s, x, 2)
	s.EndSwitch()
	assign(s, x, 3)

	p := finish(t, s)
	body := p.Block(p.Instr(sw).Data.(ir.SwitchData).Body)
	if len(body.Instrs) != 2 {
		t.Fatalf("switch body holds %d cases", len(body.Instrs))
	}
	def := p.Instr(body.Instrs[1]).Data.(ir.CaseData)
	if def.Label.IsValid() {
		t.Fatalf("default case has a label")
	}
	if n := len(p.Block(p.Instr(body.Instrs[0]).Data.(ir.CaseData).Body).Instrs); n != 2 {
		t.Fatalf("first case holds %d statements", n)
	}
}

func TestBalanceAcrossConstructs(t *testing.T) {
	s := newSession(t)
	c := s.Declare(ir.Bool, "c", nil, 0)
	start := s.Depth()

	s.BeginWhile(s.Ref(c))
	s.BeginIf(s.Ref(c))
	s.BeginFor()
	s.BeginForArgs()
	s.BeginForBody()
	s.BeginSwitch(s.Int(1))
	s.AddCase(s.Int(1))
	s.EndSwitch()
	s.EndFor()
	s.EndIf()
	s.EndWhile() // closes the waiting if-chain first

	if s.Depth() != start {
		t.Fatalf("depth = %d, want %d", s.Depth(), start)
	}
	finish(t, s)
}

func TestFinishReportsOpenConstructs(t *testing.T) {
	s := newSession(t)
	s.BeginWhile(s.Bool(true))
	s.BeginFor()
	_, err := s.Finish()
	if !errors.Is(err, ErrUnbalanced) {
		t.Fatalf("Finish error = %v, want ErrUnbalanced", err)
	}
	if !strings.Contains(err.Error(), "while > for") {
		t.Fatalf("error does not name open constructs: %v", err)
	}
	mustPanic(t, "already finished", func() { s.Bool(true) })
}

func TestSuspendRecordsNothing(t *testing.T) {
	s := newSession(t)
	before := s.Program().Exprs.Len()
	restore := s.Suspend()
	if id := s.Declare(ir.Float, "ghost", nil, 0, s.Float(1)); id.IsValid() {
		t.Fatalf("suspended Declare returned %s", id)
	}
	s.BeginIf(ir.NoExprID)
	s.EndIf()
	restore()
	restore() // idempotent
	if s.Suspended() {
		t.Fatalf("session still suspended")
	}
	if got := s.Program().Exprs.Len(); got != before {
		t.Fatalf("suspended calls allocated %d nodes", got-before)
	}
	p := finish(t, s)
	if len(p.Block(p.Root).Instrs) != 0 {
		t.Fatalf("suspended calls pushed statements")
	}
}

func TestUseAsTemporaryCollapses(t *testing.T) {
	s := newSession(t)
	one := s.Float(1)
	tmp := s.Construct(ir.Float, one)
	if got := s.UseAsTemporary(tmp); got != one {
		t.Fatalf("single same-typed argument not collapsed: %s", got)
	}
	if !s.Program().Decl(tmp).Moved {
		t.Fatalf("declaration not marked moved")
	}
	vec := s.Construct(ir.T("vec3"), s.Float(1))
	if got := s.UseAsTemporary(vec); got != vec {
		t.Fatalf("splat constructor must not collapse")
	}
}

func TestForeignHandlesRejected(t *testing.T) {
	a := newSession(t)
	b := newSession(t)
	lit := a.Float(1)
	mustPanic(t, "does not belong", func() { b.PushExpression(lit) })
}

func TestStaticDeclarations(t *testing.T) {
	coord := DeclareStatic(ir.T("vec4"), "gl_FragCoord", ir.DeclBuiltin)
	s := newSession(t)
	ref := s.UseAsTemporary(coord)
	if s.Program().Expr(ref).Kind != ir.ExprVarRef {
		t.Fatalf("static declaration not referenced by name")
	}
	finish(t, s)
}
