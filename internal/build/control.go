package build

import (
	"fmt"

	"shady/internal/ir"
)

// BeginIf opens an if-chain with its first case and makes the case body
// current.
func (s *Session) BeginIf(cond ir.ExprID) ir.InstrID {
	if s.skip() {
		return ir.NoInstrID
	}
	s.mustOwn(cond)
	s.closeWaitingIfs()
	data := &ir.IfData{Enclosing: s.innermost(frameIf)}
	id := s.prog.NewInstr(ir.Instr{Kind: ir.InstrIf, Data: data})
	s.push(id)

	body := s.prog.NewBlock(ir.BlockPlain, s.current)
	data.Cases = append(data.Cases, ir.IfCase{Cond: cond, Body: body})
	s.pushFrame(frame{kind: frameIf, instr: id, parent: s.current})
	s.current = body
	return id
}

// ElseIf appends a case to the if-chain whose last case was just closed.
func (s *Session) ElseIf(cond ir.ExprID) {
	if s.skip() {
		return
	}
	s.mustOwn(cond)
	s.appendCase(cond, "ElseIf")
}

// Else appends the final case. No case may follow it.
func (s *Session) Else() {
	if s.skip() {
		return
	}
	f := s.appendCase(ir.NoExprID, "Else")
	f.sawElse = true
}

func (s *Session) appendCase(cond ir.ExprID, call string) *frame {
	f := s.expect(frameIf, call)
	switch f.ifState {
	case ifInCase:
		panic(fmt.Sprintf("build: %s before EndIf closed the previous case", call))
	case ifClosed:
		panic(fmt.Sprintf("build: %s after else", call))
	}
	data := s.ifData(f.instr)
	body := s.prog.NewBlock(ir.BlockPlain, f.parent)
	data.Cases = append(data.Cases, ir.IfCase{Cond: cond, Body: body})
	f.ifState = ifInCase
	s.current = body
	return f
}

// EndIf closes the open case of the innermost if-chain. The chain itself
// stays open for an else until another call arrives. Called on a chain with
// no open case, EndIf closes that chain and, if the chain below has an open
// case, closes that case as well. After an else the chain has no case left
// to open, so at the top level this second call only pops the chain; nested
// in an open case it still closes the enclosing case and the next statement
// lands in the block holding the enclosing chain.
func (s *Session) EndIf() {
	if s.skip() {
		return
	}
	f := s.expect(frameIf, "EndIf")
	if f.ifState == ifInCase {
		s.current = f.parent
		if f.sawElse {
			f.ifState = ifClosed
		} else {
			f.ifState = ifWaitingElse
		}
		return
	}
	s.popFrame(fmt.Sprintf("%d cases", len(s.ifData(f.instr).Cases)))
	if below := s.top(); below != nil && below.kind == frameIf && below.ifState == ifInCase {
		s.EndIf()
	}
}

// BeginFor opens a for loop. The header and body blocks are made current by
// BeginForArgs and BeginForBody.
func (s *Session) BeginFor() ir.InstrID {
	if s.skip() {
		return ir.NoInstrID
	}
	s.closeWaitingIfs()
	args := s.prog.NewBlock(ir.BlockForArgs, s.current)
	body := s.prog.NewBlock(ir.BlockPlain, args)
	id := s.prog.NewInstr(ir.Instr{Kind: ir.InstrFor, Data: ir.ForData{Args: args, Body: body}})
	s.push(id)
	s.pushFrame(frame{kind: frameFor, instr: id, parent: s.current})
	return id
}

// BeginForArgs makes the loop header current.
func (s *Session) BeginForArgs() {
	if s.skip() {
		return
	}
	s.closeWaitingIfs()
	f := s.expect(frameFor, "BeginForArgs")
	s.current = s.prog.Instr(f.instr).Data.(ir.ForData).Args //nolint:errcheck // built by BeginFor
}

// BeginForBody makes the loop body current.
func (s *Session) BeginForBody() {
	if s.skip() {
		return
	}
	s.closeWaitingIfs()
	f := s.expect(frameFor, "BeginForBody")
	s.current = s.prog.Instr(f.instr).Data.(ir.ForData).Body //nolint:errcheck // built by BeginFor
}

// EndFor closes the innermost for loop.
func (s *Session) EndFor() {
	if s.skip() {
		return
	}
	s.closeWaitingIfs()
	f := s.expect(frameFor, "EndFor")
	s.current = f.parent
	s.popFrame("")
}

// classifyForClause files a header statement: the first declaration with an
// initializer is the init clause, the next statement is the condition, the
// rest are increments.
func (s *Session) classifyForClause(blk *ir.Block, id ir.InstrID) {
	in := s.prog.Instr(id)
	st, ok := in.Data.(ir.StatementData)
	if !ok {
		panic(fmt.Sprintf("build: %s pushed into a for header", in.Kind))
	}
	blk.Instrs = append(blk.Instrs, id)
	switch {
	case !blk.ForInit.IsValid() && !blk.ForCond.IsValid() && s.isInitializedDecl(st.Expr):
		blk.ForInit = id
	case !blk.ForCond.IsValid():
		blk.ForCond = st.Expr
	default:
		blk.ForIncr = append(blk.ForIncr, id)
	}
}

func (s *Session) isInitializedDecl(e ir.ExprID) bool {
	d := s.prog.Decl(e)
	return d != nil && d.Flags.Has(ir.DeclInitialized)
}

// BeginWhile opens a while loop and makes its body current.
func (s *Session) BeginWhile(cond ir.ExprID) ir.InstrID {
	if s.skip() {
		return ir.NoInstrID
	}
	s.mustOwn(cond)
	s.closeWaitingIfs()
	body := s.prog.NewBlock(ir.BlockPlain, s.current)
	id := s.prog.NewInstr(ir.Instr{Kind: ir.InstrWhile, Data: ir.WhileData{Cond: cond, Body: body}})
	s.push(id)
	s.pushFrame(frame{kind: frameWhile, instr: id, parent: s.current})
	s.current = body
	return id
}

// EndWhile closes the innermost while loop.
func (s *Session) EndWhile() {
	if s.skip() {
		return
	}
	s.closeWaitingIfs()
	f := s.expect(frameWhile, "EndWhile")
	s.current = f.parent
	s.popFrame("")
}

// BeginSwitch opens a switch and makes its body current.
func (s *Session) BeginSwitch(cond ir.ExprID) ir.InstrID {
	if s.skip() {
		return ir.NoInstrID
	}
	s.mustOwn(cond)
	s.closeWaitingIfs()
	body := s.prog.NewBlock(ir.BlockPlain, s.current)
	id := s.prog.NewInstr(ir.Instr{Kind: ir.InstrSwitch, Data: ir.SwitchData{
		Cond:      cond,
		Body:      body,
		Enclosing: s.innermost(frameSwitch),
	}})
	s.push(id)
	s.pushFrame(frame{kind: frameSwitch, instr: id, parent: s.current, body: body})
	s.current = body
	return id
}

// AddCase closes the previous case, if any, and opens a new one. An invalid
// label opens the default case.
func (s *Session) AddCase(label ir.ExprID) ir.InstrID {
	if s.skip() {
		return ir.NoInstrID
	}
	if label.IsValid() {
		s.mustOwn(label)
	}
	s.closeWaitingIfs()
	f := s.expect(frameSwitch, "AddCase")
	s.current = f.body
	caseBody := s.prog.NewBlock(ir.BlockPlain, f.body)
	id := s.prog.NewInstr(ir.Instr{Kind: ir.InstrCase, Data: ir.CaseData{Label: label, Body: caseBody}})
	s.push(id)
	f.inCase = true
	s.current = caseBody
	return id
}

// EndSwitch closes the open case and the innermost switch.
func (s *Session) EndSwitch() {
	if s.skip() {
		return
	}
	s.closeWaitingIfs()
	f := s.expect(frameSwitch, "EndSwitch")
	s.current = f.parent
	s.popFrame("")
}

// BeginFunc declares a function with one overload per entry of returns;
// paramCounts gives the parameter count of each overload. The first
// overload's argument block becomes current. Each declaration pushed there
// becomes a parameter; once the count is reached the body becomes current.
func (s *Session) BeginFunc(name string, returns []ir.Type, paramCounts []int) ir.InstrID {
	if s.skip() {
		return ir.NoInstrID
	}
	if len(returns) == 0 {
		panic(fmt.Sprintf("build: function %q has no overloads", name))
	}
	if len(returns) != len(paramCounts) {
		panic(fmt.Sprintf("build: function %q has %d return types for %d overloads", name, len(returns), len(paramCounts)))
	}
	s.closeWaitingIfs()

	fn := &ir.FuncData{Name: name, ID: s.nextFuncID, Overloads: make([]ir.Overload, len(returns))}
	s.nextFuncID++
	for i := range fn.Overloads {
		if paramCounts[i] < 0 {
			panic(fmt.Sprintf("build: function %q overload %d has negative parameter count", name, i))
		}
		args := s.prog.NewBlock(ir.BlockFuncArgs, s.current)
		fn.Overloads[i] = ir.Overload{
			Return:     returns[i],
			ParamCount: paramCounts[i],
			Args:       args,
			Body:       s.prog.NewBlock(ir.BlockPlain, args),
		}
	}
	id := s.prog.NewInstr(ir.Instr{Kind: ir.InstrFunc, Data: fn})
	s.push(id)
	f := s.pushFrame(frame{kind: frameFunc, instr: id, parent: s.current})
	s.openOverload(f)
	return id
}

// NextOverload finishes the current overload and opens the next one.
func (s *Session) NextOverload() {
	if s.skip() {
		return
	}
	s.closeWaitingIfs()
	f := s.expect(frameFunc, "NextOverload")
	fn := s.prog.Func(f.instr)
	if f.inArgs {
		panic(fmt.Sprintf("build: overload %d of %q still expects %d arguments", f.overload, fn.Name, fn.Overloads[f.overload].ParamCount-f.pushed))
	}
	if f.overload+1 >= len(fn.Overloads) {
		panic(fmt.Sprintf("build: function %q declares only %d overloads", fn.Name, len(fn.Overloads)))
	}
	f.overload++
	s.openOverload(f)
}

// EndFunc closes the function and restores the block it was declared in.
func (s *Session) EndFunc() {
	if s.skip() {
		return
	}
	s.closeWaitingIfs()
	f := s.expect(frameFunc, "EndFunc")
	fn := s.prog.Func(f.instr)
	if f.inArgs {
		panic(fmt.Sprintf("build: overload %d of %q still expects %d arguments", f.overload, fn.Name, fn.Overloads[f.overload].ParamCount-f.pushed))
	}
	if f.overload != len(fn.Overloads)-1 {
		panic(fmt.Sprintf("build: function %q ended after %d of %d overloads", fn.Name, f.overload+1, len(fn.Overloads)))
	}
	s.current = f.parent
	s.popFrame(fn.Name)
}

func (s *Session) openOverload(f *frame) {
	ov := s.prog.Func(f.instr).Overloads[f.overload]
	f.pushed = 0
	f.inArgs = ov.ParamCount > 0
	if f.inArgs {
		s.current = ov.Args
	} else {
		s.current = ov.Body
	}
}

// feedArgument records a parameter declaration and switches to the body once
// the overload has all of its parameters.
func (s *Session) feedArgument(blk *ir.Block, id ir.InstrID) {
	f := s.expect(frameFunc, "argument push")
	in := s.prog.Instr(id)
	st, ok := in.Data.(ir.StatementData)
	var d *ir.DeclData
	if ok {
		d = s.prog.Decl(st.Expr)
	}
	if d == nil {
		panic(fmt.Sprintf("build: only declarations may be pushed as function arguments, got %s", in.Kind))
	}
	d.Flags = ir.DeclFunctionArgument | d.Flags&ir.DeclConst
	blk.Instrs = append(blk.Instrs, id)
	f.pushed++

	ov := s.prog.Func(f.instr).Overloads[f.overload]
	if f.pushed == ov.ParamCount {
		f.inArgs = false
		s.current = ov.Body
	}
}
