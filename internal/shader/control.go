package shader

import (
	"fortio.org/safecast"

	"shady/internal/ir"
)

// checkCond validates a branch or loop condition.
func (b *Builder) checkCond(stmt string, cond Value) bool {
	if !cond.Valid() {
		return false
	}
	if cond.typ != ir.Bool {
		b.fail(&OverloadError{Kind: KindStatement, Func: stmt, Args: []ir.Type{cond.typ}})
		return false
	}
	return true
}

type chainState uint8

const (
	chainDead chainState = iota
	chainInCase
	chainWaiting
	chainClosed
)

// IfChain is an if / else if / else statement under construction. The chain
// keeps its last case open until ElseIf, Else or End, so End must be called
// unless the chain finished with Else.
type IfChain struct {
	b     *Builder
	state chainState
}

// If opens a chain whose first case runs then.
func (b *Builder) If(cond Value, then func()) *IfChain {
	if !b.checkCond("if", cond) {
		return &IfChain{b: b}
	}
	b.s.BeginIf(cond.operand())
	then()
	return &IfChain{b: b, state: chainInCase}
}

// ElseIf adds a case. cond is evaluated while the previous case is still
// open so that values it constructs do not end the chain.
func (c *IfChain) ElseIf(cond func() Value, then func()) *IfChain {
	if c.state != chainInCase {
		if c.state != chainDead {
			c.b.fail(&OverloadError{Kind: KindStatement, Func: "else if after else"})
			c.state = chainDead
		}
		return c
	}
	v := cond()
	if !c.b.checkCond("else if", v) {
		c.End()
		c.state = chainDead
		return c
	}
	op := v.operand()
	c.b.s.EndIf()
	c.b.s.ElseIf(op)
	then()
	return c
}

// Else adds the final case and closes the chain.
func (c *IfChain) Else(then func()) {
	if c.state != chainInCase {
		if c.state != chainDead {
			c.b.fail(&OverloadError{Kind: KindStatement, Func: "else after else"})
		}
		return
	}
	c.b.s.EndIf()
	c.b.s.Else()
	then()
	c.b.s.EndIf()
	c.state = chainClosed
}

// End closes the open case. Calling it after Else does nothing.
func (c *IfChain) End() {
	if c.state != chainInCase {
		return
	}
	c.b.s.EndIf()
	c.state = chainWaiting
}

// While records while (cond) { body }.
func (b *Builder) While(cond Value, body func()) {
	if !b.checkCond("while", cond) {
		return
	}
	b.s.BeginWhile(cond.operand())
	body()
	b.s.EndWhile()
}

// For records a counted loop: for (int name = from; name < to; name++).
// from and to must both be int or both be uint.
func (b *Builder) For(name string, from, to Value, body func(i Value)) {
	if !from.Valid() || !to.Valid() {
		return
	}
	if from.typ != to.typ || (from.typ != ir.Int && from.typ != ir.Uint) {
		b.fail(&OverloadError{Kind: KindStatement, Func: "for", Args: []ir.Type{from.typ, to.typ}})
		return
	}
	typ := from.typ
	init := from.operand()
	b.s.BeginFor()
	b.s.BeginForArgs()
	i := b.value(b.s.Declare(typ, name, nil, 0, init), typ, kindNamed)
	b.s.PushExpression(b.s.Binary(ir.Bool, ir.BinLt, i.operand(), to.operand()))
	b.s.PushExpression(b.s.Unary(typ, ir.UnaryPostInc, i.operand()))
	b.s.BeginForBody()
	body(i)
	b.s.EndFor()
}

// Loop records for (;;) { body }.
func (b *Builder) Loop(body func()) {
	b.s.BeginFor()
	b.s.BeginForBody()
	body()
	b.s.EndFor()
}

// SwitchBlock is a switch statement under construction; End closes it.
type SwitchBlock struct {
	b      *Builder
	typ    ir.Type
	labels map[int64]bool
	dflt   bool
	ended  bool
	dead   bool
}

// Switch opens a switch on an int or uint selector.
func (b *Builder) Switch(sel Value) *SwitchBlock {
	sw := &SwitchBlock{b: b, typ: sel.typ, labels: make(map[int64]bool)}
	if !sel.Valid() {
		sw.dead = true
		return sw
	}
	if sel.typ != ir.Int && sel.typ != ir.Uint {
		b.fail(&OverloadError{Kind: KindStatement, Func: "switch", Args: []ir.Type{sel.typ}})
		sw.dead = true
		return sw
	}
	b.s.BeginSwitch(sel.operand())
	return sw
}

// Case adds a labelled case. Falling through needs no call; Break ends it.
func (sw *SwitchBlock) Case(label int64, body func()) *SwitchBlock {
	if sw.dead || sw.ended {
		return sw
	}
	if sw.labels[label] {
		sw.b.fail(&OverloadError{Kind: KindStatement, Func: "duplicate case label", Args: []ir.Type{sw.typ}})
		return sw
	}
	sw.labels[label] = true
	var lit ir.ExprID
	if sw.typ == ir.Uint {
		u, err := safecast.Conv[uint64](label)
		if err != nil {
			sw.b.fail(&OverloadError{Kind: KindStatement, Func: "negative case label", Args: []ir.Type{sw.typ}})
			return sw
		}
		lit = sw.b.s.Uint(u)
	} else {
		lit = sw.b.s.Int(label)
	}
	sw.b.s.AddCase(lit)
	body()
	return sw
}

// Default adds the default case.
func (sw *SwitchBlock) Default(body func()) *SwitchBlock {
	if sw.dead || sw.ended {
		return sw
	}
	if sw.dflt {
		sw.b.fail(&OverloadError{Kind: KindStatement, Func: "duplicate default", Args: []ir.Type{sw.typ}})
		return sw
	}
	sw.dflt = true
	sw.b.s.AddCase(ir.NoExprID)
	body()
	return sw
}

// End closes the switch.
func (sw *SwitchBlock) End() {
	if sw.dead || sw.ended {
		return
	}
	sw.ended = true
	sw.b.s.EndSwitch()
}

func (b *Builder) Break()        { b.s.AddSpecial(ir.SpecialBreak, ir.NoExprID) }
func (b *Builder) Continue()     { b.s.AddSpecial(ir.SpecialContinue, ir.NoExprID) }
func (b *Builder) Discard()      { b.s.AddSpecial(ir.SpecialDiscard, ir.NoExprID) }
func (b *Builder) EmitVertex()   { b.s.AddSpecial(ir.SpecialEmitVertex, ir.NoExprID) }
func (b *Builder) EndPrimitive() { b.s.AddSpecial(ir.SpecialEndPrimitive, ir.NoExprID) }
func (b *Builder) Barrier()      { b.s.AddSpecial(ir.SpecialBarrier, ir.NoExprID) }

// Return leaves the enclosing function, with a value unless it returns void.
func (b *Builder) Return(vals ...Value) {
	if len(b.returns) == 0 {
		b.fail(&OverloadError{Kind: KindStatement, Func: "return outside a function"})
		return
	}
	want := b.returns[len(b.returns)-1]
	switch len(vals) {
	case 0:
		if want.known && !want.typ.IsVoid() {
			b.fail(&OverloadError{Kind: KindStatement, Func: "return", Args: []ir.Type{ir.Void}})
			return
		}
		b.s.AddSpecial(ir.SpecialReturn, ir.NoExprID)
	case 1:
		v := vals[0]
		if !v.Valid() {
			return
		}
		if want.known && v.typ != want.typ {
			b.fail(&OverloadError{Kind: KindStatement, Func: "return", Args: []ir.Type{v.typ}})
			return
		}
		b.s.AddSpecial(ir.SpecialReturn, v.operand())
	default:
		args, _ := typesOf(vals)
		b.fail(&OverloadError{Kind: KindStatement, Func: "return", Args: args})
	}
}
