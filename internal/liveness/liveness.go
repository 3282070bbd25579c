package liveness

import (
	"shady/internal/ir"
)

// Usage counts how one declaration is consumed across the program.
type Usage struct {
	// Refs counts VarRef nodes naming the declaration.
	Refs int
	// Uses counts places where the declaration node itself is an operand.
	Uses int
	// Writes counts assignments, increments and out-argument positions that
	// target the declaration.
	Writes int
	// Moved mirrors DeclData.Moved.
	Moved bool
	// Site is the block whose statement introduced the declaration, or
	// NoBlockID when it was never pushed.
	Site     ir.BlockID
	SiteKind ir.BlockKind
}

// Annotations is the result of Analyze. It is not modified afterwards and may
// be shared between renders.
type Annotations struct {
	usage map[ir.ExprID]Usage
	flags map[ir.ExprID]ir.DeclFlags
	order []ir.ExprID
}

// Flags returns the effective flags of decl: the flags it was built with plus
// Temporary, Unused or Const when the analysis derived them. ok is false for
// declarations the analysis never reached.
func (a *Annotations) Flags(decl ir.ExprID) (flags ir.DeclFlags, ok bool) {
	if a == nil {
		return 0, false
	}
	flags, ok = a.flags[decl]
	return flags, ok
}

// Usage returns the counters collected for decl.
func (a *Annotations) Usage(decl ir.ExprID) Usage {
	if a == nil {
		return Usage{}
	}
	return a.usage[decl]
}

// Decls lists every analyzed declaration in first-seen order.
func (a *Annotations) Decls() []ir.ExprID {
	if a == nil {
		return nil
	}
	return append([]ir.ExprID(nil), a.order...)
}

// Count returns how many declarations carry every bit of mask.
func (a *Annotations) Count(mask ir.DeclFlags) int {
	if a == nil {
		return 0
	}
	n := 0
	for _, f := range a.flags {
		if f&mask == mask {
			n++
		}
	}
	return n
}

// Analyze walks a finished program and derives which declarations keep their
// name, which collapse into their use site and which are dropped to their
// initializer.
func Analyze(p *ir.Program) *Annotations {
	a := &analyzer{
		p:     p,
		usage: make(map[ir.ExprID]*Usage),
		seen:  make(map[ir.ExprID]bool),
	}
	a.block(p.Root)
	return a.finalize()
}

type analyzer struct {
	p     *ir.Program
	usage map[ir.ExprID]*Usage
	order []ir.ExprID
	seen  map[ir.ExprID]bool
}

func (a *analyzer) entry(decl ir.ExprID) *Usage {
	u, ok := a.usage[decl]
	if !ok {
		u = &Usage{}
		a.usage[decl] = u
		a.order = append(a.order, decl)
	}
	return u
}

func (a *analyzer) block(id ir.BlockID) {
	blk := a.p.Block(id)
	for _, in := range blk.Instrs {
		switch d := a.p.Instr(in).Data.(type) {
		case ir.StatementData:
			a.statement(id, blk.Kind, d.Expr)
		case ir.StructData:
			a.members(d.Members)
		case ir.InterfaceBlockData:
			a.members(d.Members)
		default:
			for _, e := range a.p.ExprsOf(in) {
				a.operand(e)
			}
		}
		for _, child := range a.p.BlocksOf(in) {
			a.block(child)
		}
	}
}

func (a *analyzer) members(decls []ir.ExprID) {
	for _, m := range decls {
		a.entry(m)
	}
}

// statement handles the root expression of a statement. A declaration there is
// its definition site, not a use.
func (a *analyzer) statement(blk ir.BlockID, kind ir.BlockKind, id ir.ExprID) {
	e := a.p.Expr(id)
	if e.Kind != ir.ExprDecl {
		a.operand(id)
		return
	}
	u := a.entry(id)
	if !u.Site.IsValid() {
		u.Site = blk
		u.SiteKind = kind
	}
	a.children(id, e)
}

func (a *analyzer) operand(id ir.ExprID) {
	e := a.p.Expr(id)
	switch d := e.Data.(type) {
	case *ir.DeclData:
		a.entry(id).Uses++
	case ir.VarRefData:
		a.entry(d.Decl).Refs++
	case ir.BinaryData:
		if d.Op.IsAssign() {
			a.write(d.Lhs)
		}
	case ir.UnaryData:
		if d.Op.Mutates() {
			a.write(d.Operand)
		}
	case ir.UserCallData:
		// Parameters may be out or inout.
		for _, arg := range d.Args {
			a.write(arg)
		}
	}
	a.children(id, e)
}

func (a *analyzer) children(id ir.ExprID, e *ir.Expr) {
	if a.seen[id] {
		return
	}
	a.seen[id] = true
	for _, c := range e.Children() {
		a.operand(c)
	}
}

// write records a store through target, following index, member and swizzle
// chains down to the declaration they start from.
func (a *analyzer) write(target ir.ExprID) {
	for {
		e := a.p.Expr(target)
		switch d := e.Data.(type) {
		case ir.VarRefData:
			a.entry(d.Decl).Writes++
			return
		case *ir.DeclData:
			a.entry(target).Writes++
			return
		case ir.IndexData:
			target = d.Base
		case ir.MemberData:
			target = d.Base
		case ir.SwizzleData:
			target = d.Base
		default:
			return
		}
	}
}

func (a *analyzer) finalize() *Annotations {
	out := &Annotations{
		usage: make(map[ir.ExprID]Usage, len(a.usage)),
		flags: make(map[ir.ExprID]ir.DeclFlags, len(a.usage)),
		order: a.order,
	}
	for _, id := range a.order {
		e := a.p.Expr(id)
		d, _ := e.Decl()
		u := a.usage[id]
		u.Moved = d.Moved
		out.usage[id] = *u
		out.flags[id] = a.classify(out, id, d, *u)
	}
	return out
}

func (a *analyzer) classify(out *Annotations, id ir.ExprID, d *ir.DeclData, u Usage) ir.DeclFlags {
	flags := d.Flags
	if pinned(d) || !flags.Has(ir.DeclInitialized) || u.SiteKind == ir.BlockForArgs && u.Site.IsValid() {
		return flags
	}
	switch {
	case u.Refs == 0 && (u.Uses > 0 || u.Moved):
		return flags | ir.DeclTemporary
	case u.Refs == 0 && u.Uses == 0 && u.Site.IsValid() && u.SiteKind != ir.BlockRoot:
		return flags | ir.DeclUnused
	case u.SiteKind == ir.BlockRoot && u.Site.IsValid() && u.Writes == 0 && a.constantArgs(out, d.Args):
		return flags | ir.DeclConst
	}
	return flags
}

// pinned reports declarations whose name must appear as written.
func pinned(d *ir.DeclData) bool {
	const mask = ir.DeclTracked | ir.DeclBuiltin | ir.DeclStructMember | ir.DeclUntracked | ir.DeclFunctionArgument
	return d.Flags.Has(mask) || len(d.Qualifiers) > 0
}

func (a *analyzer) constantArgs(out *Annotations, args []ir.ExprID) bool {
	if len(args) == 0 {
		return false
	}
	for _, arg := range args {
		if !a.constant(out, arg) {
			return false
		}
	}
	return true
}

// constant reports whether id is a constant expression given the declarations
// classified so far.
func (a *analyzer) constant(out *Annotations, id ir.ExprID) bool {
	e := a.p.Expr(id)
	switch d := e.Data.(type) {
	case ir.LiteralData:
		return true
	case ir.VarRefData:
		f, ok := out.flags[d.Decl]
		return ok && f.Has(ir.DeclConst)
	case *ir.DeclData:
		f, ok := out.flags[id]
		return ok && f.Has(ir.DeclTemporary|ir.DeclConst) && a.constantArgs(out, d.Args)
	case ir.UnaryData:
		return !d.Op.Mutates() && a.constant(out, d.Operand)
	case ir.BinaryData:
		return !d.Op.IsAssign() && d.Op != ir.BinComma && a.constant(out, d.Lhs) && a.constant(out, d.Rhs)
	case ir.TernaryData:
		return a.constant(out, d.Cond) && a.constant(out, d.A) && a.constant(out, d.B)
	case ir.ConvertData:
		return a.constant(out, d.Operand)
	case ir.SwizzleData:
		return a.constant(out, d.Base)
	case ir.IndexData:
		return a.constant(out, d.Base) && a.constant(out, d.Index)
	default:
		return false
	}
}
