package build

import (
	"fmt"

	"shady/internal/ir"
	"shady/internal/trace"
)

func (s *Session) newExpr(e ir.Expr) ir.ExprID {
	s.mustOwn(e.Children()...)
	id := s.prog.NewExpr(e)
	if s.tracer.Level().ShouldEmit(trace.ScopeNode) {
		trace.Point(s.tracer, trace.ScopeNode, e.Kind.String(), id.String(), s.span.ID())
	}
	return id
}

// Bool allocates a bool literal.
func (s *Session) Bool(v bool) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	return s.newExpr(ir.Expr{Kind: ir.ExprLiteral, Type: ir.Bool, Data: ir.LiteralData{Kind: ir.LitBool, Bool: v}})
}

// Int allocates an int literal.
func (s *Session) Int(v int64) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	return s.newExpr(ir.Expr{Kind: ir.ExprLiteral, Type: ir.Int, Data: ir.LiteralData{Kind: ir.LitInt, Int: v}})
}

// Uint allocates a uint literal.
func (s *Session) Uint(v uint64) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	return s.newExpr(ir.Expr{Kind: ir.ExprLiteral, Type: ir.Uint, Data: ir.LiteralData{Kind: ir.LitUint, Uint: v}})
}

// Float allocates a float literal.
func (s *Session) Float(v float64) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	return s.newExpr(ir.Expr{Kind: ir.ExprLiteral, Type: ir.Float, Data: ir.LiteralData{Kind: ir.LitFloat, Float: v}})
}

// Double allocates a double literal.
func (s *Session) Double(v float64) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	return s.newExpr(ir.Expr{Kind: ir.ExprLiteral, Type: ir.Double, Data: ir.LiteralData{Kind: ir.LitDouble, Float: v}})
}

// Declare allocates a declaration and records it as a statement of the
// current block. With args it is Initialized, otherwise Declared. An empty
// name gets an automatic one at render time.
func (s *Session) Declare(typ ir.Type, name string, qualifiers []string, flags ir.DeclFlags, args ...ir.ExprID) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	if len(args) > 0 {
		flags |= ir.DeclInitialized
	} else {
		flags |= ir.DeclDeclared
	}
	id := s.newExpr(ir.Expr{
		Kind: ir.ExprDecl,
		Type: typ,
		Data: &ir.DeclData{
			Name:       name,
			Flags:      flags,
			Qualifiers: append([]string(nil), qualifiers...),
			Args:       append([]ir.ExprID(nil), args...),
		},
	})
	s.PushExpression(id)
	return id
}

// Construct declares an anonymous value built from args, the form every
// constructor call and intermediate result takes before its use is known.
func (s *Session) Construct(typ ir.Type, args ...ir.ExprID) ir.ExprID {
	return s.Declare(typ, "", nil, 0, args...)
}

// Unary allocates a unary operation.
func (s *Session) Unary(typ ir.Type, op ir.UnaryOp, operand ir.ExprID) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	return s.newExpr(ir.Expr{Kind: ir.ExprUnary, Type: typ, Data: ir.UnaryData{Op: op, Operand: operand}})
}

// Binary allocates a binary operation.
func (s *Session) Binary(typ ir.Type, op ir.BinaryOp, lhs, rhs ir.ExprID) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	return s.newExpr(ir.Expr{Kind: ir.ExprBinary, Type: typ, Data: ir.BinaryData{Op: op, Lhs: lhs, Rhs: rhs}})
}

// Ternary allocates cond ? a : b.
func (s *Session) Ternary(typ ir.Type, cond, a, b ir.ExprID) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	return s.newExpr(ir.Expr{Kind: ir.ExprTernary, Type: typ, Data: ir.TernaryData{Cond: cond, A: a, B: b}})
}

// Index allocates base[index].
func (s *Session) Index(typ ir.Type, base, index ir.ExprID) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	return s.newExpr(ir.Expr{Kind: ir.ExprIndex, Type: typ, Data: ir.IndexData{Base: base, Index: index}})
}

// Member allocates an access to member of the struct or interface block
// declared by owner.
func (s *Session) Member(owner ir.InstrID, member int, base ir.ExprID) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	members := s.membersOf(owner)
	if member < 0 || member >= len(members) {
		panic(fmt.Sprintf("build: member %d out of range for %s with %d members", member, owner, len(members)))
	}
	typ := s.prog.Expr(members[member]).Type
	return s.newExpr(ir.Expr{Kind: ir.ExprMember, Type: typ, Data: ir.MemberData{Struct: owner, Member: member, Base: base}})
}

func (s *Session) membersOf(owner ir.InstrID) []ir.ExprID {
	switch d := s.prog.Instr(owner).Data.(type) {
	case ir.StructData:
		return d.Members
	case ir.InterfaceBlockData:
		return d.Members
	default:
		panic(fmt.Sprintf("build: %s has no members", owner))
	}
}

// Swizzle allocates a component selection; components are 0..3.
func (s *Session) Swizzle(typ ir.Type, base ir.ExprID, components ...uint8) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	if len(components) == 0 || len(components) > 4 {
		panic(fmt.Sprintf("build: swizzle of %d components", len(components)))
	}
	for _, c := range components {
		if c > 3 {
			panic(fmt.Sprintf("build: swizzle component %d out of range", c))
		}
	}
	return s.newExpr(ir.Expr{Kind: ir.ExprSwizzle, Type: typ, Data: ir.SwizzleData{
		Components: append([]uint8(nil), components...),
		Base:       base,
	}})
}

// CallBuiltin allocates a call to a target-language builtin.
func (s *Session) CallBuiltin(typ ir.Type, fn string, args ...ir.ExprID) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	return s.newExpr(ir.Expr{Kind: ir.ExprBuiltinCall, Type: typ, Data: ir.BuiltinCallData{
		Func: fn,
		Args: append([]ir.ExprID(nil), args...),
	}})
}

// CallUser allocates a call to a function declared in this session.
func (s *Session) CallUser(typ ir.Type, fn ir.InstrID, args ...ir.ExprID) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	s.prog.Func(fn)
	return s.newExpr(ir.Expr{Kind: ir.ExprUserCall, Type: typ, Data: ir.UserCallData{
		Func: fn,
		Args: append([]ir.ExprID(nil), args...),
	}})
}

// Convert allocates a type conversion.
func (s *Session) Convert(from, to ir.Type, operand ir.ExprID) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	return s.newExpr(ir.Expr{Kind: ir.ExprConvert, Type: to, Data: ir.ConvertData{From: from, To: to, Operand: operand}})
}

// Ref marks decl as used by reference and returns a reference node. A
// referenced declaration keeps its name in the output.
func (s *Session) Ref(decl ir.ExprID) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	s.mustOwn(decl)
	e := s.prog.Expr(decl)
	if e.Kind != ir.ExprDecl {
		panic(fmt.Sprintf("build: Ref of %s, not a declaration", e.Kind))
	}
	return s.newExpr(ir.Expr{Kind: ir.ExprVarRef, Type: e.Type, Data: ir.VarRefData{Decl: decl}})
}

// UseAsTemporary marks decl as consumed by copy with no name binding. When
// the declaration wraps exactly one argument of its own type, that argument
// is returned and the declaration disappears from the output; otherwise the
// declaration itself is returned and renders inline.
func (s *Session) UseAsTemporary(decl ir.ExprID) ir.ExprID {
	if s.skip() {
		return ir.NoExprID
	}
	s.mustOwn(decl)
	if decl.Pool() == ir.PoolStatic {
		return s.Ref(decl)
	}
	e := s.prog.Expr(decl)
	d, ok := e.Decl()
	if !ok {
		panic(fmt.Sprintf("build: UseAsTemporary of %s, not a declaration", e.Kind))
	}
	d.Moved = true
	if len(d.Args) == 1 && s.prog.Expr(d.Args[0]).Type == e.Type {
		return d.Args[0]
	}
	return decl
}

// Member describes a struct or interface block member.
type Member struct {
	Type       ir.Type
	Name       string
	Qualifiers []string
}

func (s *Session) declareMembers(members []Member) []ir.ExprID {
	out := make([]ir.ExprID, len(members))
	for i, m := range members {
		out[i] = s.newExpr(ir.Expr{Kind: ir.ExprDecl, Type: m.Type, Data: &ir.DeclData{
			Name:       m.Name,
			Flags:      ir.DeclDeclared | ir.DeclStructMember,
			Qualifiers: append([]string(nil), m.Qualifiers...),
		}})
	}
	return out
}

// AddStruct declares a struct type.
func (s *Session) AddStruct(name string, members []Member) ir.InstrID {
	if s.skip() {
		return ir.NoInstrID
	}
	id := s.prog.NewInstr(ir.Instr{Kind: ir.InstrStruct, Data: ir.StructData{
		Name:    name,
		Members: s.declareMembers(members),
	}})
	s.push(id)
	return id
}

// AddNamedInterfaceBlock declares an interface block with an instance name.
// The returned declaration stands for the instance; Member accesses go
// through a Ref of it.
func (s *Session) AddNamedInterfaceBlock(qualifiers []string, blockName, instance string, array int, members []Member) (ir.InstrID, ir.ExprID) {
	if s.skip() {
		return ir.NoInstrID, ir.NoExprID
	}
	if instance == "" {
		panic(fmt.Sprintf("build: interface block %q needs an instance name", blockName))
	}
	inst := s.newExpr(ir.Expr{Kind: ir.ExprDecl, Type: ir.Type{Name: blockName, Array: array}, Data: &ir.DeclData{
		Name:  instance,
		Flags: ir.DeclUntracked,
	}})
	id := s.prog.NewInstr(ir.Instr{Kind: ir.InstrInterfaceBlock, Data: ir.InterfaceBlockData{
		Qualifiers: append([]string(nil), qualifiers...),
		BlockName:  blockName,
		Instance:   instance,
		Array:      array,
		Members:    s.declareMembers(members),
	}})
	s.push(id)
	return id, inst
}

// AddUnnamedInterfaceBlock declares an interface block whose members are
// global names. The member declarations are returned for Ref.
func (s *Session) AddUnnamedInterfaceBlock(qualifiers []string, blockName string, members []Member) (ir.InstrID, []ir.ExprID) {
	if s.skip() {
		return ir.NoInstrID, nil
	}
	decls := s.declareMembers(members)
	id := s.prog.NewInstr(ir.Instr{Kind: ir.InstrInterfaceBlock, Data: ir.InterfaceBlockData{
		Qualifiers: append([]string(nil), qualifiers...),
		BlockName:  blockName,
		Members:    decls,
	}})
	s.push(id)
	return id, append([]ir.ExprID(nil), decls...)
}

// DeclareStatic adds a declaration to the process-wide static pool. It needs
// no session and is meant for names that exist before any program, such as
// gl_FragCoord.
func DeclareStatic(typ ir.Type, name string, flags ir.DeclFlags) ir.ExprID {
	if name == "" {
		panic("build: static declarations need a name")
	}
	return ir.Static.Declare(typ, name, flags|ir.DeclUntracked)
}
