package liveness

import (
	"testing"

	"shady/internal/build"
	"shady/internal/ir"
)

func finish(t *testing.T, s *build.Session) *ir.Program {
	t.Helper()
	p, err := s.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return p
}

func flagsOf(t *testing.T, a *Annotations, id ir.ExprID) ir.DeclFlags {
	t.Helper()
	f, ok := a.Flags(id)
	if !ok {
		t.Fatalf("%s was not analyzed", id)
	}
	return f
}

// inFunc opens a void function without parameters so statements land in a
// plain block.
func inFunc(s *build.Session) {
	s.BeginFunc("main", []ir.Type{ir.Void}, []int{0})
}

func TestTemporaryOperand(t *testing.T) {
	s := build.New(build.Options{})
	inFunc(s)
	x := s.Declare(ir.Float, "x", nil, 0, s.Float(2))
	v := s.Construct(ir.T("vec3"), s.Ref(x))
	tmp := s.UseAsTemporary(v)
	out := s.Declare(ir.T("vec3"), "out", nil, 0, s.Binary(ir.T("vec3"), ir.BinMul, tmp, s.Float(3)))
	s.PushExpression(s.Ref(out))
	s.EndFunc()
	a := Analyze(finish(t, s))

	if f := flagsOf(t, a, v); !f.Has(ir.DeclTemporary) {
		t.Fatalf("moved constructor flags = %s, want temporary", f)
	}
	if u := a.Usage(v); u.Uses != 1 || !u.Moved || u.Refs != 0 {
		t.Fatalf("usage = %+v", u)
	}
	if f := flagsOf(t, a, x); f.Has(ir.DeclTemporary | ir.DeclUnused) {
		t.Fatalf("referenced declaration flags = %s", f)
	}
}

func TestUnusedInitializedDeclaration(t *testing.T) {
	s := build.New(build.Options{})
	inFunc(s)
	dropped := s.Declare(ir.Float, "dropped", nil, 0, s.CallBuiltin(ir.Float, "sin", s.Float(1)))
	kept := s.Declare(ir.Float, "kept", nil, 0, s.Float(1))
	s.PushExpression(s.Binary(ir.Float, ir.BinAddAssign, s.Ref(kept), s.Float(1)))
	tracked := s.Declare(ir.Float, "tracked", nil, ir.DeclTracked, s.Float(1))
	declared := s.Declare(ir.Float, "declared", nil, 0)
	s.EndFunc()
	a := Analyze(finish(t, s))

	if f := flagsOf(t, a, dropped); !f.Has(ir.DeclUnused) {
		t.Fatalf("unread declaration flags = %s, want unused", f)
	}
	for name, id := range map[string]ir.ExprID{"kept": kept, "tracked": tracked, "declared": declared} {
		if f := flagsOf(t, a, id); f.Has(ir.DeclUnused | ir.DeclTemporary) {
			t.Fatalf("%s flags = %s", name, f)
		}
	}
	if a.Usage(kept).Writes != 1 {
		t.Fatalf("kept writes = %d", a.Usage(kept).Writes)
	}
	if a.Count(ir.DeclUnused) != 1 {
		t.Fatalf("unused count = %d", a.Count(ir.DeclUnused))
	}
}

func TestRootConstInference(t *testing.T) {
	s := build.New(build.Options{})
	pi := s.Declare(ir.Float, "PI", nil, 0, s.Float(3.14159))
	tau := s.Declare(ir.Float, "TAU", nil, 0, s.Binary(ir.Float, ir.BinMul, s.Ref(pi), s.Float(2)))
	mutable := s.Declare(ir.Float, "counter", nil, 0, s.Float(0))
	uniform := s.Declare(ir.Float, "time", []string{"uniform"}, 0)
	fromUniform := s.Declare(ir.Float, "phase", nil, 0, s.Ref(uniform))

	inFunc(s)
	s.PushExpression(s.Unary(ir.Float, ir.UnaryPreInc, s.Ref(mutable)))
	s.PushExpression(s.Binary(ir.Float, ir.BinMul, s.Ref(tau), s.Ref(fromUniform)))
	s.EndFunc()
	a := Analyze(finish(t, s))

	for name, id := range map[string]ir.ExprID{"PI": pi, "TAU": tau} {
		if f := flagsOf(t, a, id); !f.Has(ir.DeclConst) {
			t.Fatalf("%s flags = %s, want const", name, f)
		}
	}
	for name, id := range map[string]ir.ExprID{"counter": mutable, "time": uniform, "phase": fromUniform} {
		if f := flagsOf(t, a, id); f.Has(ir.DeclConst) {
			t.Fatalf("%s flags = %s, must not be const", name, f)
		}
	}
}

func TestRootDeclarationsAreNeverDropped(t *testing.T) {
	s := build.New(build.Options{})
	g := s.Declare(ir.Float, "g", nil, 0, s.Float(1))
	a := Analyze(finish(t, s))
	if f := flagsOf(t, a, g); f.Has(ir.DeclUnused) {
		t.Fatalf("global flags = %s", f)
	}
}

func TestFunctionArgumentsAndMembersPinned(t *testing.T) {
	s := build.New(build.Options{})
	st := s.AddStruct("Light", []build.Member{{Type: ir.T("vec3"), Name: "pos"}})
	s.BeginFunc("f", []ir.Type{ir.Float}, []int{1})
	arg := s.Declare(ir.Float, "a", nil, 0)
	s.AddSpecial(ir.SpecialReturn, s.Ref(arg))
	s.EndFunc()
	p := finish(t, s)
	a := Analyze(p)

	if f := flagsOf(t, a, arg); !f.Has(ir.DeclFunctionArgument) || f.Has(ir.DeclTemporary|ir.DeclUnused) {
		t.Fatalf("argument flags = %s", f)
	}
	member := p.Struct(st).Members[0]
	if f := flagsOf(t, a, member); !f.Has(ir.DeclStructMember) {
		t.Fatalf("member flags = %s", f)
	}
}

func TestOutArgumentsCountAsWrites(t *testing.T) {
	s := build.New(build.Options{})
	fn := s.BeginFunc("fill", []ir.Type{ir.Void}, []int{1})
	s.Declare(ir.Float, "v", []string{"out"}, 0)
	s.EndFunc()
	g := s.Declare(ir.Float, "g", nil, 0, s.Float(1))
	inFunc(s)
	s.PushExpression(s.CallUser(ir.Void, fn, s.Ref(g)))
	s.EndFunc()
	a := Analyze(finish(t, s))
	if f := flagsOf(t, a, g); f.Has(ir.DeclConst) {
		t.Fatalf("global passed to a call inferred const")
	}
}
