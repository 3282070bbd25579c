package glsl

import (
	"math"
	"strings"
	"testing"

	"shady/internal/build"
	"shady/internal/ir"
	"shady/internal/liveness"
	"shady/internal/samples"
)

func finish(t *testing.T, s *build.Session) *ir.Program {
	t.Helper()
	p, err := s.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return p
}

func render(t *testing.T, p *ir.Program, opts Options) string {
	t.Helper()
	out, err := Render(p, nil, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return out
}

func expect(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Fatalf("output mismatch\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func beginMain(s *build.Session) {
	s.BeginFunc("main", []ir.Type{ir.Void}, []int{0})
}

func assignInt(s *build.Session, decl ir.ExprID, v int64) {
	s.PushExpression(s.Binary(ir.Int, ir.BinAssign, s.Ref(decl), s.Int(v)))
}

func TestRenderIfChain(t *testing.T) {
	s := build.New(build.Options{})
	beginMain(s)
	x := s.Declare(ir.Int, "x", nil, 0, s.Int(0))
	c := s.Declare(ir.Bool, "c", nil, 0, s.Bool(true))
	o := s.Declare(ir.Bool, "o", nil, 0, s.Bool(false))
	s.BeginIf(s.Ref(c))
	assignInt(s, x, 1)
	s.EndIf()
	s.ElseIf(s.Ref(o))
	assignInt(s, x, 2)
	s.EndIf()
	s.Else()
	assignInt(s, x, 3)
	s.EndIf()
	s.EndIf()
	s.EndFunc()

	expect(t, render(t, finish(t, s), Options{}), `#version 450 core

void main() {
    int x = 0;
    bool c = true;
    bool o = false;
    if (c) {
        x = 1;
    } else if (o) {
        x = 2;
    } else {
        x = 3;
    }
}
`)
}

func TestRenderForHeaders(t *testing.T) {
	s := build.New(build.Options{})
	beginMain(s)
	sum := s.Declare(ir.Float, "sum", nil, 0, s.Float(0))
	s.BeginFor()
	s.BeginForArgs()
	i := s.Declare(ir.Int, "i", nil, 0, s.Int(0))
	s.PushExpression(s.Binary(ir.Bool, ir.BinLt, s.Ref(i), s.Int(4)))
	s.PushExpression(s.Unary(ir.Int, ir.UnaryPostInc, s.Ref(i)))
	s.BeginForBody()
	s.PushExpression(s.Binary(ir.Float, ir.BinAddAssign, s.Ref(sum), s.Convert(ir.Int, ir.Float, s.Ref(i))))
	s.EndFor()
	s.BeginFor()
	s.BeginForArgs()
	s.BeginForBody()
	s.AddSpecial(ir.SpecialBreak, ir.NoExprID)
	s.EndFor()
	s.EndFunc()

	expect(t, render(t, finish(t, s), Options{}), `#version 450 core

void main() {
    float sum = 0.0;
    for (int i = 0; i < 4; i++) {
        sum += float(i);
    }
    for (;;) {
        break;
    }
}
`)
}

func TestRenderOverloads(t *testing.T) {
	s := build.New(build.Options{})
	s.BeginFunc("scale", []ir.Type{ir.Float, ir.T("vec2")}, []int{2, 1})
	a := s.Declare(ir.Float, "a", nil, 0)
	b := s.Declare(ir.Float, "b", nil, 0)
	s.AddSpecial(ir.SpecialReturn, s.Binary(ir.Float, ir.BinMul, s.Ref(a), s.Ref(b)))
	s.NextOverload()
	v := s.Declare(ir.T("vec2"), "v", nil, 0)
	s.AddSpecial(ir.SpecialReturn, s.Binary(ir.T("vec2"), ir.BinMul, s.Ref(v), s.Float(2)))
	s.EndFunc()

	expect(t, render(t, finish(t, s), Options{IndentWidth: 2}), `#version 450 core

float scale(float a, float b) {
  return a * b;
}

vec2 scale(vec2 v) {
  return v * 2.0;
}
`)
}

func TestRenderTemporaryAndUnused(t *testing.T) {
	s := build.New(build.Options{})
	beginMain(s)
	x := s.Declare(ir.Float, "x", nil, 0, s.Float(1))
	sum := s.Construct(ir.Float, s.Binary(ir.Float, ir.BinAdd, s.Ref(x), s.Float(2)))
	s.PushExpression(s.Binary(ir.Float, ir.BinAssign, s.Ref(x),
		s.Binary(ir.Float, ir.BinMul, s.UseAsTemporary(sum), s.Float(3))))
	splat := s.Construct(ir.T("vec3"), s.Ref(x))
	s.Declare(ir.T("vec3"), "c", nil, 0, s.Binary(ir.T("vec3"), ir.BinMul, s.UseAsTemporary(splat), s.Float(2)))
	s.EndFunc()

	out := render(t, finish(t, s), Options{UseTabs: true})
	expect(t, out, "#version 450 core\n\nvoid main() {\n"+
		"\tfloat x = 1.0;\n"+
		"\tx = (x + 2.0) * 3.0;\n"+
		"\tvec3(x) * 2.0;\n"+
		"}\n")
	if strings.Contains(out, " c ") {
		t.Fatalf("unused declaration kept its name:\n%s", out)
	}
}

func TestRenderAutomaticNames(t *testing.T) {
	s := build.New(build.Options{})
	beginMain(s)
	a := s.Declare(ir.Float, "", nil, 0)
	b := s.Declare(ir.Float, "", nil, 0, s.Float(0.5))
	in := s.Declare(ir.Float, "in", nil, 0, s.Float(1))
	s.PushExpression(s.Binary(ir.Float, ir.BinAssign, s.Ref(a), s.Binary(ir.Float, ir.BinAdd, s.Ref(b), s.Ref(in))))
	s.EndFunc()

	expect(t, render(t, finish(t, s), Options{}), `#version 450 core

void main() {
    float x0;
    float x1 = 0.5;
    float in_ = 1.0;
    x0 = x1 + in_;
}
`)
}

func TestRenderTypesAndGlobals(t *testing.T) {
	p := buildLitProgram(t)
	out := render(t, p, Options{Profile: ProfileES})
	expect(t, out, `#version 300 es
precision highp float;
precision highp int;

struct Light {
    vec3 position;
    float intensity;
};

layout(std140) uniform Globals {
    float time;
} globals;

in VertexData {
    vec2 uv;
};

const float PI = 3.14159;
out vec4 fragColor;

void main() {
    Light light;
    light.intensity = PI;
    fragColor = vec4(uv, globals.time * light.intensity, 1.0);
}
`)
	if again := render(t, p, Options{Profile: ProfileES}); again != out {
		t.Fatalf("second render differs\nfirst:\n%s\n\nsecond:\n%s", out, again)
	}
	ann := liveness.Analyze(p)
	withAnn, err := Render(p, ann, Options{Profile: ProfileES})
	if err != nil || withAnn != out {
		t.Fatalf("render with shared annotations differs (err %v)", err)
	}
}

func buildLitProgram(t *testing.T) *ir.Program {
	t.Helper()
	s := build.New(build.Options{})
	light := s.AddStruct("Light", []build.Member{
		{Type: ir.T("vec3"), Name: "position"},
		{Type: ir.Float, Name: "intensity"},
	})
	globals, inst := s.AddNamedInterfaceBlock([]string{"layout(std140)", "uniform"}, "Globals", "globals", 0,
		[]build.Member{{Type: ir.Float, Name: "time"}})
	_, varying := s.AddUnnamedInterfaceBlock([]string{"in"}, "VertexData",
		[]build.Member{{Type: ir.T("vec2"), Name: "uv"}})
	pi := s.Declare(ir.Float, "PI", nil, 0, s.Float(3.14159))
	frag := s.Declare(ir.T("vec4"), "fragColor", []string{"out"}, 0)

	beginMain(s)
	l := s.Declare(ir.T("Light"), "light", nil, 0)
	s.PushExpression(s.Binary(ir.Float, ir.BinAssign, s.Member(light, 1, s.Ref(l)), s.Ref(pi)))
	phase := s.Binary(ir.Float, ir.BinMul, s.Member(globals, 0, s.Ref(inst)), s.Member(light, 1, s.Ref(l)))
	color := s.Construct(ir.T("vec4"), s.Ref(varying[0]), phase, s.Float(1))
	s.PushExpression(s.Binary(ir.T("vec4"), ir.BinAssign, s.Ref(frag), s.UseAsTemporary(color)))
	s.EndFunc()
	return finish(t, s)
}

func TestPrecedenceParentheses(t *testing.T) {
	s := build.New(build.Options{})
	a := s.Declare(ir.Float, "a", nil, 0)
	b := s.Declare(ir.Float, "b", nil, 0)
	c := s.Declare(ir.Float, "c", nil, 0)
	bin := func(op ir.BinaryOp, l, r ir.ExprID) ir.ExprID { return s.Binary(ir.Float, op, l, r) }
	r := s.Ref

	cases := []struct {
		id   ir.ExprID
		want string
	}{
		{bin(ir.BinMul, bin(ir.BinAdd, r(a), r(b)), r(c)), "(a + b) * c"},
		{bin(ir.BinAdd, r(a), bin(ir.BinMul, r(b), r(c))), "a + b * c"},
		{bin(ir.BinAdd, bin(ir.BinMul, r(a), r(b)), r(c)), "a * b + c"},
		{bin(ir.BinSub, r(a), bin(ir.BinSub, r(b), r(c))), "a - (b - c)"},
		{bin(ir.BinSub, bin(ir.BinSub, r(a), r(b)), r(c)), "(a - b) - c"},
		{s.Unary(ir.Float, ir.UnaryNeg, bin(ir.BinAdd, r(a), r(b))), "-(a + b)"},
		{s.Unary(ir.Float, ir.UnaryNeg, s.Unary(ir.Float, ir.UnaryNeg, r(a))), "-(-a)"},
		{s.Swizzle(ir.Float, bin(ir.BinAdd, r(a), r(b)), 0), "(a + b).x"},
		{s.Swizzle(ir.T("vec2"), r(a), 3, 1), "a.wy"},
		{s.Ternary(ir.Float, bin(ir.BinLt, r(a), r(b)), r(a),
			s.Ternary(ir.Float, bin(ir.BinLt, r(b), r(c)), r(b), r(c))), "a < b ? a : (b < c ? b : c)"},
		{bin(ir.BinAssign, r(a), bin(ir.BinAdd, r(b), r(c))), "a = b + c"},
		{bin(ir.BinLogAnd, bin(ir.BinLt, r(a), r(b)), bin(ir.BinLt, r(b), r(c))), "a < b && b < c"},
		{s.CallBuiltin(ir.Float, "max", bin(ir.BinAdd, r(a), r(b)), bin(ir.BinComma, r(a), r(b))), "max(a + b, (a, b))"},
		{bin(ir.BinMul, r(a), s.Float(-1)), "a * -1.0"},
		{s.Unary(ir.Float, ir.UnaryNeg, s.Float(-1)), "-(-1.0)"},
		{s.Unary(ir.Float, ir.UnaryPostInc, s.Index(ir.Float, r(a), bin(ir.BinAdd, r(b), r(c)))), "a[b + c]++"},
	}
	p := finish(t, s)
	g := newGenerator(p, liveness.Analyze(p), Options{}.withDefaults())
	g.declName(a)
	g.declName(b)
	g.declName(c)
	for _, tc := range cases {
		if got := g.expr(tc.id, precStatement); got != tc.want {
			t.Errorf("got %q, want %q", got, tc.want)
		}
	}
}

func TestFormatLiteral(t *testing.T) {
	cases := []struct {
		lit  ir.LiteralData
		want string
		prec int
	}{
		{ir.LiteralData{Kind: ir.LitBool, Bool: true}, "true", precPrimary},
		{ir.LiteralData{Kind: ir.LitInt, Int: -3}, "-3", precPrefix},
		{ir.LiteralData{Kind: ir.LitUint, Uint: 3}, "3u", precPrimary},
		{ir.LiteralData{Kind: ir.LitFloat, Float: 1}, "1.0", precPrimary},
		{ir.LiteralData{Kind: ir.LitFloat, Float: 0.1}, "0.1", precPrimary},
		{ir.LiteralData{Kind: ir.LitFloat, Float: 1e20}, "1e+20", precPrimary},
		{ir.LiteralData{Kind: ir.LitFloat, Float: -0.5}, "-0.5", precPrefix},
		{ir.LiteralData{Kind: ir.LitDouble, Float: 2}, "2.0lf", precPrimary},
		{ir.LiteralData{Kind: ir.LitFloat, Float: math.NaN()}, "(0.0 / 0.0)", precPrimary},
		{ir.LiteralData{Kind: ir.LitFloat, Float: math.Inf(1)}, "(1.0 / 0.0)", precPrimary},
	}
	for _, tc := range cases {
		got, prec := formatLiteral(tc.lit)
		if got != tc.want || prec != tc.prec {
			t.Errorf("formatLiteral(%+v) = %q/%d, want %q/%d", tc.lit, got, prec, tc.want, tc.prec)
		}
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"café au lait": "cafe_au_lait",
		"gl_Position":  "ugl_Position",
		"3d":           "v3d",
		"a__b":         "a_b",
		"":             "v",
		"ok_name":      "ok_name",
	}
	for in, want := range cases {
		if got := sanitize(in); got != want {
			t.Errorf("sanitize(%q) = %q, want %q", in, got, want)
		}
	}
	n := newNamer()
	n.reserve("x0")
	if got := n.next(); got != "x1" {
		t.Fatalf("next skipped reserved name badly: %q", got)
	}
	if a, b := n.call("in"), n.call("in"); a != "in_" || b != "in_1" {
		t.Fatalf("keyword names = %q, %q", a, b)
	}
}

func TestOptionsValidate(t *testing.T) {
	bad := []Options{
		{Profile: ProfileES, Version: 450},
		{Profile: ProfileCore, Version: 300},
		{Precision: "ultra"},
	}
	for _, o := range bad {
		if err := o.Validate(); err == nil {
			t.Errorf("%+v accepted", o)
		}
	}
	if err := (Options{}).Validate(); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}
	p, err := ParseProfile("ES")
	if err != nil || p != ProfileES {
		t.Fatalf("ParseProfile(ES) = %v, %v", p, err)
	}
	if _, err := Render(ir.NewProgram(ir.StoragePacked, ir.Hints{}), nil, Options{Profile: ProfileES, Version: 460}); err == nil {
		t.Fatalf("Render accepted an invalid version")
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	for _, mode := range []ir.StorageMode{ir.StoragePacked, ir.StorageBoxed} {
		for _, sample := range samples.All() {
			p, err := sample.Build(build.Options{Storage: mode})
			if err != nil {
				t.Fatalf("%s: %v", sample.Name, err)
			}
			for _, opts := range []Options{{}, {Profile: ProfileES, Version: 310, UseTabs: true}} {
				first, err := Render(p, nil, opts)
				if err != nil {
					t.Fatalf("%s: %v", sample.Name, err)
				}
				second, err := Render(p, nil, opts)
				if err != nil {
					t.Fatalf("%s: %v", sample.Name, err)
				}
				if first != second {
					t.Fatalf("%s: second render differs\nwant:\n%s\n\ngot:\n%s", sample.Name, first, second)
				}

				ann := liveness.Analyze(p)
				for i := range 2 {
					got, err := Render(p, ann, opts)
					if err != nil {
						t.Fatalf("%s: %v", sample.Name, err)
					}
					if got != first {
						t.Fatalf("%s: render %d with shared annotations differs\nwant:\n%s\n\ngot:\n%s", sample.Name, i, first, got)
					}
				}
			}
		}
	}
}
