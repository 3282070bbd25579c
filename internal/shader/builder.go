// Package shader is a typed front end over the control-flow builder. Host
// code writes ordinary Go calls on Values; each call records the matching
// nodes and the first type error is kept until Finish.
package shader

import (
	"errors"
	"fmt"

	"shady/internal/build"
	"shady/internal/ir"
)

// Builder records one program.
type Builder struct {
	s       *build.Session
	err     error
	structs map[string]*Struct
	returns []retFrame
}

// retFrame is the return type of a function body being recorded; known is
// false while the type is still being probed.
type retFrame struct {
	typ   ir.Type
	known bool
}

// New opens a builder over a fresh session.
func New(opts build.Options) *Builder {
	return &Builder{
		s:       build.New(opts),
		structs: make(map[string]*Struct),
	}
}

// Session exposes the underlying builder session.
func (b *Builder) Session() *build.Session { return b.s }

// Err returns the first type error recorded so far.
func (b *Builder) Err() error { return b.err }

// Finish closes the session. The first type error, if any, is returned
// together with any balance error.
func (b *Builder) Finish() (*ir.Program, error) {
	p, err := b.s.Finish()
	if b.err != nil {
		return p, errors.Join(b.err, err)
	}
	return p, err
}

// fail records err and returns the invalid Value every later operation
// passes through untouched.
func (b *Builder) fail(err error) Value {
	if b.err == nil {
		b.err = err
	}
	return Value{}
}

func (b *Builder) value(id ir.ExprID, typ ir.Type, kind valueKind) Value {
	return Value{b: b, id: id, typ: typ, kind: kind}
}

// TypeOf runs fn with recording suspended and returns the type of its
// result. Nothing fn does is recorded.
func (b *Builder) TypeOf(fn func() Value) ir.Type {
	restore := b.s.Suspend()
	defer restore()
	v := fn()
	if !v.Valid() {
		return ir.Void
	}
	return v.typ
}

// Bool is a bool literal.
func (b *Builder) Bool(v bool) Value { return b.value(b.s.Bool(v), ir.Bool, kindExpr) }

// Int is an int literal.
func (b *Builder) Int(v int64) Value { return b.value(b.s.Int(v), ir.Int, kindExpr) }

// Uint is a uint literal.
func (b *Builder) Uint(v uint64) Value { return b.value(b.s.Uint(v), ir.Uint, kindExpr) }

// Float is a float literal.
func (b *Builder) Float(v float64) Value { return b.value(b.s.Float(v), ir.Float, kindExpr) }

// Double is a double literal.
func (b *Builder) Double(v float64) Value { return b.value(b.s.Double(v), ir.Double, kindExpr) }

// Construct builds typ from args: a vector, matrix, array or a struct
// declared with Struct.
func (b *Builder) Construct(typ ir.Type, args ...Value) Value {
	types, ok := typesOf(args)
	if !ok {
		return Value{}
	}
	if !b.constructible(typ, types) {
		return b.fail(&OverloadError{Kind: KindConstructor, Func: typ.String(), Args: types, Candidates: 1})
	}
	return b.value(b.s.Construct(typ, operands(args)...), typ, kindTemp)
}

func (b *Builder) constructible(typ ir.Type, args []ir.Type) bool {
	if st, ok := b.structs[typ.Name]; ok && !typ.IsArray() {
		return sameTypes(st.fieldTypes(), args)
	}
	if typ.IsArray() {
		if typ.Array > 0 && len(args) != typ.Array || len(args) == 0 {
			return false
		}
		for _, a := range args {
			if a != typ.Elem() {
				return false
			}
		}
		return true
	}
	return constructible(typ, args)
}

func (b *Builder) Vec2(args ...Value) Value  { return b.Construct(ir.T("vec2"), args...) }
func (b *Builder) Vec3(args ...Value) Value  { return b.Construct(ir.T("vec3"), args...) }
func (b *Builder) Vec4(args ...Value) Value  { return b.Construct(ir.T("vec4"), args...) }
func (b *Builder) IVec2(args ...Value) Value { return b.Construct(ir.T("ivec2"), args...) }
func (b *Builder) Mat3(args ...Value) Value  { return b.Construct(ir.T("mat3"), args...) }
func (b *Builder) Mat4(args ...Value) Value  { return b.Construct(ir.T("mat4"), args...) }

// Var declares a named variable initialized from init.
func (b *Builder) Var(name string, init Value) Value {
	return b.declare(name, nil, 0, init)
}

// Const declares a named constant.
func (b *Builder) Const(name string, init Value) Value {
	return b.declare(name, nil, ir.DeclConst, init)
}

// Tracked declares a variable that keeps its name even if it is never read.
func (b *Builder) Tracked(name string, init Value) Value {
	return b.declare(name, nil, ir.DeclTracked, init)
}

func (b *Builder) declare(name string, qualifiers []string, flags ir.DeclFlags, init Value) Value {
	if !init.Valid() {
		return Value{}
	}
	if init.typ.IsVoid() {
		return b.fail(&OverloadError{Kind: KindStatement, Func: "declaration of " + name, Args: []ir.Type{init.typ}})
	}
	id := b.s.Declare(init.typ, name, qualifiers, flags, init.operand())
	return b.value(id, init.typ, kindNamed)
}

// Declare declares a named variable without an initializer.
func (b *Builder) Declare(typ ir.Type, name string, qualifiers ...string) Value {
	return b.value(b.s.Declare(typ, name, qualifiers, 0), typ, kindNamed)
}

// Uniform declares a uniform variable.
func (b *Builder) Uniform(typ ir.Type, name string) Value {
	return b.Declare(typ, name, "uniform")
}

// In declares a stage input; a negative location omits the layout.
func (b *Builder) In(typ ir.Type, name string, location int) Value {
	return b.Declare(typ, name, locationQualifiers("in", location)...)
}

// Out declares a stage output; a negative location omits the layout.
func (b *Builder) Out(typ ir.Type, name string, location int) Value {
	return b.Declare(typ, name, locationQualifiers("out", location)...)
}

func locationQualifiers(storage string, location int) []string {
	if location < 0 {
		return []string{storage}
	}
	return []string{fmt.Sprintf("layout(location = %d)", location), storage}
}

// Sampler declares a texture sampler uniform; a negative binding omits the
// layout.
func (b *Builder) Sampler(typ ir.Type, name string, binding int) Value {
	if binding < 0 {
		return b.Uniform(typ, name)
	}
	return b.Declare(typ, name, fmt.Sprintf("layout(binding = %d)", binding), "uniform")
}

// Builtin names a variable the target language predeclares. It lives in the
// static pool and may be shared between builders.
func (b *Builder) Builtin(typ ir.Type, name string) Value {
	return b.value(build.DeclareStatic(typ, name, ir.DeclBuiltin), typ, kindNamed)
}

// FragCoord is gl_FragCoord.
func (b *Builder) FragCoord() Value { return b.Builtin(ir.T("vec4"), "gl_FragCoord") }

// Call calls a builtin function from the catalog.
func (b *Builder) Call(name string, args ...Value) Value {
	types, ok := typesOf(args)
	if !ok {
		return Value{}
	}
	ret, err := resolveBuiltin(name, types)
	if err != nil {
		return b.fail(err)
	}
	return b.value(b.s.CallBuiltin(ret, name, operands(args)...), ret, kindExpr)
}

// Texture samples s at coord.
func (b *Builder) Texture(s, coord Value) Value { return b.Call("texture", s, coord) }

// Select is cond ? x : y.
func (b *Builder) Select(cond, x, y Value) Value {
	if !cond.Valid() || !x.Valid() || !y.Valid() {
		return Value{}
	}
	if cond.typ != ir.Bool || x.typ != y.typ {
		return b.fail(&OverloadError{Kind: KindOperator, Func: "?:", Args: []ir.Type{cond.typ, x.typ, y.typ}})
	}
	c, l, r := cond.operand(), x.operand(), y.operand()
	return b.value(b.s.Ternary(x.typ, c, l, r), x.typ, kindExpr)
}

func typesOf(vals []Value) ([]ir.Type, bool) {
	out := make([]ir.Type, len(vals))
	for i, v := range vals {
		if !v.Valid() {
			return nil, false
		}
		out[i] = v.typ
	}
	return out, true
}

// operands converts values to operand handles left to right.
func operands(vals []Value) []ir.ExprID {
	out := make([]ir.ExprID, len(vals))
	for i, v := range vals {
		out[i] = v.operand()
	}
	return out
}
