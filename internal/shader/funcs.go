package shader

import (
	"shady/internal/build"
	"shady/internal/ir"
)

// Param is a function parameter. Qualifiers such as "out" or "inout" are
// written before the type.
type Param struct {
	Type       ir.Type
	Name       string
	Qualifiers []string
}

// Overload is one signature of a function. Body receives the parameters and
// returns the function result, or an invalid Value for void.
type Overload struct {
	Params []Param
	Body   func(args []Value) Value
}

// Function is a declared user function.
type Function struct {
	b    *Builder
	id   ir.InstrID
	name string
	sigs []signature
}

// Func declares a function with a single overload.
func (b *Builder) Func(name string, params []Param, body func(args []Value) Value) *Function {
	return b.Overloads(name, Overload{Params: params, Body: body})
}

// Main declares void main().
func (b *Builder) Main(body func()) *Function {
	return b.Func("main", nil, func([]Value) Value {
		body()
		return Value{}
	})
}

// Overloads declares a function with several signatures. Each body runs
// twice: once with recording suspended to learn its return type and once
// for real.
func (b *Builder) Overloads(name string, ovs ...Overload) *Function {
	f := &Function{b: b, name: name}
	if len(b.returns) > 0 {
		b.fail(&OverloadError{Kind: KindStatement, Func: "function " + name + " declared inside a function"})
		return f
	}
	if len(ovs) == 0 {
		b.fail(&OverloadError{Kind: KindStatement, Func: "function " + name + " has no overloads"})
		return f
	}
	returns := make([]ir.Type, len(ovs))
	counts := make([]int, len(ovs))
	for i, ov := range ovs {
		params := paramTypes(ov.Params)
		for _, sig := range f.sigs {
			if sameTypes(sig.params, params) {
				b.fail(&OverloadError{Kind: KindFunction, Func: name, Args: params, Candidates: len(ovs), Matches: 2})
				return f
			}
		}
		returns[i] = b.probe(ov)
		counts[i] = len(ov.Params)
		f.sigs = append(f.sigs, signature{params: params, ret: returns[i]})
	}

	f.id = b.s.BeginFunc(name, returns, counts)
	for i, ov := range ovs {
		if i > 0 {
			b.s.NextOverload()
		}
		args := make([]Value, len(ov.Params))
		for j, p := range ov.Params {
			args[j] = b.value(b.s.Declare(p.Type, p.Name, p.Qualifiers, 0), p.Type, kindNamed)
		}
		b.returns = append(b.returns, retFrame{typ: returns[i], known: true})
		if v := ov.Body(args); v.Valid() && !returns[i].IsVoid() {
			b.s.AddSpecial(ir.SpecialReturn, v.operand())
		}
		b.returns = b.returns[:len(b.returns)-1]
	}
	b.s.EndFunc()
	return f
}

// probe runs an overload body with recording suspended and reports the type
// of its result.
func (b *Builder) probe(ov Overload) ir.Type {
	b.returns = append(b.returns, retFrame{})
	defer func() { b.returns = b.returns[:len(b.returns)-1] }()
	return b.TypeOf(func() Value {
		args := make([]Value, len(ov.Params))
		for j, p := range ov.Params {
			args[j] = b.value(ir.NoExprID, p.Type, kindNamed)
		}
		return ov.Body(args)
	})
}

func paramTypes(params []Param) []ir.Type {
	out := make([]ir.Type, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}

// Name returns the declared name.
func (f *Function) Name() string { return f.name }

// Call calls the overload whose parameter types match args exactly. A void
// call is recorded as a statement and returns an invalid Value.
func (f *Function) Call(args ...Value) Value {
	b := f.b
	types, ok := typesOf(args)
	if !ok || len(f.sigs) == 0 {
		return Value{}
	}
	var ret ir.Type
	matches := 0
	for _, sig := range f.sigs {
		if sameTypes(sig.params, types) {
			ret = sig.ret
			matches++
		}
	}
	if matches != 1 {
		return b.fail(&OverloadError{Kind: KindFunction, Func: f.name, Args: types, Candidates: len(f.sigs), Matches: matches})
	}
	call := b.s.CallUser(ret, f.id, operands(args)...)
	if ret.IsVoid() {
		b.s.PushExpression(call)
		return Value{}
	}
	return b.value(b.s.Construct(ret, call), ret, kindTemp)
}

// Field is a struct or interface block member.
type Field struct {
	Type       ir.Type
	Name       string
	Qualifiers []string
}

func members(fields []Field) []build.Member {
	out := make([]build.Member, len(fields))
	for i, f := range fields {
		out[i] = build.Member{Type: f.Type, Name: f.Name, Qualifiers: f.Qualifiers}
	}
	return out
}

func duplicateField(fields []Field) string {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return f.Name
		}
		seen[f.Name] = true
	}
	return ""
}

// Struct is a declared struct type.
type Struct struct {
	b      *Builder
	id     ir.InstrID
	name   string
	fields []Field
}

// Struct declares a struct type. Its constructor takes the fields in order.
func (b *Builder) Struct(name string, fields ...Field) *Struct {
	st := &Struct{b: b, name: name, fields: append([]Field(nil), fields...)}
	if _, dup := b.structs[name]; dup {
		b.fail(&OverloadError{Kind: KindStatement, Func: "struct " + name + " declared twice"})
		return st
	}
	if _, builtin := shapeOf(ir.T(name)); builtin || len(fields) == 0 {
		b.fail(&OverloadError{Kind: KindStatement, Func: "struct " + name + " is not a valid struct"})
		return st
	}
	if d := duplicateField(fields); d != "" {
		b.fail(&OverloadError{Kind: KindStatement, Func: "struct " + name + " repeats field " + d})
		return st
	}
	st.id = b.s.AddStruct(name, members(fields))
	b.structs[name] = st
	return st
}

func (st *Struct) Type() ir.Type { return ir.T(st.name) }

// New constructs a value of the struct from its fields in order.
func (st *Struct) New(args ...Value) Value { return st.b.Construct(st.Type(), args...) }

func (st *Struct) fieldTypes() []ir.Type {
	out := make([]ir.Type, len(st.fields))
	for i, f := range st.fields {
		out[i] = f.Type
	}
	return out
}

func (st *Struct) index(name string) int {
	for i, f := range st.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Block is a declared interface block.
type Block struct {
	b        *Builder
	id       ir.InstrID
	name     string
	instance ir.ExprID
	decls    []ir.ExprID
	fields   []Field
}

// InterfaceBlock declares a uniform, buffer, in or out block. With an empty
// instance name the fields are global names.
func (b *Builder) InterfaceBlock(qualifiers []string, name, instance string, fields ...Field) *Block {
	blk := &Block{b: b, name: name, fields: append([]Field(nil), fields...)}
	if d := duplicateField(fields); d != "" || len(fields) == 0 {
		b.fail(&OverloadError{Kind: KindStatement, Func: "interface block " + name + " has invalid fields"})
		return blk
	}
	if instance == "" {
		blk.id, blk.decls = b.s.AddUnnamedInterfaceBlock(qualifiers, name, members(fields))
	} else {
		blk.id, blk.instance = b.s.AddNamedInterfaceBlock(qualifiers, name, instance, 0, members(fields))
	}
	return blk
}

// Field reads a block member by name.
func (blk *Block) Field(name string) Value {
	b := blk.b
	i := -1
	for j, f := range blk.fields {
		if f.Name == name {
			i = j
		}
	}
	if i < 0 {
		return b.fail(&OverloadError{Kind: KindOperator, Func: "." + name, Args: []ir.Type{ir.T(blk.name)}})
	}
	typ := blk.fields[i].Type
	if blk.decls != nil {
		return b.value(blk.decls[i], typ, kindNamed)
	}
	if b.s.Suspended() || !blk.id.IsValid() {
		return b.value(ir.NoExprID, typ, kindExpr)
	}
	return b.value(b.s.Member(blk.id, i, b.s.Ref(blk.instance)), typ, kindExpr)
}
