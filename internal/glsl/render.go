package glsl

import (
	"strings"

	"shady/internal/evalorder"
	"shady/internal/ir"
	"shady/internal/liveness"
)

// Render writes p as GLSL source. ann may be nil, in which case the liveness
// pass runs first. Rendering does not modify p or ann, so rendering the same
// program twice yields identical text.
func Render(p *ir.Program, ann *liveness.Annotations, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	if ann == nil {
		ann = liveness.Analyze(p)
	}
	g := newGenerator(p, ann, opts.withDefaults())
	g.program()
	return g.w.String(), nil
}

type generator struct {
	p     *ir.Program
	ann   *liveness.Annotations
	opts  Options
	w     *Writer
	names *namer

	declNames map[ir.ExprID]string
	funcNames map[ir.InstrID]string
}

func newGenerator(p *ir.Program, ann *liveness.Annotations, opts Options) *generator {
	return &generator{
		p:         p,
		ann:       ann,
		opts:      opts,
		w:         NewWriter(opts.IndentWidth, opts.UseTabs),
		names:     newNamer(),
		declNames: make(map[ir.ExprID]string),
		funcNames: make(map[ir.InstrID]string),
	}
}

// program renders the root block: declarations of types first, then free
// statements, then functions.
func (g *generator) program() {
	g.w.Line(g.opts.versionLine())
	if g.opts.Profile == ProfileES && g.opts.Precision != "" {
		g.w.Line("precision " + g.opts.Precision + " float;")
		g.w.Line("precision " + g.opts.Precision + " int;")
	}
	g.reserveGlobals()

	root := g.p.Block(g.p.Root)
	var types, free, funcs []ir.InstrID
	for _, id := range root.Instrs {
		switch g.p.Instr(id).Kind {
		case ir.InstrStruct, ir.InstrInterfaceBlock:
			types = append(types, id)
		case ir.InstrFunc:
			funcs = append(funcs, id)
		default:
			free = append(free, id)
		}
	}
	for _, id := range types {
		g.w.BlankLine()
		g.instr(id)
	}
	if len(free) > 0 {
		g.w.BlankLine()
		for _, id := range free {
			g.instr(id)
		}
	}
	for _, id := range funcs {
		g.function(id)
	}
}

// reserveGlobals claims names that are printed verbatim so that generated
// names never collide with them.
func (g *generator) reserveGlobals() {
	for _, id := range g.ann.Decls() {
		d := g.p.Decl(id)
		if d == nil {
			continue
		}
		if g.flags(id).Has(ir.DeclUntracked | ir.DeclBuiltin) {
			g.names.reserve(d.Name)
		}
	}
	for _, id := range g.p.Block(g.p.Root).Instrs {
		switch d := g.p.Instr(id).Data.(type) {
		case ir.StructData:
			g.names.reserve(d.Name)
		case ir.InterfaceBlockData:
			g.names.reserve(d.BlockName)
			g.names.reserve(d.Instance)
			if d.Instance == "" {
				for _, m := range d.Members {
					g.names.reserve(g.p.Decl(m).Name)
				}
			}
		case *ir.FuncData:
			g.funcName(id)
		}
	}
}

func (g *generator) flags(decl ir.ExprID) ir.DeclFlags {
	if f, ok := g.ann.Flags(decl); ok {
		return f
	}
	return g.p.Decl(decl).Flags
}

// declName returns the display name of a declaration, choosing it on first
// use.
func (g *generator) declName(id ir.ExprID) string {
	if name, ok := g.declNames[id]; ok {
		return name
	}
	d := g.p.Decl(id)
	var name string
	switch f := g.flags(id); {
	case f.Has(ir.DeclUntracked | ir.DeclBuiltin):
		name = d.Name
		g.names.reserve(name)
	case f.Has(ir.DeclStructMember):
		name = escapeKeyword(sanitize(d.Name))
		g.names.reserve(name)
	case d.Name == "":
		name = g.names.next()
	default:
		name = g.names.call(d.Name)
	}
	g.declNames[id] = name
	return name
}

// funcName returns the name shared by every overload of a function.
func (g *generator) funcName(id ir.InstrID) string {
	if name, ok := g.funcNames[id]; ok {
		return name
	}
	fn := g.p.Func(id)
	var name string
	if fn.Name == "main" {
		name = "main"
		g.names.reserve(name)
	} else {
		name = g.names.call(fn.Name)
	}
	g.funcNames[id] = name
	return name
}

func (g *generator) block(id ir.BlockID) {
	for _, in := range g.p.Block(id).Instrs {
		g.instr(in)
	}
}

// body writes " {", the indented block and the closing brace line.
func (g *generator) body(id ir.BlockID) {
	g.w.Line(" {")
	g.w.IndentPush()
	g.block(id)
	g.w.IndentPop()
	g.w.WriteString("}")
}

func (g *generator) instr(id ir.InstrID) {
	switch d := g.p.Instr(id).Data.(type) {
	case ir.StatementData:
		if text, ok := g.statement(d.Expr); ok {
			g.w.Line(text + ";")
		}
	case *ir.IfData:
		for i, c := range d.Cases {
			switch {
			case i == 0:
				g.w.WriteString("if (" + g.expr(c.Cond, precStatement) + ")")
			case c.Cond.IsValid():
				g.w.WriteString(" else if (" + g.expr(c.Cond, precStatement) + ")")
			default:
				g.w.WriteString(" else")
			}
			g.body(c.Body)
		}
		g.w.Newline()
	case ir.WhileData:
		g.w.WriteString("while (" + g.expr(d.Cond, precStatement) + ")")
		g.body(d.Body)
		g.w.Newline()
	case ir.ForData:
		g.w.WriteString(g.forHeader(d.Args))
		g.body(d.Body)
		g.w.Newline()
	case ir.SwitchData:
		g.w.WriteString("switch (" + g.expr(d.Cond, precStatement) + ")")
		g.body(d.Body)
		g.w.Newline()
	case ir.CaseData:
		if d.Label.IsValid() {
			g.w.Line("case " + g.expr(d.Label, precStatement) + ":")
		} else {
			g.w.Line("default:")
		}
		g.w.IndentPush()
		g.block(d.Body)
		g.w.IndentPop()
	case *ir.FuncData:
		g.function(id)
	case ir.StructData:
		g.w.WriteString("struct " + d.Name)
		g.members(d.Members)
		g.w.Line(";")
	case ir.InterfaceBlockData:
		if len(d.Qualifiers) > 0 {
			g.w.WriteString(strings.Join(d.Qualifiers, " ") + " ")
		}
		g.w.WriteString(d.BlockName)
		g.members(d.Members)
		if d.Instance != "" {
			g.w.WriteString(" " + d.Instance + ir.Type{Array: d.Array}.ArraySuffix())
		}
		g.w.Line(";")
	case ir.SpecialData:
		g.w.Line(g.special(d) + ";")
	}
}

func (g *generator) members(decls []ir.ExprID) {
	g.w.Line(" {")
	g.w.IndentPush()
	for _, m := range decls {
		g.w.Line(g.declaration(m, g.p.Expr(m)) + ";")
	}
	g.w.IndentPop()
	g.w.WriteString("}")
}

func (g *generator) special(d ir.SpecialData) string {
	switch d.Tag {
	case ir.SpecialReturn:
		if d.Value.IsValid() {
			return "return " + g.expr(d.Value, precStatement)
		}
		return "return"
	case ir.SpecialEmitVertex, ir.SpecialEndPrimitive, ir.SpecialBarrier:
		return d.Tag.String() + "()"
	default:
		return d.Tag.String()
	}
}

// statement renders the root expression of a statement without its
// terminator. ok is false when liveness elided the statement.
func (g *generator) statement(id ir.ExprID) (string, bool) {
	e := g.p.Expr(id)
	d, isDecl := e.Decl()
	if !isDecl {
		return g.expr(id, precStatement), true
	}
	f := g.flags(id)
	switch {
	case f.Has(ir.DeclTemporary):
		return "", false
	case f.Has(ir.DeclUntracked):
		g.declName(id)
		return "", false
	case f.Has(ir.DeclUnused):
		if len(d.Args) == 0 {
			return "", false
		}
		return g.initializer(e, d, precStatement), true
	default:
		return g.declaration(id, e), true
	}
}

// declaration renders "qualifiers type name[N] = init".
func (g *generator) declaration(id ir.ExprID, e *ir.Expr) string {
	d, _ := e.Decl()
	var b strings.Builder
	if g.flags(id).Has(ir.DeclConst) && !hasQualifier(d.Qualifiers, "const") {
		b.WriteString("const ")
	}
	for _, q := range d.Qualifiers {
		b.WriteString(q)
		b.WriteByte(' ')
	}
	b.WriteString(e.Type.Name)
	b.WriteByte(' ')
	b.WriteString(g.declName(id))
	b.WriteString(e.Type.ArraySuffix())
	if d.Flags.Has(ir.DeclInitialized) && len(d.Args) > 0 {
		b.WriteString(" = ")
		b.WriteString(g.initializer(e, d, precInitialize))
	}
	return b.String()
}

// initializer renders the value a declaration is built from: its single
// argument when that already has the declared type, a constructor call
// otherwise.
func (g *generator) initializer(e *ir.Expr, d *ir.DeclData, limit int) string {
	if len(d.Args) == 1 && g.p.Expr(d.Args[0]).Type == e.Type {
		return g.expr(d.Args[0], limit)
	}
	return e.Type.String() + "(" + g.args(d.Args) + ")"
}

func hasQualifier(qs []string, q string) bool {
	for _, x := range qs {
		if x == q {
			return true
		}
	}
	return false
}

// forHeader renders the loop header from the classified clauses of args.
func (g *generator) forHeader(args ir.BlockID) string {
	blk := g.p.Block(args)
	var init, cond string
	if blk.ForInit.IsValid() {
		init, _ = g.statement(g.p.Instr(blk.ForInit).Data.(ir.StatementData).Expr) //nolint:errcheck // classified as statement
	}
	if blk.ForCond.IsValid() {
		cond = g.expr(blk.ForCond, precStatement)
	}
	incr := make([]string, 0, len(blk.ForIncr))
	for _, in := range blk.ForIncr {
		e := g.p.Instr(in).Data.(ir.StatementData).Expr //nolint:errcheck // classified as statement
		incr = append(incr, g.expr(e, precArgument))
	}

	var b strings.Builder
	b.WriteString("for (")
	b.WriteString(init)
	b.WriteByte(';')
	if cond != "" {
		b.WriteByte(' ')
		b.WriteString(cond)
	}
	b.WriteByte(';')
	if len(incr) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(incr, ", "))
	}
	b.WriteByte(')')
	return b.String()
}

// function writes every overload of a function, each as its own definition.
func (g *generator) function(id ir.InstrID) {
	fn := g.p.Func(id)
	name := g.funcName(id)
	for _, ov := range fn.Overloads {
		g.w.BlankLine()
		params := make([]string, 0, ov.ParamCount)
		for _, in := range evalorder.Arrange(g.p.Block(ov.Args).Instrs) {
			decl := g.p.Instr(in).Data.(ir.StatementData).Expr //nolint:errcheck // arguments are statements
			params = append(params, g.declaration(decl, g.p.Expr(decl)))
		}
		g.w.WriteString(ov.Return.String() + " " + name + "(" + strings.Join(params, ", ") + ")")
		g.body(ov.Body)
		g.w.Newline()
	}
}
