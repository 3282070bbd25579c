package snapshot

import (
	"fmt"

	"fortio.org/safecast"

	"shady/internal/ir"
)

type flattener struct {
	p       *ir.Program
	out     *Payload
	statics map[ir.ExprID]int64
}

// Flatten converts p into its payload form.
func Flatten(p *ir.Program) (*Payload, error) {
	if p.Root.Index() != 1 {
		return nil, fmt.Errorf("%w: root is block %d", ErrCorrupt, p.Root.Index())
	}
	f := &flattener{
		p:       p,
		out:     &Payload{Schema: SchemaVersion, Storage: uint8(p.Mode)},
		statics: make(map[ir.ExprID]int64),
	}
	for i := uint32(1); i <= p.Exprs.Len(); i++ {
		f.out.Exprs = append(f.out.Exprs, f.expr(p.Exprs.Get(i)))
	}
	for i := uint32(1); i <= p.Instrs.Len(); i++ {
		f.out.Instrs = append(f.out.Instrs, f.instr(p.Instrs.Get(i)))
	}
	for i := uint32(1); i <= p.Blocks.Len(); i++ {
		f.out.Blocks = append(f.out.Blocks, f.block(p.Blocks.Get(i)))
	}
	return f.out, nil
}

// ref encodes an expression handle.
func (f *flattener) ref(id ir.ExprID) int64 {
	switch id.Pool() {
	case ir.PoolNone:
		return 0
	case ir.PoolStatic:
		if r, ok := f.statics[id]; ok {
			return r
		}
		e := ir.Static.Get(id)
		d, _ := e.Decl()
		f.out.Statics = append(f.out.Statics, staticRec{Name: d.Name, Type: typeOf(e.Type), Flags: uint16(d.Flags)})
		r := -int64(len(f.out.Statics))
		f.statics[id] = r
		return r
	default:
		return int64(id.Index())
	}
}

func (f *flattener) refs(ids []ir.ExprID) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = f.ref(id)
	}
	return out
}

func (f *flattener) expr(e *ir.Expr) exprRec {
	rec := exprRec{Kind: uint8(e.Kind), Type: typeOf(e.Type)}
	switch d := e.Data.(type) {
	case ir.LiteralData:
		rec.Op = uint8(d.Kind)
		rec.Bool, rec.Int, rec.Uint, rec.Float = d.Bool, d.Int, d.Uint, d.Float
	case ir.VarRefData:
		rec.Refs = f.refs([]ir.ExprID{d.Decl})
	case ir.UnaryData:
		rec.Op = uint8(d.Op)
		rec.Refs = f.refs([]ir.ExprID{d.Operand})
	case ir.BinaryData:
		rec.Op = uint8(d.Op)
		rec.Refs = f.refs([]ir.ExprID{d.Lhs, d.Rhs})
	case ir.TernaryData:
		rec.Refs = f.refs([]ir.ExprID{d.Cond, d.A, d.B})
	case *ir.DeclData:
		rec.Name = d.Name
		rec.Flags = uint16(d.Flags)
		rec.Quals = d.Qualifiers
		rec.Moved = d.Moved
		rec.Refs = f.refs(d.Args)
	case ir.IndexData:
		rec.Refs = f.refs([]ir.ExprID{d.Base, d.Index})
	case ir.MemberData:
		rec.Instr = d.Struct.Index()
		rec.Member = d.Member
		rec.Refs = f.refs([]ir.ExprID{d.Base})
	case ir.SwizzleData:
		rec.Comps = d.Components
		rec.Refs = f.refs([]ir.ExprID{d.Base})
	case ir.BuiltinCallData:
		rec.Name = d.Func
		rec.Refs = f.refs(d.Args)
	case ir.UserCallData:
		rec.Instr = d.Func.Index()
		rec.Refs = f.refs(d.Args)
	case ir.ConvertData:
		rec.From = typeOf(d.From)
		rec.Refs = f.refs([]ir.ExprID{d.Operand})
	}
	return rec
}

func blockIndices(ids []ir.BlockID) []uint32 {
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = id.Index()
	}
	return out
}

func instrIndices(ids []ir.InstrID) []uint32 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = id.Index()
	}
	return out
}

func (f *flattener) instr(in *ir.Instr) instrRec {
	rec := instrRec{Kind: uint8(in.Kind)}
	switch d := in.Data.(type) {
	case ir.StatementData:
		rec.Expr = f.ref(d.Expr)
	case *ir.IfData:
		rec.Enclosing = d.Enclosing.Index()
		for _, c := range d.Cases {
			rec.Conds = append(rec.Conds, f.ref(c.Cond))
			rec.Blocks = append(rec.Blocks, c.Body.Index())
		}
	case ir.WhileData:
		rec.Expr = f.ref(d.Cond)
		rec.Blocks = blockIndices([]ir.BlockID{d.Body})
	case ir.ForData:
		rec.Blocks = blockIndices([]ir.BlockID{d.Args, d.Body})
	case ir.SwitchData:
		rec.Expr = f.ref(d.Cond)
		rec.Enclosing = d.Enclosing.Index()
		rec.Blocks = blockIndices([]ir.BlockID{d.Body})
	case ir.CaseData:
		rec.Expr = f.ref(d.Label)
		rec.Blocks = blockIndices([]ir.BlockID{d.Body})
	case *ir.FuncData:
		rec.Name = d.Name
		rec.FuncID = d.ID
		for _, ov := range d.Overloads {
			rec.Overloads = append(rec.Overloads, overloadRec{
				Return: typeOf(ov.Return),
				Params: ov.ParamCount,
				Args:   ov.Args.Index(),
				Body:   ov.Body.Index(),
			})
		}
	case ir.StructData:
		rec.Name = d.Name
		rec.Members = f.refs(d.Members)
	case ir.InterfaceBlockData:
		rec.Name = d.BlockName
		rec.Quals = d.Qualifiers
		rec.Instance = d.Instance
		rec.Array = d.Array
		rec.Members = f.refs(d.Members)
	case ir.SpecialData:
		rec.Tag = uint8(d.Tag)
		rec.Expr = f.ref(d.Value)
	}
	return rec
}

func (f *flattener) block(b *ir.Block) blockRec {
	return blockRec{
		Kind:    uint8(b.Kind),
		Parent:  b.Parent.Index(),
		Instrs:  instrIndices(b.Instrs),
		ForInit: b.ForInit.Index(),
		ForCond: f.ref(b.ForCond),
		ForIncr: instrIndices(b.ForIncr),
	}
}

// count converts a record count for handle arithmetic.
func count(n int) uint32 {
	c, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Sprintf("snapshot: %d records overflow a handle index", n))
	}
	return c
}
