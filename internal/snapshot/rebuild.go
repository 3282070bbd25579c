package snapshot

import (
	"fmt"

	"shady/internal/ir"
)

type rebuilder struct {
	in      *Payload
	p       *ir.Program
	statics []ir.ExprID
	nExprs  uint32
	nInstrs uint32
	nBlocks uint32
}

// Rebuild turns a payload back into a program with a fresh generation.
// Handles are range-checked; a payload that fails the check yields
// ErrCorrupt.
func Rebuild(in *Payload) (*ir.Program, error) {
	if in.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchema, in.Schema, SchemaVersion)
	}
	if len(in.Blocks) == 0 || ir.BlockKind(in.Blocks[0].Kind) != ir.BlockRoot {
		return nil, fmt.Errorf("%w: missing root block", ErrCorrupt)
	}
	mode := ir.StorageMode(in.Storage)
	if mode != ir.StoragePacked && mode != ir.StorageBoxed {
		return nil, fmt.Errorf("%w: storage mode %d", ErrCorrupt, in.Storage)
	}
	r := &rebuilder{
		in:      in,
		nExprs:  count(len(in.Exprs)),
		nInstrs: count(len(in.Instrs)),
		nBlocks: count(len(in.Blocks)),
	}
	r.p = ir.NewProgram(mode, ir.Hints{
		Exprs:  uint(len(in.Exprs)),
		Instrs: uint(len(in.Instrs)),
		Blocks: uint(len(in.Blocks)),
	})
	for _, s := range in.Statics {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: unnamed static declaration", ErrCorrupt)
		}
		r.statics = append(r.statics, ir.Static.Declare(s.Type.toIR(), s.Name, ir.DeclFlags(s.Flags)))
	}

	// Blocks come first so that instruction payloads can point at them; the
	// root was allocated by NewProgram.
	for i := 1; i < len(in.Blocks); i++ {
		r.p.NewBlock(ir.BlockKind(in.Blocks[i].Kind), ir.NoBlockID)
	}
	for i := range in.Exprs {
		e, err := r.expr(&in.Exprs[i])
		if err != nil {
			return nil, fmt.Errorf("expr %d: %w", i+1, err)
		}
		r.p.NewExpr(e)
	}
	for i := range in.Instrs {
		instr, err := r.instr(&in.Instrs[i])
		if err != nil {
			return nil, fmt.Errorf("instr %d: %w", i+1, err)
		}
		r.p.NewInstr(instr)
	}
	for i := range in.Blocks {
		if err := r.block(r.p.Blocks.Get(count(i+1)), &in.Blocks[i]); err != nil {
			return nil, fmt.Errorf("block %d: %w", i+1, err)
		}
	}
	return r.p, nil
}

func (r *rebuilder) ref(v int64) (ir.ExprID, error) {
	switch {
	case v == 0:
		return ir.NoExprID, nil
	case v < 0:
		i := -v - 1
		if i >= int64(len(r.statics)) {
			return ir.NoExprID, fmt.Errorf("%w: static %d out of range", ErrCorrupt, i)
		}
		return r.statics[i], nil
	case v > int64(r.nExprs):
		return ir.NoExprID, fmt.Errorf("%w: expression %d out of range", ErrCorrupt, v)
	default:
		return ir.MakeExprID(r.p.Gen, uint32(v)), nil //nolint:gosec // bounded by nExprs
	}
}

// need decodes a reference that must be present.
func (r *rebuilder) need(v int64) (ir.ExprID, error) {
	id, err := r.ref(v)
	if err == nil && !id.IsValid() {
		err = fmt.Errorf("%w: missing operand", ErrCorrupt)
	}
	return id, err
}

func (r *rebuilder) refs(vs []int64, want int) ([]ir.ExprID, error) {
	if want >= 0 && len(vs) != want {
		return nil, fmt.Errorf("%w: %d operands, want %d", ErrCorrupt, len(vs), want)
	}
	if len(vs) == 0 {
		return nil, nil
	}
	out := make([]ir.ExprID, len(vs))
	for i, v := range vs {
		id, err := r.need(v)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func (r *rebuilder) instrRef(v uint32, optional bool) (ir.InstrID, error) {
	if v == 0 && optional {
		return ir.NoInstrID, nil
	}
	if v == 0 || v > r.nInstrs {
		return ir.NoInstrID, fmt.Errorf("%w: instruction %d out of range", ErrCorrupt, v)
	}
	return ir.MakeInstrID(r.p.Gen, v), nil
}

func (r *rebuilder) instrRefs(vs []uint32) ([]ir.InstrID, error) {
	if len(vs) == 0 {
		return nil, nil
	}
	out := make([]ir.InstrID, len(vs))
	for i, v := range vs {
		id, err := r.instrRef(v, false)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func (r *rebuilder) blockRef(v uint32) (ir.BlockID, error) {
	if v == 0 || v > r.nBlocks {
		return ir.NoBlockID, fmt.Errorf("%w: block %d out of range", ErrCorrupt, v)
	}
	return ir.MakeBlockID(r.p.Gen, v), nil
}

func (r *rebuilder) expr(rec *exprRec) (ir.Expr, error) {
	e := ir.Expr{Kind: ir.ExprKind(rec.Kind), Type: rec.Type.toIR()}
	var (
		ops []ir.ExprID
		err error
	)
	switch e.Kind {
	case ir.ExprLiteral:
		e.Data = ir.LiteralData{Kind: ir.LiteralKind(rec.Op), Bool: rec.Bool, Int: rec.Int, Uint: rec.Uint, Float: rec.Float}
	case ir.ExprVarRef:
		if ops, err = r.refs(rec.Refs, 1); err == nil {
			e.Data = ir.VarRefData{Decl: ops[0]}
		}
	case ir.ExprUnary:
		if ops, err = r.refs(rec.Refs, 1); err == nil {
			e.Data = ir.UnaryData{Op: ir.UnaryOp(rec.Op), Operand: ops[0]}
		}
	case ir.ExprBinary:
		if ops, err = r.refs(rec.Refs, 2); err == nil {
			e.Data = ir.BinaryData{Op: ir.BinaryOp(rec.Op), Lhs: ops[0], Rhs: ops[1]}
		}
	case ir.ExprTernary:
		if ops, err = r.refs(rec.Refs, 3); err == nil {
			e.Data = ir.TernaryData{Cond: ops[0], A: ops[1], B: ops[2]}
		}
	case ir.ExprDecl:
		if ops, err = r.refs(rec.Refs, -1); err == nil {
			e.Data = &ir.DeclData{
				Name:       rec.Name,
				Flags:      ir.DeclFlags(rec.Flags),
				Qualifiers: rec.Quals,
				Args:       ops,
				Moved:      rec.Moved,
			}
		}
	case ir.ExprIndex:
		if ops, err = r.refs(rec.Refs, 2); err == nil {
			e.Data = ir.IndexData{Base: ops[0], Index: ops[1]}
		}
	case ir.ExprMember:
		var owner ir.InstrID
		if owner, err = r.instrRef(rec.Instr, false); err == nil {
			if ops, err = r.refs(rec.Refs, 1); err == nil {
				e.Data = ir.MemberData{Struct: owner, Member: rec.Member, Base: ops[0]}
			}
		}
	case ir.ExprSwizzle:
		if ops, err = r.refs(rec.Refs, 1); err == nil {
			e.Data = ir.SwizzleData{Components: rec.Comps, Base: ops[0]}
		}
	case ir.ExprBuiltinCall:
		if ops, err = r.refs(rec.Refs, -1); err == nil {
			e.Data = ir.BuiltinCallData{Func: rec.Name, Args: ops}
		}
	case ir.ExprUserCall:
		var fn ir.InstrID
		if fn, err = r.instrRef(rec.Instr, false); err == nil {
			if ops, err = r.refs(rec.Refs, -1); err == nil {
				e.Data = ir.UserCallData{Func: fn, Args: ops}
			}
		}
	case ir.ExprConvert:
		if ops, err = r.refs(rec.Refs, 1); err == nil {
			e.Data = ir.ConvertData{From: rec.From.toIR(), To: e.Type, Operand: ops[0]}
		}
	default:
		err = fmt.Errorf("%w: expression kind %d", ErrCorrupt, rec.Kind)
	}
	return e, err
}

func (r *rebuilder) blocks(vs []uint32, want int) ([]ir.BlockID, error) {
	if len(vs) != want {
		return nil, fmt.Errorf("%w: %d blocks, want %d", ErrCorrupt, len(vs), want)
	}
	out := make([]ir.BlockID, len(vs))
	for i, v := range vs {
		id, err := r.blockRef(v)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func (r *rebuilder) instr(rec *instrRec) (ir.Instr, error) {
	in := ir.Instr{Kind: ir.InstrKind(rec.Kind)}
	var (
		expr ir.ExprID
		blks []ir.BlockID
		err  error
	)
	switch in.Kind {
	case ir.InstrStatement:
		if expr, err = r.need(rec.Expr); err == nil {
			in.Data = ir.StatementData{Expr: expr}
		}
	case ir.InstrIf:
		data := &ir.IfData{}
		if data.Enclosing, err = r.instrRef(rec.Enclosing, true); err != nil {
			break
		}
		if blks, err = r.blocks(rec.Blocks, len(rec.Conds)); err != nil {
			break
		}
		for i, c := range rec.Conds {
			var cond ir.ExprID
			if cond, err = r.ref(c); err != nil {
				break
			}
			data.Cases = append(data.Cases, ir.IfCase{Cond: cond, Body: blks[i]})
		}
		in.Data = data
	case ir.InstrWhile:
		if expr, err = r.need(rec.Expr); err == nil {
			if blks, err = r.blocks(rec.Blocks, 1); err == nil {
				in.Data = ir.WhileData{Cond: expr, Body: blks[0]}
			}
		}
	case ir.InstrFor:
		if blks, err = r.blocks(rec.Blocks, 2); err == nil {
			in.Data = ir.ForData{Args: blks[0], Body: blks[1]}
		}
	case ir.InstrSwitch:
		var enc ir.InstrID
		if expr, err = r.need(rec.Expr); err != nil {
			break
		}
		if enc, err = r.instrRef(rec.Enclosing, true); err != nil {
			break
		}
		if blks, err = r.blocks(rec.Blocks, 1); err == nil {
			in.Data = ir.SwitchData{Cond: expr, Body: blks[0], Enclosing: enc}
		}
	case ir.InstrCase:
		if expr, err = r.ref(rec.Expr); err == nil {
			if blks, err = r.blocks(rec.Blocks, 1); err == nil {
				in.Data = ir.CaseData{Label: expr, Body: blks[0]}
			}
		}
	case ir.InstrFunc:
		fn := &ir.FuncData{Name: rec.Name, ID: rec.FuncID, Overloads: make([]ir.Overload, len(rec.Overloads))}
		for i, ov := range rec.Overloads {
			if blks, err = r.blocks([]uint32{ov.Args, ov.Body}, 2); err != nil {
				break
			}
			fn.Overloads[i] = ir.Overload{Return: ov.Return.toIR(), ParamCount: ov.Params, Args: blks[0], Body: blks[1]}
		}
		in.Data = fn
	case ir.InstrStruct:
		var members []ir.ExprID
		if members, err = r.refs(rec.Members, -1); err == nil {
			in.Data = ir.StructData{Name: rec.Name, Members: members}
		}
	case ir.InstrInterfaceBlock:
		var members []ir.ExprID
		if members, err = r.refs(rec.Members, -1); err == nil {
			in.Data = ir.InterfaceBlockData{
				Qualifiers: rec.Quals,
				BlockName:  rec.Name,
				Instance:   rec.Instance,
				Array:      rec.Array,
				Members:    members,
			}
		}
	case ir.InstrSpecial:
		if expr, err = r.ref(rec.Expr); err == nil {
			in.Data = ir.SpecialData{Tag: ir.SpecialTag(rec.Tag), Value: expr}
		}
	default:
		err = fmt.Errorf("%w: instruction kind %d", ErrCorrupt, rec.Kind)
	}
	return in, err
}

func (r *rebuilder) block(dst *ir.Block, rec *blockRec) error {
	var err error
	dst.Kind = ir.BlockKind(rec.Kind)
	if rec.Parent != 0 {
		if dst.Parent, err = r.blockRef(rec.Parent); err != nil {
			return err
		}
	}
	if dst.Instrs, err = r.instrRefs(rec.Instrs); err != nil {
		return err
	}
	if dst.ForInit, err = r.instrRef(rec.ForInit, true); err != nil {
		return err
	}
	if dst.ForCond, err = r.ref(rec.ForCond); err != nil {
		return err
	}
	dst.ForIncr, err = r.instrRefs(rec.ForIncr)
	return err
}
