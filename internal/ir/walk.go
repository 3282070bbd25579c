package ir

// BlocksOf returns the blocks an instruction owns, in render order.
func (p *Program) BlocksOf(id InstrID) []BlockID {
	switch d := p.Instr(id).Data.(type) {
	case *IfData:
		out := make([]BlockID, 0, len(d.Cases))
		for _, c := range d.Cases {
			out = append(out, c.Body)
		}
		return out
	case WhileData:
		return []BlockID{d.Body}
	case ForData:
		return []BlockID{d.Args, d.Body}
	case SwitchData:
		return []BlockID{d.Body}
	case CaseData:
		return []BlockID{d.Body}
	case *FuncData:
		out := make([]BlockID, 0, 2*len(d.Overloads))
		for _, ov := range d.Overloads {
			out = append(out, ov.Args, ov.Body)
		}
		return out
	default:
		return nil
	}
}

// ExprsOf returns the expression roots an instruction holds directly.
func (p *Program) ExprsOf(id InstrID) []ExprID {
	switch d := p.Instr(id).Data.(type) {
	case StatementData:
		return []ExprID{d.Expr}
	case *IfData:
		out := make([]ExprID, 0, len(d.Cases))
		for _, c := range d.Cases {
			if c.Cond.IsValid() {
				out = append(out, c.Cond)
			}
		}
		return out
	case WhileData:
		return []ExprID{d.Cond}
	case SwitchData:
		return []ExprID{d.Cond}
	case CaseData:
		if d.Label.IsValid() {
			return []ExprID{d.Label}
		}
		return nil
	case StructData:
		return d.Members
	case InterfaceBlockData:
		return d.Members
	case SpecialData:
		if d.Value.IsValid() {
			return []ExprID{d.Value}
		}
		return nil
	default:
		return nil
	}
}

// WalkBlocks visits every block reachable from root depth-first in source
// order, parents before children.
func (p *Program) WalkBlocks(root BlockID, visit func(BlockID, *Block)) {
	b := p.Block(root)
	visit(root, b)
	for _, in := range b.Instrs {
		for _, child := range p.BlocksOf(in) {
			p.WalkBlocks(child, visit)
		}
	}
}

// WalkExpr visits id and every operand below it, parents first.
func (p *Program) WalkExpr(id ExprID, visit func(ExprID, *Expr)) {
	if !id.IsValid() {
		return
	}
	e := p.Expr(id)
	visit(id, e)
	for _, c := range e.Children() {
		p.WalkExpr(c, visit)
	}
}
