package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"shady/internal/ir"
)

// CheckProgramInvariants runs the structural checks every finished program
// must pass:
// 1) the root is block 1, of kind root, without a parent
// 2) every reachable block and instruction is owned by exactly one parent
// 3) every expression handle held by an instruction or block resolves
func CheckProgramInvariants(p *ir.Program) error {
	if p == nil {
		return fmt.Errorf("nil program")
	}
	if p.Root.Gen() != p.Gen || p.Root.Index() != 1 {
		return fmt.Errorf("root %s is not block 1 of generation %d", p.Root, p.Gen)
	}
	root := p.Blocks.Get(1)
	if root == nil || root.Kind != ir.BlockRoot || root.Parent.IsValid() {
		return fmt.Errorf("root block malformed: %+v", root)
	}

	c := &checker{p: p, blocks: make(map[ir.BlockID]bool), instrs: make(map[ir.InstrID]bool)}
	if err := c.block(p.Root); err != nil {
		return err
	}

	reached, err := safecast.Conv[uint32](len(c.blocks))
	if err != nil {
		return fmt.Errorf("block count overflow: %w", err)
	}
	if reached > p.Blocks.Len() {
		return fmt.Errorf("reached %d blocks, only %d allocated", reached, p.Blocks.Len())
	}
	return nil
}

type checker struct {
	p      *ir.Program
	blocks map[ir.BlockID]bool
	instrs map[ir.InstrID]bool
}

func (c *checker) block(id ir.BlockID) error {
	if id.Gen() != c.p.Gen || c.p.Blocks.Get(id.Index()) == nil {
		return fmt.Errorf("dangling block %s", id)
	}
	if c.blocks[id] {
		return fmt.Errorf("block %s reached twice", id)
	}
	c.blocks[id] = true
	b := c.p.Blocks.Get(id.Index())
	if id != c.p.Root && !b.Parent.IsValid() {
		return fmt.Errorf("block %s has no parent", id)
	}
	if b.ForCond.IsValid() {
		if err := c.expr(b.ForCond); err != nil {
			return fmt.Errorf("for condition of %s: %w", id, err)
		}
	}
	for _, in := range b.Instrs {
		if in.Gen() != c.p.Gen || c.p.Instrs.Get(in.Index()) == nil {
			return fmt.Errorf("block %s holds dangling %s", id, in)
		}
		if c.instrs[in] {
			return fmt.Errorf("%s listed twice", in)
		}
		c.instrs[in] = true
		for _, e := range c.p.ExprsOf(in) {
			if err := c.expr(e); err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
		}
		for _, child := range c.p.BlocksOf(in) {
			if err := c.block(child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *checker) expr(id ir.ExprID) error {
	if !id.IsValid() {
		return nil
	}
	if !c.p.Owns(id) {
		return fmt.Errorf("dangling %s", id)
	}
	for _, child := range c.p.Expr(id).Children() {
		if err := c.expr(child); err != nil {
			return err
		}
	}
	return nil
}
