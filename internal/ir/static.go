package ir

import (
	"fmt"
	"sync"
)

// StaticPool holds declarations that outlive every build session, such as
// target-language builtin variables. It is safe for concurrent use.
type StaticPool struct {
	mu    sync.RWMutex
	exprs Store[Expr]
	names map[string]ExprID
}

// Static is the process-wide static pool.
var Static = &StaticPool{
	exprs: NewPackedStore[Expr](64),
	names: make(map[string]ExprID),
}

// Declare adds a declaration to the pool. Declaring the same name twice
// returns the first handle.
func (s *StaticPool) Declare(typ Type, name string, flags DeclFlags) ExprID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != "" {
		if id, ok := s.names[name]; ok {
			return id
		}
	}
	idx := s.exprs.Allocate(Expr{
		Kind: ExprDecl,
		Type: typ,
		Data: &DeclData{Name: name, Flags: flags},
	})
	id := MakeExprID(StaticGeneration, idx)
	if name != "" {
		s.names[name] = id
	}
	return id
}

// Lookup finds a static declaration by name.
func (s *StaticPool) Lookup(name string) (ExprID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.names[name]
	return id, ok
}

// Get dereferences a static handle; nil when it does not resolve.
func (s *StaticPool) Get(id ExprID) *Expr {
	if id.Gen() != StaticGeneration {
		panic(fmt.Sprintf("ir: %s is not a static handle", id))
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exprs.Get(id.Index())
}
