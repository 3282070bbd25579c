package shader

import (
	"fmt"
	"strings"

	"shady/internal/ir"
)

// ErrorKind says which construct failed to resolve.
type ErrorKind uint8

const (
	KindFunction ErrorKind = iota
	KindOperator
	KindConstructor
	KindStatement
)

// OverloadError reports that no single typed form of a function, operator,
// constructor or statement accepts the given argument types. It is raised
// before any node is allocated for the failing construct.
type OverloadError struct {
	Kind ErrorKind
	Func string
	Args []ir.Type
	// Candidates is how many signatures were considered; Matches how many
	// accepted the arguments (0 for none, >1 for ambiguous).
	Candidates int
	Matches    int
}

func (e *OverloadError) Error() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	args := strings.Join(parts, ", ")
	switch e.Kind {
	case KindOperator:
		return fmt.Sprintf("shader: operator %s is not defined for (%s)", e.Func, args)
	case KindConstructor:
		return fmt.Sprintf("shader: cannot construct %s from (%s)", e.Func, args)
	case KindStatement:
		if len(e.Args) == 0 {
			return "shader: " + e.Func
		}
		return fmt.Sprintf("shader: %s does not accept (%s)", e.Func, args)
	}
	switch {
	case e.Candidates == 0:
		return fmt.Sprintf("shader: unknown function %s(%s)", e.Func, args)
	case e.Matches == 0:
		return fmt.Sprintf("shader: no overload of %s matches (%s); %d candidates", e.Func, args, e.Candidates)
	default:
		return fmt.Sprintf("shader: call to %s(%s) is ambiguous; %d of %d candidates match", e.Func, args, e.Matches, e.Candidates)
	}
}
