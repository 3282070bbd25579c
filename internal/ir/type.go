package ir

import "strconv"

// Type names a target-language type. Array is 0 for non-arrays and -1 for
// runtime-sized arrays.
type Type struct {
	Name  string
	Array int
}

// T is shorthand for a non-array type.
func T(name string) Type { return Type{Name: name} }

// ArrayOf returns t as an array of n elements (-1 for unsized).
func ArrayOf(t Type, n int) Type {
	t.Array = n
	return t
}

func (t Type) IsArray() bool { return t.Array != 0 }

// Elem returns the element type of an array type.
func (t Type) Elem() Type { return Type{Name: t.Name} }

func (t Type) IsVoid() bool { return t.Name == "" || t.Name == "void" }

// ArraySuffix renders the bracket part of an array type, or "".
func (t Type) ArraySuffix() string {
	switch {
	case t.Array > 0:
		return "[" + strconv.Itoa(t.Array) + "]"
	case t.Array < 0:
		return "[]"
	default:
		return ""
	}
}

// String renders the type as it appears in a constructor: float[3].
func (t Type) String() string {
	if t.Name == "" {
		return "void"
	}
	return t.Name + t.ArraySuffix()
}

var (
	Void   = T("void")
	Bool   = T("bool")
	Int    = T("int")
	Uint   = T("uint")
	Float  = T("float")
	Double = T("double")
)
