// Package ir holds the node model of a shader program under construction.
//
// Expressions, instructions and blocks live in per-program stores and are
// addressed by handles that carry the generation of the program that made
// them. Payloads are sealed interfaces (ExprData, InstrData) so code that
// walks the tree switches on concrete payload types.
//
// Nodes are never removed. While a session is open the builder appends to
// blocks and if-chains and may set DeclData.Moved; once the session is
// finished the program is read-only.
package ir
