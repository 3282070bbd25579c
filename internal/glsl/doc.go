// Package glsl renders a finished program as GLSL source.
//
// Rendering is a read-only walk over the program and its liveness
// annotations. Names are chosen on first use in render order, so identical
// programs produce identical text.
package glsl
