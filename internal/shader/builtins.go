package shader

import (
	"sort"

	"shady/internal/ir"
)

type signature struct {
	params []ir.Type
	ret    ir.Type
}

var catalog = buildCatalog()

func buildCatalog() map[string][]signature {
	c := make(map[string][]signature)
	add := func(name string, ret ir.Type, params ...ir.Type) {
		c[name] = append(c[name], signature{params: params, ret: ret})
	}
	var (
		vec2, vec3, vec4 = ir.T("vec2"), ir.T("vec3"), ir.T("vec4")
		ivec2            = ir.T("ivec2")
		genF             = []ir.Type{ir.Float, vec2, vec3, vec4}
		genI             = []ir.Type{ir.Int, ivec2, ir.T("ivec3"), ir.T("ivec4")}
		mats             = []ir.Type{ir.T("mat2"), ir.T("mat3"), ir.T("mat4")}
	)

	for _, name := range []string{
		"radians", "degrees", "sin", "cos", "tan", "asin", "acos", "atan",
		"exp", "log", "exp2", "log2", "sqrt", "inversesqrt",
		"abs", "sign", "floor", "ceil", "fract", "normalize",
	} {
		for _, t := range genF {
			add(name, t, t)
		}
	}
	for _, t := range genF {
		add("length", ir.Float, t)
		add("distance", ir.Float, t, t)
		add("dot", ir.Float, t, t)
		for _, name := range []string{"atan", "pow", "mod", "min", "max", "step", "reflect"} {
			add(name, t, t, t)
		}
		for _, name := range []string{"clamp", "mix", "smoothstep"} {
			add(name, t, t, t, t)
		}
		if t == ir.Float {
			continue
		}
		add("mod", t, t, ir.Float)
		add("min", t, t, ir.Float)
		add("max", t, t, ir.Float)
		add("step", t, ir.Float, t)
		add("clamp", t, t, ir.Float, ir.Float)
		add("mix", t, t, t, ir.Float)
		add("smoothstep", t, ir.Float, ir.Float, t)
	}
	for _, t := range genI {
		add("abs", t, t)
		add("min", t, t, t)
		add("max", t, t, t)
		add("clamp", t, t, t, t)
	}
	add("cross", vec3, vec3, vec3)
	for _, m := range mats {
		add("transpose", m, m)
		add("inverse", m, m)
		add("determinant", ir.Float, m)
	}

	add("texture", vec4, ir.T("sampler2D"), vec2)
	add("texture", vec4, ir.T("sampler3D"), vec3)
	add("texture", vec4, ir.T("samplerCube"), vec3)
	add("texture", vec4, ir.T("sampler2DArray"), vec3)
	add("texture", ir.Float, ir.T("sampler2DShadow"), vec3)
	add("textureLod", vec4, ir.T("sampler2D"), vec2, ir.Float)
	add("textureLod", vec4, ir.T("samplerCube"), vec3, ir.Float)
	add("texelFetch", vec4, ir.T("sampler2D"), ivec2, ir.Int)
	add("textureSize", ivec2, ir.T("sampler2D"), ir.Int)
	return c
}

// Builtins lists the names of the functions the catalog knows.
func Builtins() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveBuiltin picks the return type of name(args...).
func resolveBuiltin(name string, args []ir.Type) (ir.Type, error) {
	sigs := catalog[name]
	var ret ir.Type
	matches := 0
	for _, sig := range sigs {
		if sameTypes(sig.params, args) {
			ret = sig.ret
			matches++
		}
	}
	if matches != 1 {
		return ir.Type{}, &OverloadError{
			Kind:       KindFunction,
			Func:       name,
			Args:       append([]ir.Type(nil), args...),
			Candidates: len(sigs),
			Matches:    matches,
		}
	}
	return ret, nil
}
