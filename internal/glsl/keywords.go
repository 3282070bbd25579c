package glsl

// keywords holds GLSL reserved words and type names a declaration may not
// use, including words reserved for future use.
var keywords = map[string]struct{}{
	"attribute": {}, "const": {}, "uniform": {}, "varying": {}, "buffer": {}, "shared": {},
	"coherent": {}, "volatile": {}, "restrict": {}, "readonly": {}, "writeonly": {},
	"atomic_uint": {}, "layout": {}, "centroid": {}, "flat": {}, "smooth": {},
	"noperspective": {}, "patch": {}, "sample": {}, "precise": {}, "subroutine": {},
	"invariant": {}, "precision": {}, "highp": {}, "mediump": {}, "lowp": {},
	"in": {}, "out": {}, "inout": {},

	"break": {}, "continue": {}, "do": {}, "for": {}, "while": {}, "switch": {},
	"case": {}, "default": {}, "if": {}, "else": {}, "discard": {}, "return": {},
	"true": {}, "false": {}, "struct": {},

	"void": {}, "bool": {}, "int": {}, "uint": {}, "float": {}, "double": {},
	"vec2": {}, "vec3": {}, "vec4": {},
	"ivec2": {}, "ivec3": {}, "ivec4": {},
	"uvec2": {}, "uvec3": {}, "uvec4": {},
	"bvec2": {}, "bvec3": {}, "bvec4": {},
	"dvec2": {}, "dvec3": {}, "dvec4": {},
	"mat2": {}, "mat3": {}, "mat4": {},
	"mat2x2": {}, "mat2x3": {}, "mat2x4": {},
	"mat3x2": {}, "mat3x3": {}, "mat3x4": {},
	"mat4x2": {}, "mat4x3": {}, "mat4x4": {},
	"dmat2": {}, "dmat3": {}, "dmat4": {},

	"sampler1D": {}, "sampler2D": {}, "sampler3D": {}, "samplerCube": {},
	"sampler2DShadow": {}, "samplerCubeShadow": {}, "sampler2DArray": {},
	"sampler2DArrayShadow": {}, "samplerBuffer": {}, "sampler2DMS": {},
	"isampler2D": {}, "isampler3D": {}, "usampler2D": {}, "usampler3D": {},
	"image2D": {}, "image3D": {}, "iimage2D": {}, "uimage2D": {},

	// Reserved for future use.
	"common": {}, "partition": {}, "active": {}, "asm": {}, "class": {}, "union": {},
	"enum": {}, "typedef": {}, "template": {}, "this": {}, "resource": {}, "goto": {},
	"inline": {}, "noinline": {}, "public": {}, "static": {}, "extern": {},
	"external": {}, "interface": {}, "long": {}, "short": {}, "half": {}, "fixed": {},
	"unsigned": {}, "superp": {}, "input": {}, "output": {},
	"hvec2": {}, "hvec3": {}, "hvec4": {}, "fvec2": {}, "fvec3": {}, "fvec4": {},
	"filter": {}, "sizeof": {}, "cast": {}, "namespace": {}, "using": {},

	// Entry point; only a function may take it.
	"main": {},
}

// escapeKeyword appends an underscore to reserved words.
func escapeKeyword(name string) string {
	if _, ok := keywords[name]; ok {
		return name + "_"
	}
	return name
}
