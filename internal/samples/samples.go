// Package samples holds the demonstration programs the command line renders.
package samples

import (
	"fmt"
	"sort"

	"shady/internal/build"
	"shady/internal/ir"
	"shady/internal/shader"
)

// Sample is a named program recipe.
type Sample struct {
	Name        string
	Description string
	build       func(b *shader.Builder)
}

// Build records the sample into a fresh session.
func (s Sample) Build(opts build.Options) (*ir.Program, error) {
	if opts.Name == "" {
		opts.Name = s.Name
	}
	b := shader.New(opts)
	s.build(b)
	p, err := b.Finish()
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", s.Name, err)
	}
	return p, nil
}

var (
	vec2      = ir.T("vec2")
	vec3      = ir.T("vec3")
	vec4      = ir.T("vec4")
	sampler2D = ir.T("sampler2D")
)

var registry = map[string]Sample{
	"gradient":  {Name: "gradient", Description: "fragment shader blending two colors across the screen", build: gradient},
	"loops":     {Name: "loops", Description: "counted, conditional and infinite loops", build: loops},
	"switch":    {Name: "switch", Description: "palette lookup through a switch", build: palette},
	"overloads": {Name: "overloads", Description: "one function name with two signatures", build: overloads},
	"texture":   {Name: "texture", Description: "sampled texture with a uniform block", build: texture},
	"geometry":  {Name: "geometry", Description: "geometry stage emitting a triangle", build: geometry},
	"compute":   {Name: "compute", Description: "compute stage with a storage block and a barrier", build: compute},
}

// All returns every sample sorted by name.
func All() []Sample {
	out := make([]Sample, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup finds a sample by name.
func Lookup(name string) (Sample, bool) {
	s, ok := registry[name]
	return s, ok
}

func gradient(b *shader.Builder) {
	color := b.Out(vec4, "fragColor", 0)
	resolution := b.Uniform(vec2, "resolution")
	from := b.Const("from", b.Vec3(b.Float(0.1), b.Float(0.2), b.Float(0.6)))
	to := b.Const("to", b.Vec3(b.Float(0.9), b.Float(0.5), b.Float(0.2)))
	b.Main(func() {
		uv := b.Var("uv", b.FragCoord().Swizzle("xy").Div(resolution))
		t := b.Var("t", b.Call("smoothstep", b.Float(0), b.Float(1), uv.Y()))
		color.Set(b.Vec4(b.Call("mix", from, to, t), b.Float(1)))
	})
}

func loops(b *shader.Builder) {
	color := b.Out(vec4, "fragColor", 0)
	steps := b.Uniform(ir.Int, "steps")
	b.Main(func() {
		acc := b.Var("acc", b.Float(0))
		b.For("i", b.Int(0), steps, func(i shader.Value) {
			b.If(i.Mod(b.Int(2)).Eq(b.Int(1)), func() { b.Continue() }).End()
			acc.AddSet(i.To(ir.Float).Mul(b.Float(0.125)))
		})
		b.While(acc.Gt(b.Float(1)), func() {
			acc.SubSet(b.Float(1))
		})
		n := b.Var("n", b.Int(0))
		b.Loop(func() {
			n.Inc()
			b.If(n.Ge(b.Int(8)), func() { b.Break() }).End()
		})
		color.Set(b.Vec4(b.Vec3(acc), n.To(ir.Float).Div(b.Float(8))))
	})
}

func palette(b *shader.Builder) {
	color := b.Out(vec4, "fragColor", 0)
	mode := b.Uniform(ir.Int, "mode")
	b.Main(func() {
		c := b.Var("c", b.Vec3(b.Float(0)))
		b.Switch(mode).
			Case(0, func() {
				c.Set(b.Vec3(b.Float(1), b.Float(0), b.Float(0)))
				b.Break()
			}).
			Case(1, func() {
				c.Set(b.Vec3(b.Float(0), b.Float(1), b.Float(0)))
				b.Break()
			}).
			Default(func() {
				c.Set(b.Vec3(b.Float(0.5)))
			}).
			End()
		color.Set(b.Vec4(c, b.Float(1)))
	})
}

func overloads(b *shader.Builder) {
	color := b.Out(vec4, "fragColor", 0)
	weights := func() shader.Value { return b.Vec3(b.Float(0.2126), b.Float(0.7152), b.Float(0.0722)) }
	luma := b.Overloads("luma",
		shader.Overload{
			Params: []shader.Param{{Type: vec3, Name: "rgb"}},
			Body:   func(a []shader.Value) shader.Value { return b.Call("dot", a[0], weights()) },
		},
		shader.Overload{
			Params: []shader.Param{{Type: vec4, Name: "rgba"}},
			Body: func(a []shader.Value) shader.Value {
				return b.Call("dot", a[0].Swizzle("rgb"), weights()).Mul(a[0].W())
			},
		},
	)
	b.Main(func() {
		base := b.Var("base", b.Vec4(b.Float(0.3), b.Float(0.6), b.Float(0.9), b.Float(1)))
		grey := b.Var("grey", luma.Call(base).Add(luma.Call(base.Swizzle("rgb"))).Mul(b.Float(0.5)))
		color.Set(b.Vec4(b.Vec3(grey), b.Float(1)))
	})
}

func texture(b *shader.Builder) {
	frame := b.InterfaceBlock([]string{"layout(std140)", "uniform"}, "Frame", "frame",
		shader.Field{Type: ir.Float, Name: "time"},
		shader.Field{Type: vec2, Name: "scroll"})
	image := b.Sampler(sampler2D, "image", 0)
	uv := b.In(vec2, "uv", 0)
	color := b.Out(vec4, "fragColor", 0)
	b.Main(func() {
		offset := b.Var("offset", frame.Field("scroll").Mul(frame.Field("time")))
		texel := b.Var("texel", b.Texture(image, uv.Add(offset)))
		b.If(texel.W().Lt(b.Float(0.01)), func() { b.Discard() }).End()
		color.Set(texel)
	})
}

func geometry(b *shader.Builder) {
	pos := b.Builtin(vec4, "gl_Position")
	b.Main(func() {
		b.For("i", b.Int(0), b.Int(3), func(i shader.Value) {
			angle := b.Var("angle", i.To(ir.Float).Mul(b.Float(2.0943951)))
			pos.Set(b.Vec4(b.Call("cos", angle), b.Call("sin", angle), b.Float(0), b.Float(1)))
			b.EmitVertex()
		})
		b.EndPrimitive()
	})
}

func compute(b *shader.Builder) {
	data := b.InterfaceBlock([]string{"layout(std430, binding = 0)", "buffer"}, "Data", "",
		shader.Field{Type: ir.ArrayOf(ir.Float, -1), Name: "values"})
	id := b.Builtin(ir.T("uvec3"), "gl_GlobalInvocationID")
	b.Main(func() {
		i := b.Var("i", id.X().To(ir.Int))
		values := data.Field("values")
		values.At(i).MulSet(b.Float(2))
		b.Barrier()
	})
}
