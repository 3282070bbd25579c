package samples

import (
	"strings"
	"testing"

	"shady/internal/build"
	"shady/internal/glsl"
	"shady/internal/testkit"
)

func TestEverySampleRenders(t *testing.T) {
	for _, s := range All() {
		t.Run(s.Name, func(t *testing.T) {
			p, err := s.Build(build.Options{})
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if err := testkit.CheckProgramInvariants(p); err != nil {
				t.Fatalf("invariants: %v", err)
			}
			out, err := glsl.Render(p, nil, glsl.Options{})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if !strings.Contains(out, "void main() {") {
				t.Fatalf("no entry point:\n%s", out)
			}
		})
	}
}

func TestGradient(t *testing.T) {
	s, ok := Lookup("gradient")
	if !ok {
		t.Fatal("gradient sample missing")
	}
	p, err := s.Build(build.Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out, err := glsl.Render(p, nil, glsl.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `#version 450 core

layout(location = 0) out vec4 fragColor;
uniform vec2 resolution;
const vec3 from = vec3(0.1, 0.2, 0.6);
const vec3 to = vec3(0.9, 0.5, 0.2);

void main() {
    vec2 uv = gl_FragCoord.xy / resolution;
    float t = smoothstep(0.0, 1.0, uv.y);
    fragColor = vec4(mix(from, to, t), 1.0);
}
`
	if out != want {
		t.Fatalf("output mismatch\nwant:\n%s\n\ngot:\n%s", want, out)
	}
}

func TestSpecialsAndBlocks(t *testing.T) {
	cases := map[string][]string{
		"geometry": {"EmitVertex();", "EndPrimitive();", "gl_Position = vec4(cos(angle), sin(angle), 0.0, 1.0);"},
		"compute":  {"barrier();", "float values[];", "values[i] *= 2.0;"},
		"texture":  {"layout(binding = 0) uniform sampler2D image;", "discard;", "} frame;"},
	}
	for name, wants := range cases {
		s, _ := Lookup(name)
		p, err := s.Build(build.Options{})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		out, err := glsl.Render(p, nil, glsl.Options{})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		for _, w := range wants {
			if !strings.Contains(out, w) {
				t.Errorf("%s: missing %q in\n%s", name, w, out)
			}
		}
	}
}
