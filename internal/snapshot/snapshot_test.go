package snapshot

import (
	"bytes"
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"shady/internal/build"
	"shady/internal/glsl"
	"shady/internal/ir"
	"shady/internal/samples"
	"shady/internal/testkit"
)

func TestRoundTripRendersIdentically(t *testing.T) {
	for _, s := range samples.All() {
		t.Run(s.Name, func(t *testing.T) {
			p, err := s.Build(build.Options{Storage: ir.StorageBoxed})
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			want, err := glsl.Render(p, nil, glsl.Options{})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			data, err := Marshal(p)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			q, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if q.Gen == p.Gen {
				t.Fatalf("rebuilt program reused generation %d", p.Gen)
			}
			if err := testkit.CheckProgramInvariants(q); err != nil {
				t.Fatalf("rebuilt program: %v", err)
			}
			if q.Mode != ir.StorageBoxed {
				t.Fatalf("storage mode = %s, want boxed", q.Mode)
			}
			got, err := glsl.Render(q, nil, glsl.Options{})
			if err != nil {
				t.Fatalf("render rebuilt: %v", err)
			}
			if got != want {
				t.Fatalf("rebuilt program renders differently\nwant:\n%s\n\ngot:\n%s", want, got)
			}
		})
	}
}

func TestSchemaMismatch(t *testing.T) {
	s, _ := samples.Lookup("gradient")
	p, err := s.Build(build.Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	payload, err := Flatten(p)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	payload.Schema = SchemaVersion + 1
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(payload); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Decode(&buf); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
}

func TestCorruptReferences(t *testing.T) {
	s, _ := samples.Lookup("loops")
	p, err := s.Build(build.Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	cases := map[string]func(*Payload){
		"expr out of range": func(pl *Payload) {
			for i := range pl.Instrs {
				if pl.Instrs[i].Kind == uint8(ir.InstrStatement) {
					pl.Instrs[i].Expr = int64(len(pl.Exprs) + 5)
					return
				}
			}
		},
		"missing root": func(pl *Payload) { pl.Blocks = nil },
		"unknown static": func(pl *Payload) {
			pl.Exprs = append(pl.Exprs, exprRec{Kind: uint8(ir.ExprVarRef), Type: typeRec{Name: "float"}, Refs: []int64{-99}})
		},
	}
	for name, corrupt := range cases {
		t.Run(name, func(t *testing.T) {
			pl, err := Flatten(p)
			if err != nil {
				t.Fatalf("flatten: %v", err)
			}
			corrupt(pl)
			if _, err := Rebuild(pl); !errors.Is(err, ErrCorrupt) {
				t.Fatalf("expected ErrCorrupt, got %v", err)
			}
		})
	}
}

func TestStaticsAreSharedByName(t *testing.T) {
	s, _ := samples.Lookup("gradient")
	p, err := s.Build(build.Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	payload, err := Flatten(p)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if len(payload.Statics) != 1 || payload.Statics[0].Name != "gl_FragCoord" {
		t.Fatalf("statics = %+v", payload.Statics)
	}
	q, err := Rebuild(payload)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	want, _ := ir.Static.Lookup("gl_FragCoord")
	found := false
	for i := uint32(1); i <= q.Exprs.Len(); i++ {
		if ref, ok := q.Exprs.Get(i).Data.(ir.VarRefData); ok && ref.Decl == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("no reference to the shared gl_FragCoord declaration")
	}
}
