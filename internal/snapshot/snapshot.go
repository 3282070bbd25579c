// Package snapshot flattens a finished program into a msgpack payload and
// rebuilds it under a fresh generation. Handles are stored as store indices;
// static-pool declarations are stored by name and re-declared on load.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"shady/internal/ir"
)

// SchemaVersion is bumped whenever Payload changes shape.
const SchemaVersion uint16 = 1

var (
	// ErrSchema is returned for payloads written by another schema version.
	ErrSchema = errors.New("snapshot: unsupported schema version")
	// ErrCorrupt is returned when a payload references nodes it does not hold.
	ErrCorrupt = errors.New("snapshot: corrupt payload")
)

// Payload is the serialized form of a program. Expression references are
// 1-based indices into Exprs; negative values index Statics as -(i+1).
type Payload struct {
	Schema  uint16      `msgpack:"schema"`
	Storage uint8       `msgpack:"storage"`
	Exprs   []exprRec   `msgpack:"exprs"`
	Instrs  []instrRec  `msgpack:"instrs"`
	Blocks  []blockRec  `msgpack:"blocks"`
	Statics []staticRec `msgpack:"statics,omitempty"`
}

type typeRec struct {
	Name  string `msgpack:"n"`
	Array int    `msgpack:"a,omitempty"`
}

func typeOf(t ir.Type) typeRec { return typeRec{Name: t.Name, Array: t.Array} }

func (t typeRec) toIR() ir.Type { return ir.Type{Name: t.Name, Array: t.Array} }

type exprRec struct {
	Kind   uint8    `msgpack:"k"`
	Type   typeRec  `msgpack:"t"`
	Op     uint8    `msgpack:"o,omitempty"`
	Bool   bool     `msgpack:"b,omitempty"`
	Int    int64    `msgpack:"i,omitempty"`
	Uint   uint64   `msgpack:"u,omitempty"`
	Float  float64  `msgpack:"f"`
	Name   string   `msgpack:"n,omitempty"`
	Flags  uint16   `msgpack:"fl,omitempty"`
	Quals  []string `msgpack:"q,omitempty"`
	Moved  bool     `msgpack:"m,omitempty"`
	Refs   []int64  `msgpack:"r,omitempty"`
	Instr  uint32   `msgpack:"in,omitempty"`
	Member int      `msgpack:"mb,omitempty"`
	Comps  []uint8  `msgpack:"c,omitempty"`
	From   typeRec  `msgpack:"from"`
}

type overloadRec struct {
	Return typeRec `msgpack:"ret"`
	Params int     `msgpack:"params"`
	Args   uint32  `msgpack:"args"`
	Body   uint32  `msgpack:"body"`
}

type instrRec struct {
	Kind      uint8         `msgpack:"k"`
	Expr      int64         `msgpack:"e,omitempty"`
	Conds     []int64       `msgpack:"conds,omitempty"`
	Blocks    []uint32      `msgpack:"blocks,omitempty"`
	Enclosing uint32        `msgpack:"enc,omitempty"`
	Name      string        `msgpack:"n,omitempty"`
	FuncID    uint32        `msgpack:"fid,omitempty"`
	Overloads []overloadRec `msgpack:"ovs,omitempty"`
	Members   []int64       `msgpack:"members,omitempty"`
	Quals     []string      `msgpack:"q,omitempty"`
	Instance  string        `msgpack:"inst,omitempty"`
	Array     int           `msgpack:"a,omitempty"`
	Tag       uint8         `msgpack:"tag,omitempty"`
}

type blockRec struct {
	Kind    uint8    `msgpack:"k"`
	Parent  uint32   `msgpack:"p,omitempty"`
	Instrs  []uint32 `msgpack:"in,omitempty"`
	ForInit uint32   `msgpack:"fi,omitempty"`
	ForCond int64    `msgpack:"fc,omitempty"`
	ForIncr []uint32 `msgpack:"fx,omitempty"`
}

type staticRec struct {
	Name  string  `msgpack:"n"`
	Type  typeRec `msgpack:"t"`
	Flags uint16  `msgpack:"fl"`
}

// Encode writes p to w.
func Encode(w io.Writer, p *ir.Program) error {
	payload, err := Flatten(p)
	if err != nil {
		return err
	}
	return msgpack.NewEncoder(w).Encode(payload)
}

// Decode reads a program written by Encode.
func Decode(r io.Reader) (*ir.Program, error) {
	var payload Payload
	if err := msgpack.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	return Rebuild(&payload)
}

// Marshal is Encode into a byte slice.
func Marshal(p *ir.Program) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal is Decode from a byte slice.
func Unmarshal(data []byte) (*ir.Program, error) {
	return Decode(bytes.NewReader(data))
}
