package ir

import (
	"fmt"

	"fortio.org/safecast"
)

// StorageMode selects how a Store lays out its nodes.
type StorageMode uint8

const (
	// StoragePacked keeps nodes in fixed-size contiguous chunks.
	StoragePacked StorageMode = iota
	// StorageBoxed keeps one heap allocation per node. Slower, but every node
	// lives on its own so the race detector and pprof see it separately.
	StorageBoxed
)

// String returns the config spelling of the mode.
func (m StorageMode) String() string {
	switch m {
	case StoragePacked:
		return "packed"
	case StorageBoxed:
		return "boxed"
	default:
		return "unknown"
	}
}

// ParseStorageMode converts a config string to a StorageMode.
func ParseStorageMode(s string) (StorageMode, error) {
	switch s {
	case "", "packed":
		return StoragePacked, nil
	case "boxed":
		return StorageBoxed, nil
	default:
		return StoragePacked, fmt.Errorf("invalid storage mode: %q (expected: packed|boxed)", s)
	}
}

// Store is an append-only node container addressed by 1-based indices.
// Index 0 is never handed out and Get(0) returns nil.
type Store[T any] interface {
	Allocate(value T) uint32
	Get(index uint32) *T
	Len() uint32
}

// NewStore creates a store for the given mode.
func NewStore[T any](mode StorageMode, capHint uint) Store[T] {
	if mode == StorageBoxed {
		return NewBoxedStore[T](capHint)
	}
	return NewPackedStore[T](capHint)
}

const chunkShift = 8
const chunkSize = 1 << chunkShift

// PackedStore stores values in chunks that are never reallocated, so a pointer
// returned by Get stays valid for the lifetime of the store.
type PackedStore[T any] struct {
	chunks [][]T
	n      uint32
}

// NewPackedStore creates a PackedStore; capHint sizes the chunk directory.
func NewPackedStore[T any](capHint uint) *PackedStore[T] {
	return &PackedStore[T]{
		chunks: make([][]T, 0, capHint/chunkSize+1),
	}
}

// Allocate appends value and returns its index (1-based).
func (s *PackedStore[T]) Allocate(value T) uint32 {
	slot := s.n
	c := slot >> chunkShift
	if int(c) == len(s.chunks) {
		s.chunks = append(s.chunks, make([]T, 0, chunkSize))
	}
	s.chunks[c] = append(s.chunks[c], value)
	s.n = checkedNext(s.n)
	return s.n
}

func (s *PackedStore[T]) Get(index uint32) *T {
	if index == 0 || index > s.n {
		return nil
	}
	slot := index - 1
	return &s.chunks[slot>>chunkShift][slot&(chunkSize-1)]
}

func (s *PackedStore[T]) Len() uint32 {
	return s.n
}

// BoxedStore keeps one heap box per node.
type BoxedStore[T any] struct {
	data []*T
}

// NewBoxedStore creates a BoxedStore with capHint initial capacity.
func NewBoxedStore[T any](capHint uint) *BoxedStore[T] {
	return &BoxedStore[T]{
		data: make([]*T, 0, capHint),
	}
}

// Allocate boxes value and returns its index (1-based).
func (s *BoxedStore[T]) Allocate(value T) uint32 {
	box := new(T)
	*box = value
	s.data = append(s.data, box)
	n, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Sprintf("ir: store overflow: %v", err))
	}
	return n
}

func (s *BoxedStore[T]) Get(index uint32) *T {
	if index == 0 || int(index) > len(s.data) {
		return nil
	}
	return s.data[index-1]
}

func (s *BoxedStore[T]) Len() uint32 {
	n, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Sprintf("ir: store overflow: %v", err))
	}
	return n
}

func checkedNext(n uint32) uint32 {
	next, err := safecast.Conv[uint32](uint64(n) + 1)
	if err != nil || next > maxIndex {
		panic(fmt.Sprintf("ir: store overflow at %d nodes", n))
	}
	return next
}
