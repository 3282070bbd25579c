// Package evalorder discovers, once per process, the order in which the host
// evaluates call arguments. Builders record function parameters in the order
// their constructors run; the generator uses the discovered order to print
// them in declaration order.
package evalorder

import "sync"

// Order is the argument evaluation order of the host.
type Order uint8

const (
	LeftToRight Order = iota
	RightToLeft
)

func (o Order) String() string {
	if o == RightToLeft {
		return "right-to-left"
	}
	return "left-to-right"
}

var (
	once     sync.Once
	detected Order
)

// Detect returns the cached evaluation order, probing on first use.
func Detect() Order {
	once.Do(func() {
		detected = probe()
	})
	return detected
}

type marker struct{ n int }

func probe() Order {
	var seen []int
	mark := func(n int) marker {
		seen = append(seen, n)
		return marker{n: n}
	}
	observe(mark(0), mark(1), mark(2))
	if len(seen) == 3 && seen[0] == 2 && seen[2] == 0 {
		return RightToLeft
	}
	return LeftToRight
}

//go:noinline
func observe(_, _, _ marker) {}

// Arrange returns items, recorded in construction order, in declaration
// order. The input slice is not modified.
func Arrange[T any](items []T) []T {
	return ArrangeFor(Detect(), items)
}

// ArrangeFor is Arrange with an explicit order.
func ArrangeFor[T any](o Order, items []T) []T {
	out := make([]T, len(items))
	if o == RightToLeft {
		for i, it := range items {
			out[len(items)-1-i] = it
		}
		return out
	}
	copy(out, items)
	return out
}
