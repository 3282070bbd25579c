package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
	// UnitDone and UnitFailed close a unit; Name is empty.
	UnitDone
	UnitFailed
)

// PhaseEvent describes a phase boundary of one unit.
type PhaseEvent struct {
	Unit    string
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	// Err is set for UnitFailed.
	Err error
}

// PhaseObserver receives phase events emitted by Compile. It may be called
// from several goroutines when units compile in parallel.
type PhaseObserver func(PhaseEvent)
