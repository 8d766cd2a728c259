// Package paxos implements the four cooperating roles of the protocol:
// Client, Proposer, Acceptor, Learner. Each role owns its state exclusively
// and runs a single-threaded receive loop; no internal locking is used or
// needed (see the concurrency model this mirrors).
package paxos

// ProposerState is the per-instance record a Proposer keeps while driving
// one basic-Paxos execution.
type ProposerState[T comparable] struct {
	Value T

	CRnd uint64
	CVal T

	RndReceived         []uint64
	HighestVRndReceived uint64
	// AssociatedVValReceived is only meaningful once HighestVRndReceived > 0;
	// a round number of 0 means "never set" throughout the protocol.
	AssociatedVValReceived T

	VRndReceived []uint64
}

// Majority is ⌊N/2⌋+1 for N acceptors.
func Majority(n int) int {
	return n/2 + 1
}

// allEqual reports whether every element of xs equals want. An empty slice
// vacuously satisfies this, but the propose/decide algorithms never call
// it before the slice has reached the majority threshold.
func allEqual(xs []uint64, want uint64) bool {
	for _, x := range xs {
		if x != want {
			return false
		}
	}
	return true
}

// optional turns a (round, value) pair into the Option<T> the wire format
// expects: a round of 0 means nothing has been voted yet.
func optional[T comparable](rnd uint64, val T) *T {
	if rnd == 0 {
		return nil
	}
	v := val
	return &v
}

// valueOf reads an Option<T> back out, defaulting to the zero value when
// nothing was sent.
func valueOf[T comparable](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}
