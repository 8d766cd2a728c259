// Package storage abstracts the per-instance state an Acceptor keeps. The
// core has no durable-storage non-goal beyond this: state lives for the
// process lifetime and is not fsynced anywhere: a crash loses it (see the
// failure model this accepts).
package storage

// State is one instance's acceptor record: the highest round promised and,
// if any, the (round, value) pair voted. Rnd/VRnd of 0 mean "never set".
type State[T comparable] struct {
	Rnd  uint64
	VRnd uint64
	VVal T
}

// Store is a per-instance map of acceptor state, keyed by instance number
// and created lazily: Get on an unknown instance returns the zero State,
// which is exactly the "never participated" starting point the algorithm
// expects.
type Store[T comparable] interface {
	Get(instance uint64) State[T]
	Set(instance uint64, state State[T])
}
