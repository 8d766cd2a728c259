package paxos

import (
	"testing"

	"github.com/google/uuid"
	"pgregory.net/rapid"

	"github.com/paxoscore/multipaxos/internal/rolelog"
	"github.com/paxoscore/multipaxos/internal/storage"
	"github.com/paxoscore/multipaxos/internal/transport"
	"github.com/paxoscore/multipaxos/internal/wire"
)

// TestAcceptorMonotonicityProperty checks invariant 4: across any sequence
// of Preparation/Proposal messages an acceptor processes for one instance,
// its promised round never decreases, and its voted value never changes
// unless its vote round strictly increases.
func TestAcceptorMonotonicityProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bus := transport.NewBus()
		proposerGroup := transport.GroupAddress{Host: "239.0.0.5", Port: 9400}
		bus.Join(proposerGroup)
		acceptorTransport := bus.Join(transport.GroupAddress{Host: "239.0.0.6", Port: 9401})
		acc := NewAcceptor[uint64](1, uuid.New(), acceptorTransport, proposerGroup, storage.NewMemoryStore[uint64](), rolelog.New('A', 1))
		sender := uuid.New()

		steps := rapid.SliceOfN(rapid.Custom(func(rt *rapid.T) step {
			return step{
				isProposal: rapid.Bool().Draw(rt, "isProposal"),
				rnd:        rapid.Uint64Range(0, 20).Draw(rt, "rnd"),
				value:      rapid.Uint64Range(0, 100).Draw(rt, "value"),
			}
		}), 0, 50).Draw(rt, "steps")

		var lastRnd, lastVRnd, lastVVal uint64
		var haveVote bool
		for _, s := range steps {
			if s.isProposal {
				acc.HandleProposal(wire.Proposal[uint64]{CRnd: s.rnd, CVal: &s.value, Sender: sender, Instance: 1})
			} else {
				acc.HandlePreparation(wire.Preparation{CRnd: s.rnd, Sender: sender, Instance: 1})
			}

			state := acc.store.Get(1)
			if state.Rnd < lastRnd {
				rt.Fatalf("promised round went backwards: %d then %d", lastRnd, state.Rnd)
			}
			lastRnd = state.Rnd

			if haveVote && state.VVal != lastVVal && state.VRnd <= lastVRnd {
				rt.Fatalf("v_val changed from %d to %d without v_rnd strictly increasing (%d -> %d)",
					lastVVal, state.VVal, lastVRnd, state.VRnd)
			}
			if state.VRnd != 0 {
				lastVRnd, lastVVal, haveVote = state.VRnd, state.VVal, true
			}
		}
	})
}

type step struct {
	isProposal bool
	rnd        uint64
	value      uint64
}
