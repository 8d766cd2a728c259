package paxos

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/paxoscore/multipaxos/internal/storage"
	"github.com/paxoscore/multipaxos/internal/transport"
	"github.com/paxoscore/multipaxos/internal/wire"
)

// Acceptor is the voting role: it promises rounds and casts votes,
// following the two rules that make Paxos safe (never break a promise,
// never vote below the highest promise). See HandlePreparation and
// HandleProposal.
type Acceptor[T comparable] struct {
	id            int
	self          uuid.UUID
	transport     transport.GroupTransport
	proposerGroup transport.GroupAddress
	store         storage.Store[T]
	log           *logrus.Entry
}

func NewAcceptor[T comparable](id int, self uuid.UUID, t transport.GroupTransport, proposerGroup transport.GroupAddress, store storage.Store[T], log *logrus.Entry) *Acceptor[T] {
	return &Acceptor[T]{
		id:            id,
		self:          self,
		transport:     t,
		proposerGroup: proposerGroup,
		store:         store,
		log:           log,
	}
}

// Run processes Preparation (Phase1a) and Proposal (Phase2a) messages
// forever; every other variant is logged and discarded.
func (a *Acceptor[T]) Run() error {
	for {
		frame, err := a.transport.Receive()
		if err != nil {
			return errors.Wrap(err, "acceptor receive")
		}
		msg, err := wire.Decode[T](frame)
		if err != nil {
			a.log.WithError(err).Fatal("decode failed")
		}
		switch msg.Phase {
		case wire.PhasePreparation:
			a.HandlePreparation(*msg.Preparation)
		case wire.PhaseProposal:
			a.HandleProposal(*msg.Proposal)
		default:
			a.log.Debugf("ignoring unexpected variant %s at acceptor", msg.Phase)
		}
	}
}

// HandlePreparation implements the promise rule: a c_rnd strictly greater
// than the highest already promised is promised, and the acceptor reports
// back whatever it has previously voted so the proposer can adopt it.
func (a *Acceptor[T]) HandlePreparation(msg wire.Preparation) {
	state := a.store.Get(msg.Instance)
	if msg.CRnd <= state.Rnd {
		return
	}
	state.Rnd = msg.CRnd
	a.store.Set(msg.Instance, state)

	promise := wire.NewPromise(state.Rnd, state.VRnd, optional(state.VRnd, state.VVal), a.self, msg.Sender, msg.Instance)
	a.send(promise)
}

// HandleProposal implements the acceptance rule: a c_rnd at least as high
// as the highest promised is voted. The >= (rather than >) is deliberate:
// an accept at the round the acceptor just promised must succeed. Voting
// also raises the promised round to c_rnd, and a Proposal at the round
// already voted in that carries a different value is dropped, so the voted
// value only ever changes together with a strictly higher v_rnd.
func (a *Acceptor[T]) HandleProposal(msg wire.Proposal[T]) {
	state := a.store.Get(msg.Instance)
	if msg.CRnd < state.Rnd {
		return
	}
	value := valueOf(msg.CVal)
	if state.VRnd != 0 && msg.CRnd == state.VRnd && value != state.VVal {
		return
	}
	state.Rnd = msg.CRnd
	state.VRnd = msg.CRnd
	state.VVal = value
	a.store.Set(msg.Instance, state)

	acceptance := wire.NewAcceptance(state.VRnd, optional(state.VRnd, state.VVal), a.self, msg.Sender, msg.Instance)
	a.send(acceptance)
}

func (a *Acceptor[T]) send(msg wire.Message[T]) {
	frame, err := wire.Encode(msg)
	if err != nil {
		a.log.WithError(err).Fatal("failed to encode outgoing message")
		return
	}
	if err := a.transport.Send(frame, a.proposerGroup); err != nil {
		a.log.WithError(err).Warn("failed to send message")
		return
	}
	a.log.Debugf("-> %s %s instance=%d", a.proposerGroup, msg.Phase, instanceOf(msg))
}

func instanceOf[T any](msg wire.Message[T]) uint64 {
	switch {
	case msg.Promise != nil:
		return msg.Promise.Instance
	case msg.Acceptance != nil:
		return msg.Acceptance.Instance
	default:
		return 0
	}
}
