package paxos

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/paxoscore/multipaxos/internal/transport"
	"github.com/paxoscore/multipaxos/internal/wire"
)

// Proposer drives Paxos rounds: it allocates new instances from client
// Requests, runs Phase 1/Phase 2 for each instance it owns, and answers
// catch-up requests from late joiners.
type Proposer[T comparable] struct {
	id            int
	self          uuid.UUID
	transport     transport.GroupTransport
	proposerGroup transport.GroupAddress
	acceptorGroup transport.GroupAddress
	learnerGroup  transport.GroupAddress
	majority      int
	log           *logrus.Entry

	states         map[uint64]*ProposerState[T]
	numOfInstances uint64
	learnedValues  map[uint64]T
}

func NewProposer[T comparable](
	id int,
	self uuid.UUID,
	t transport.GroupTransport,
	proposerGroup, acceptorGroup, learnerGroup transport.GroupAddress,
	majority int,
	log *logrus.Entry,
) *Proposer[T] {
	return &Proposer[T]{
		id:            id,
		self:          self,
		transport:     t,
		proposerGroup: proposerGroup,
		acceptorGroup: acceptorGroup,
		learnerGroup:  learnerGroup,
		majority:      majority,
		log:           log,
		states:        make(map[uint64]*ProposerState[T]),
		learnedValues: make(map[uint64]T),
	}
}

// Run sends a CatchUp to the proposer group and then processes messages
// forever. Phase1c (Nack) and Phase2a/Phase1a (acceptor-bound) are never
// expected here and fall through to the default no-op.
func (p *Proposer[T]) Run() error {
	if err := p.send(wire.NewCatchUp[T](p.self, wire.SenderProposer), p.proposerGroup); err != nil {
		return err
	}
	for {
		frame, err := p.transport.Receive()
		if err != nil {
			return errors.Wrap(err, "proposer receive")
		}
		msg, err := wire.Decode[T](frame)
		if err != nil {
			p.log.WithError(err).Fatal("decode failed")
		}
		switch msg.Phase {
		case wire.PhaseRequest:
			p.handleRequest(*msg.Request)
		case wire.PhaseCatchUp:
			p.handleCatchUp(*msg.CatchUp)
		case wire.PhaseReport:
			p.handleReport(*msg.Report)
		case wire.PhasePromise:
			p.handlePromise(*msg.Promise)
		case wire.PhaseAcceptance:
			p.handleAcceptance(*msg.Acceptance)
		default:
			p.log.Debugf("ignoring unexpected variant %s at proposer", msg.Phase)
		}
	}
}

func (p *Proposer[T]) stateFor(instance uint64) *ProposerState[T] {
	s, ok := p.states[instance]
	if !ok {
		s = &ProposerState[T]{}
		p.states[instance] = s
	}
	return s
}

// handleRequest begins a new instance for a client's value: allocate the
// next instance number, bias a fresh round for it, and ask acceptors to
// promise that round.
func (p *Proposer[T]) handleRequest(req wire.Request[T]) {
	p.numOfInstances++
	instance := p.numOfInstances

	state := p.stateFor(instance)
	state.Value = req.Value
	state.CRnd = nextRound(state.CRnd, p.id)

	p.log.Infof("instance %d: starting round %d for value %v", instance, state.CRnd, req.Value)
	p.send(wire.NewPreparation[T](state.CRnd, p.self, instance), p.acceptorGroup)
}

// handleCatchUp answers a late joiner with this proposer's current view,
// addressed back to whichever group the requester listens on.
func (p *Proposer[T]) handleCatchUp(cu wire.CatchUp) {
	if cu.Sender == p.self {
		return
	}
	group := p.proposerGroup
	if cu.SenderType == wire.SenderLearner {
		group = p.learnerGroup
	}
	report := wire.NewReport(p.numOfInstances, copyValues(p.learnedValues), p.self, cu.Sender)
	p.send(report, group)
}

// handleReport adopts a peer's view wholesale. The latest Report to arrive
// wins; this is safe because every correct proposer's view converges to
// the same learned values.
func (p *Proposer[T]) handleReport(r wire.Report[T]) {
	if r.Receiver != p.self {
		return
	}
	p.numOfInstances = r.NumOfInstances
	p.learnedValues = copyValues(r.LearnedValues)
}

func (p *Proposer[T]) handlePromise(msg wire.Promise[T]) {
	if msg.Receiver != p.self {
		return
	}
	p.propose(msg.Instance, msg.Rnd, msg.VRnd, valueOf(msg.VVal))
}

// handleAcceptance runs decide for every Acceptance received regardless of
// its receiver field: historically Acceptance carries one, but every
// proposer that sees it accounts for it (see the receiver-filter note).
func (p *Proposer[T]) handleAcceptance(msg wire.Acceptance[T]) {
	p.decide(msg.Instance, msg.VRnd, valueOf(msg.VVal))
}

// propose is the Phase 1b handler: accumulate Promises for instance i until
// at least a majority have arrived and every one received names
// state.c_rnd (a single mismatched round stalls the instance), adopting
// whatever value the highest
// v_rnd among them reported (or the client's original value if none did).
func (p *Proposer[T]) propose(instance, rnd, vRnd uint64, vVal T) {
	state := p.stateFor(instance)
	state.RndReceived = append(state.RndReceived, rnd)
	if vRnd > state.HighestVRndReceived {
		state.HighestVRndReceived = vRnd
		state.AssociatedVValReceived = vVal
	}

	if len(state.RndReceived) < p.majority {
		return
	}
	if !allEqual(state.RndReceived, state.CRnd) {
		return
	}

	if state.HighestVRndReceived == 0 {
		state.CVal = state.Value
	} else {
		state.CVal = state.AssociatedVValReceived
	}

	cVal := state.CVal
	p.send(wire.NewProposal(state.CRnd, &cVal, p.self, instance), p.acceptorGroup)
}

// decide is the Phase 2b handler: accumulate Acceptances for instance i.
// Once a majority arrives the value is learned; if that majority also
// agrees on state.c_rnd, this proposer announces it to the learner group.
func (p *Proposer[T]) decide(instance, vRnd uint64, vVal T) {
	state := p.stateFor(instance)
	state.VRndReceived = append(state.VRndReceived, vRnd)

	if len(state.VRndReceived) < p.majority {
		return
	}

	if existing, ok := p.learnedValues[instance]; ok {
		if existing != vVal {
			p.log.Fatalf("safety violation: instance %d already learned %v, now %v", instance, existing, vVal)
		}
	} else {
		p.learnedValues[instance] = vVal
	}

	if allEqual(state.VRndReceived, state.CRnd) {
		if vVal != state.CVal {
			p.log.Fatalf("safety violation: instance %d decided %v but proposed c_val was %v", instance, vVal, state.CVal)
		}
		p.send(wire.NewLearning(vVal, p.self, instance), p.learnerGroup)
	}
}

func (p *Proposer[T]) send(msg wire.Message[T], group transport.GroupAddress) error {
	frame, err := wire.Encode(msg)
	if err != nil {
		return errors.Wrap(err, "encode outgoing message")
	}
	if err := p.transport.Send(frame, group); err != nil {
		p.log.WithError(err).Warn("failed to send message")
		return nil
	}
	p.log.Debugf("-> %s %s", group, msg.Phase)
	return nil
}

func copyValues[T any](m map[uint64]T) map[uint64]T {
	out := make(map[uint64]T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
