package paxos

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/paxoscore/multipaxos/internal/transport"
	"github.com/paxoscore/multipaxos/internal/wire"
)

// Learner catches up from proposers on startup, then records learned
// values and emits them to out in strict instance order: value i is
// written only after every value 1..i-1 has been.
type Learner[T comparable] struct {
	id            int
	self          uuid.UUID
	transport     transport.GroupTransport
	proposerGroup transport.GroupAddress
	out           io.Writer
	log           *logrus.Entry

	learnedValues map[uint64]T
	nextToDeliver uint64
}

func NewLearner[T comparable](id int, self uuid.UUID, t transport.GroupTransport, proposerGroup transport.GroupAddress, out io.Writer, log *logrus.Entry) *Learner[T] {
	return &Learner[T]{
		id:            id,
		self:          self,
		transport:     t,
		proposerGroup: proposerGroup,
		out:           out,
		log:           log,
		learnedValues: make(map[uint64]T),
		nextToDeliver: 1,
	}
}

// Run sends a CatchUp to the proposer group and processes Report and
// Learning messages forever.
func (l *Learner[T]) Run() error {
	if err := l.send(wire.NewCatchUp[T](l.self, wire.SenderLearner)); err != nil {
		return err
	}
	for {
		frame, err := l.transport.Receive()
		if err != nil {
			return errors.Wrap(err, "learner receive")
		}
		msg, err := wire.Decode[T](frame)
		if err != nil {
			l.log.WithError(err).Fatal("decode failed")
		}
		switch msg.Phase {
		case wire.PhaseReport:
			l.handleReport(*msg.Report)
		case wire.PhaseLearning:
			l.handleLearning(*msg.Learning)
		default:
			l.log.Debugf("ignoring unexpected variant %s at learner", msg.Phase)
		}
	}
}

func (l *Learner[T]) handleReport(r wire.Report[T]) {
	if r.Receiver != l.self {
		return
	}
	for instance, value := range r.LearnedValues {
		l.record(instance, value)
	}
	l.deliver()
}

func (l *Learner[T]) handleLearning(msg wire.Learning[T]) {
	l.record(msg.Instance, msg.LearnedValue)
	l.deliver()
}

func (l *Learner[T]) record(instance uint64, value T) {
	if existing, ok := l.learnedValues[instance]; ok {
		if existing != value {
			l.log.Fatalf("safety violation: instance %d already learned %v, now %v", instance, existing, value)
		}
		return
	}
	l.learnedValues[instance] = value
}

// deliver emits every value this learner can now account for in order,
// advancing next_to_deliver past each one. A gap (an instance it hasn't
// heard about yet) stops delivery until it is filled.
func (l *Learner[T]) deliver() {
	for {
		value, ok := l.learnedValues[l.nextToDeliver]
		if !ok {
			return
		}
		fmt.Fprintf(l.out, "%v\n", value)
		l.nextToDeliver++
	}
}

func (l *Learner[T]) send(msg wire.Message[T]) error {
	frame, err := wire.Encode(msg)
	if err != nil {
		return errors.Wrap(err, "encode outgoing message")
	}
	if err := l.transport.Send(frame, l.proposerGroup); err != nil {
		l.log.WithError(err).Warn("failed to send message")
		return nil
	}
	l.log.Debugf("-> %s %s", l.proposerGroup, msg.Phase)
	return nil
}
