// Package wire defines the message taxonomy exchanged between Paxos roles
// and the codec that puts it on a group transport.
package wire

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Phase tags the variant carried by a Message. Roles dispatch on this field
// and ignore any variant their run loop does not expect.
type Phase uint8

const (
	PhaseRequest Phase = iota
	PhaseCatchUp
	PhaseReport
	PhasePreparation
	PhasePromise
	PhaseNack
	PhaseProposal
	PhaseAcceptance
	PhaseLearning
)

func (p Phase) String() string {
	switch p {
	case PhaseRequest:
		return "Request"
	case PhaseCatchUp:
		return "CatchUp"
	case PhaseReport:
		return "Report"
	case PhasePreparation:
		return "Preparation"
	case PhasePromise:
		return "Promise"
	case PhaseNack:
		return "Nack"
	case PhaseProposal:
		return "Proposal"
	case PhaseAcceptance:
		return "Acceptance"
	case PhaseLearning:
		return "Learning"
	default:
		return "Unknown"
	}
}

// SenderType disambiguates who issued a CatchUp: a learner catching up on
// startup or a late-joining proposer.
type SenderType byte

const (
	SenderProposer SenderType = 'p'
	SenderLearner  SenderType = 'l'
)

// Request is a client's single proposal value (Phase0a).
type Request[T any] struct {
	Value  T
	Sender uuid.UUID
}

// CatchUp asks the proposer group to bring a late joiner up to date
// (Phase0b).
type CatchUp struct {
	Sender     uuid.UUID
	SenderType SenderType
}

// Report answers a CatchUp with a proposer's current view of the world
// (Phase0c).
type Report[T any] struct {
	NumOfInstances uint64
	LearnedValues  map[uint64]T
	Sender         uuid.UUID
	Receiver       uuid.UUID
}

// Preparation is Phase 1a: a proposer asking acceptors to promise c_rnd.
type Preparation struct {
	CRnd     uint64
	Sender   uuid.UUID
	Instance uint64
}

// Promise is Phase 1b: an acceptor's reply to a Preparation it accepted.
type Promise[T any] struct {
	Rnd      uint64
	VRnd     uint64
	VVal     *T
	Sender   uuid.UUID
	Receiver uuid.UUID
	Instance uint64
}

// Nack is Phase 1c, reserved for round-escalation retries. The core never
// emits it; see the open item on the strict all-equal quorum predicate.
type Nack struct {
	VRnd     uint64
	Sender   uuid.UUID
	Receiver uuid.UUID
	Instance uint64
}

// Proposal is Phase 2a: a proposer asking acceptors to vote (c_rnd, c_val).
type Proposal[T any] struct {
	CRnd     uint64
	CVal     *T
	Sender   uuid.UUID
	Instance uint64
}

// Acceptance is Phase 2b: an acceptor's vote for a Proposal it accepted.
type Acceptance[T any] struct {
	VRnd     uint64
	VVal     *T
	Sender   uuid.UUID
	Receiver uuid.UUID
	Instance uint64
}

// Learning is Phase 3: a proposer announcing a value chosen for an
// instance.
type Learning[T any] struct {
	LearnedValue T
	Sender       uuid.UUID
	Instance     uint64
}

// Message is the tagged union that travels the wire. Exactly one of the
// pointer fields matching Phase is populated; the rest are nil and omitted
// from the encoded form.
type Message[T any] struct {
	Phase       Phase          `cbor:"phase"`
	Request     *Request[T]    `cbor:"request,omitempty"`
	CatchUp     *CatchUp       `cbor:"catch_up,omitempty"`
	Report      *Report[T]     `cbor:"report,omitempty"`
	Preparation *Preparation   `cbor:"preparation,omitempty"`
	Promise     *Promise[T]    `cbor:"promise,omitempty"`
	Nack        *Nack          `cbor:"nack,omitempty"`
	Proposal    *Proposal[T]   `cbor:"proposal,omitempty"`
	Acceptance  *Acceptance[T] `cbor:"acceptance,omitempty"`
	Learning    *Learning[T]   `cbor:"learning,omitempty"`
}

func NewRequest[T any](value T, sender uuid.UUID) Message[T] {
	return Message[T]{Phase: PhaseRequest, Request: &Request[T]{Value: value, Sender: sender}}
}

func NewCatchUp[T any](sender uuid.UUID, kind SenderType) Message[T] {
	return Message[T]{Phase: PhaseCatchUp, CatchUp: &CatchUp{Sender: sender, SenderType: kind}}
}

func NewReport[T any](numOfInstances uint64, learnedValues map[uint64]T, sender, receiver uuid.UUID) Message[T] {
	return Message[T]{Phase: PhaseReport, Report: &Report[T]{
		NumOfInstances: numOfInstances,
		LearnedValues:  learnedValues,
		Sender:         sender,
		Receiver:       receiver,
	}}
}

func NewPreparation[T any](cRnd uint64, sender uuid.UUID, instance uint64) Message[T] {
	return Message[T]{Phase: PhasePreparation, Preparation: &Preparation{CRnd: cRnd, Sender: sender, Instance: instance}}
}

func NewPromise[T any](rnd, vRnd uint64, vVal *T, sender, receiver uuid.UUID, instance uint64) Message[T] {
	return Message[T]{Phase: PhasePromise, Promise: &Promise[T]{
		Rnd: rnd, VRnd: vRnd, VVal: vVal, Sender: sender, Receiver: receiver, Instance: instance,
	}}
}

func NewProposal[T any](cRnd uint64, cVal *T, sender uuid.UUID, instance uint64) Message[T] {
	return Message[T]{Phase: PhaseProposal, Proposal: &Proposal[T]{CRnd: cRnd, CVal: cVal, Sender: sender, Instance: instance}}
}

func NewAcceptance[T any](vRnd uint64, vVal *T, sender, receiver uuid.UUID, instance uint64) Message[T] {
	return Message[T]{Phase: PhaseAcceptance, Acceptance: &Acceptance[T]{
		VRnd: vRnd, VVal: vVal, Sender: sender, Receiver: receiver, Instance: instance,
	}}
}

func NewLearning[T any](learnedValue T, sender uuid.UUID, instance uint64) Message[T] {
	return Message[T]{Phase: PhaseLearning, Learning: &Learning[T]{LearnedValue: learnedValue, Sender: sender, Instance: instance}}
}

// Encode serializes a Message to its wire form.
func Encode[T any](msg Message[T]) ([]byte, error) {
	data, err := cbor.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "encode message")
	}
	return data, nil
}

// Decode parses a wire frame back into a Message. A frame that does not
// decode is a fatal transport-layer condition for the caller to handle;
// this function itself only reports the error.
func Decode[T any](data []byte) (Message[T], error) {
	var msg Message[T]
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return Message[T]{}, errors.Wrap(err, "decode message")
	}
	return msg, nil
}
