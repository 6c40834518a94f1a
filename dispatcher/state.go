package dispatcher

import (
	"github.com/xrpl-commons/dapp-wallet/payload"
	"go.uber.org/zap"
)

// State is the position of a request in its lifecycle
type State string

const (
	StateReceived  State = "received"
	StateValidated State = "validated"
	StateBuilt     State = "built"
	StateSigned    State = "signed"
	StateSubmitted State = "submitted"
	StateConfirmed State = "confirmed"
	StateRejected  State = "rejected"
)

// transitions lists the states reachable from each state. Queries go from
// Validated straight to Confirmed; message signing stops after Signed.
var transitions = map[State][]State{
	StateReceived:  {StateValidated, StateRejected},
	StateValidated: {StateBuilt, StateSigned, StateConfirmed, StateRejected},
	StateBuilt:     {StateSigned, StateRejected},
	StateSigned:    {StateSubmitted, StateConfirmed, StateRejected},
	StateSubmitted: {StateConfirmed, StateRejected},
}

// CanTransition reports whether from -> to is a legal step
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// run tracks one request through the state machine
type run struct {
	kind  payload.Kind
	state State

	// known once the transaction is autofilled, reported on rejection
	sequence           *uint32
	lastLedgerSequence *uint32

	logger *zap.Logger
}

func newRun(kind payload.Kind, logger *zap.Logger) *run {
	return &run{
		kind:   kind,
		state:  StateReceived,
		logger: logger.With(zap.String("kind", string(kind))),
	}
}

func (r *run) transition(to State) {
	if !CanTransition(r.state, to) {
		r.logger.DPanic("invalid request state transition",
			zap.String("from", string(r.state)),
			zap.String("to", string(to)))
	}
	r.logger.Debug("request state", zap.String("from", string(r.state)), zap.String("to", string(to)))
	r.state = to
}
