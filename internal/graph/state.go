package graph

import (
	"fmt"

	"github.com/obonovai/graphonauts/internal/types"
)

// State is an adapter lifecycle state.
type State int

const (
	StateUnconnected State = iota
	StateConnected
	StateSchemaProvisioned
	StateLoaded
	StateCleared
)

var stateNames = map[State]string{
	StateUnconnected:       "unconnected",
	StateConnected:         "connected",
	StateSchemaProvisioned: "schema-provisioned",
	StateLoaded:            "loaded",
	StateCleared:           "cleared",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// lifecycle enforces the adapter state machine. Adapters embed it and call require
// before touching the network, then advance after the call succeeded.
type lifecycle struct {
	backend Backend
	state   State
}

// State returns the current state.
func (l *lifecycle) State() State { return l.state }

// require fails with a precondition error unless the state is one of allowed.
func (l *lifecycle) require(op string, allowed ...State) error {
	for _, s := range allowed {
		if l.state == s {
			return nil
		}
	}
	return types.NewError(ErrCodeGraphPreconditionFailed,
		fmt.Sprintf("%s: %s not allowed in state %s", l.backend, op, l.state))
}

func (l *lifecycle) requireConnected(op string) error {
	return l.require(op, StateConnected, StateSchemaProvisioned, StateLoaded, StateCleared)
}

func (l *lifecycle) requireProvisioned(op string) error {
	return l.require(op, StateSchemaProvisioned, StateLoaded)
}

func (l *lifecycle) connected() {
	if l.state == StateUnconnected {
		l.state = StateConnected
	}
}

// provisioned keeps Loaded so re-provisioning a loaded namespace does not hide its data.
func (l *lifecycle) provisioned() {
	if l.state != StateLoaded {
		l.state = StateSchemaProvisioned
	}
}

// MarkLoaded moves a provisioned adapter to Loaded.
func (l *lifecycle) MarkLoaded() error {
	if err := l.requireProvisioned("mark loaded"); err != nil {
		return err
	}
	l.state = StateLoaded
	return nil
}

func (l *lifecycle) cleared() { l.state = StateCleared }

func (l *lifecycle) closed() { l.state = StateUnconnected }
