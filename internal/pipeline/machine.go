package pipeline

import (
	"fmt"

	"hairfluencer/internal/domain"
)

// State is a position in the try-on flow.
type State string

const (
	StateIdle       State = "idle"
	StateSelected   State = "selected"
	StatePhotoReady State = "photo_ready"
	StateSubmitting State = "submitting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Event drives a Machine from one state to the next.
type Event string

const (
	EventSelect       Event = "select"
	EventPhoto        Event = "photo"
	EventSubmit       Event = "submit"
	EventSucceed      Event = "succeed"
	EventFail         Event = "fail"
	EventEncodingFail Event = "encoding_fail"
	EventCancel       Event = "cancel"
	EventReset        Event = "reset"
)

// A photo supplied before a style keeps the machine idle until the style
// arrives, at which point both inputs are present.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventSelect: StateSelected,
		EventPhoto:  StateIdle,
		EventReset:  StateIdle,
	},
	StateSelected: {
		EventSelect: StateSelected,
		EventPhoto:  StatePhotoReady,
		EventReset:  StateIdle,
	},
	StatePhotoReady: {
		EventSelect: StatePhotoReady,
		EventPhoto:  StatePhotoReady,
		EventSubmit: StateSubmitting,
		EventReset:  StateIdle,
	},
	StateSubmitting: {
		EventSucceed:      StateDone,
		EventFail:         StateFailed,
		EventEncodingFail: StateSelected,
		EventCancel:       StatePhotoReady,
		EventReset:        StateIdle,
	},
	StateDone: {
		EventReset: StateIdle,
	},
	StateFailed: {
		EventSelect: StatePhotoReady,
		EventPhoto:  StatePhotoReady,
		EventSubmit: StateSubmitting,
		EventReset:  StateIdle,
	},
}

// Machine tracks the flow state of one session. It is not safe for
// concurrent use; the Coordinator guards it.
type Machine struct {
	state State
}

// NewMachine starts in StateIdle.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// State returns the current state.
func (m *Machine) State() State {
	if m.state == "" {
		return StateIdle
	}
	return m.state
}

// Can reports whether ev is accepted in the current state.
func (m *Machine) Can(ev Event) bool {
	_, ok := transitions[m.State()][ev]
	return ok
}

// Fire applies ev. Rejected events leave the state unchanged.
func (m *Machine) Fire(ev Event) error {
	next, ok := transitions[m.State()][ev]
	if !ok {
		return fmt.Errorf("%w: %s in %s", domain.ErrInvalidTransition, ev, m.State())
	}
	m.state = next
	return nil
}
