// Package session provides the FSM-based booking wizard state.
package session

import (
	"errors"
	"fmt"
)

// State represents the current step of the booking wizard.
type State string

const (
	StateIdle       State = "idle"
	StateChooseDate State = "choose_date"
	StateChooseTime State = "choose_time"
	StateEnterName  State = "enter_name"
	StateConfirm    State = "confirm"
	StateBooked     State = "booked"
	StateDeclined   State = "declined"
)

// Terminal reports whether the wizard is finished in this state.
func (s State) Terminal() bool {
	return s == StateIdle || s == StateBooked || s == StateDeclined
}

// Event is a typed wizard input.
type Event string

const (
	EventDateChosen  Event = "date_chosen"
	EventTimeChosen  Event = "time_chosen"
	EventNameEntered Event = "name_entered"
	EventConfirmed   Event = "confirmed"
	EventDeclined    Event = "declined"
	EventBack        Event = "back"
	EventAborted     Event = "aborted"
)

// ErrInvalidTransition is returned when an event is not allowed in a state.
var ErrInvalidTransition = errors.New("invalid transition")

// MinNameLength is the minimal accepted client name length, in characters.
const MinNameLength = 2

// ErrNameTooShort is returned for names shorter than MinNameLength.
var ErrNameTooShort = errors.New("name too short")

// FSM manages state transitions for the booking wizard.
type FSM struct {
	transitions map[State]map[Event]State
}

// NewFSM creates an FSM with the wizard transition table.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[State]map[Event]State{
			StateChooseDate: {
				EventDateChosen: StateChooseTime,
				EventAborted:    StateIdle,
			},
			StateChooseTime: {
				EventTimeChosen: StateEnterName,
				EventBack:       StateChooseDate,
				EventAborted:    StateIdle,
			},
			StateEnterName: {
				EventNameEntered: StateConfirm,
				EventAborted:     StateIdle,
			},
			StateConfirm: {
				EventConfirmed: StateBooked,
				EventDeclined:  StateDeclined,
				EventAborted:   StateIdle,
			},
		},
	}
}

// Next returns the state reached from `from` on event ev.
func (f *FSM) Next(from State, ev Event) (State, error) {
	to, ok := f.transitions[from][ev]
	if !ok {
		return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, from)
	}
	return to, nil
}

// CanFire checks if ev is allowed in state.
func (f *FSM) CanFire(from State, ev Event) bool {
	_, err := f.Next(from, ev)
	return err == nil
}

// Fire applies ev to the session. Payload fields are written only when the
// transition is allowed, so a rejected event leaves the session untouched.
func (f *FSM) Fire(s *Session, ev Event, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	to, err := f.Next(s.step, ev)
	if err != nil {
		return err
	}

	switch ev {
	case EventDateChosen:
		s.date = payload
		s.time = ""
	case EventTimeChosen:
		s.time = payload
	case EventNameEntered:
		if len([]rune(payload)) < MinNameLength {
			return ErrNameTooShort
		}
		s.name = payload
	case EventBack:
		s.time = ""
	}
	s.step = to
	return nil
}
