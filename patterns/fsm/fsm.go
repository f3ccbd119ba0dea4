// Package fsm provides a finite state machine where states act on behalf of an owner value.
//
// States are registered by ID, and named transitions move the machine from one state to another.
// Leaving a state calls its Exit method and entering a state calls its Enter method, both with the owner.
//
//go:generate go run ../../cmd/eventgen generate -o events_gen.go events.yaml
package fsm

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/saylorsolutions/eventx/patterns/eventbus"
	"github.com/saylorsolutions/eventx/syncx"
)

var (
	ErrUnknownState   = errors.New("unknown state")
	ErrNoCurrentState = errors.New("no current state")
	ErrInvalidState   = errors.New("invalid state")
)

// State is a state of a [Machine] owned by an O.
type State[O any] interface {
	ID() string
	Enter(owner O)
	Exit(owner O)
	Update(owner O, elapsed time.Duration)
}

// StateFuncs implements [State] with optional functions, so simple states don't need their own type.
type StateFuncs[O any] struct {
	Name     string
	OnEnter  func(owner O)
	OnExit   func(owner O)
	OnUpdate func(owner O, elapsed time.Duration)
}

func (s *StateFuncs[O]) ID() string {
	return s.Name
}

func (s *StateFuncs[O]) Enter(owner O) {
	if s.OnEnter != nil {
		s.OnEnter(owner)
	}
}

func (s *StateFuncs[O]) Exit(owner O) {
	if s.OnExit != nil {
		s.OnExit(owner)
	}
}

func (s *StateFuncs[O]) Update(owner O, elapsed time.Duration) {
	if s.OnUpdate != nil {
		s.OnUpdate(owner, elapsed)
	}
}

// Option configures a [Machine].
type Option[O any] func(m *Machine[O])

// PublishTransitions will execute [FsmTransition] on the dispatcher each time the machine changes state.
// The owner is the emitter, and the from, to, and transition names are passed as arguments.
// The initial state is published with an empty from and transition.
func PublishTransitions[O any](d *eventbus.Dispatcher) Option[O] {
	return func(m *Machine[O]) {
		m.bus = d
	}
}

// Machine is a concurrency-safe finite state machine.
// State callbacks are called while the machine is locked, so they must not call methods of the same [Machine].
type Machine[O any] struct {
	mux         sync.Mutex
	owner       O
	states      map[string]State[O]
	transitions map[string]map[string]string
	current     State[O]
	bus         *eventbus.Dispatcher
}

// New creates a [Machine] without any states for the owner.
func New[O any](owner O, opts ...Option[O]) *Machine[O] {
	m := &Machine[O]{
		owner:       owner,
		states:      map[string]State[O]{},
		transitions: map[string]map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddState adds or replaces the state with the same ID.
func (m *Machine[O]) AddState(state State[O]) error {
	if state == nil || len(state.ID()) == 0 {
		return fmt.Errorf("%w: state must be non-nil and have an ID", ErrInvalidState)
	}
	syncx.LockFunc(&m.mux, func() {
		m.states[state.ID()] = state
	})
	return nil
}

// AddTransition declares that firing the named transition while in state from moves the machine to state to.
// States don't have to be added before they're referenced by a transition.
func (m *Machine[O]) AddTransition(from, name, to string) {
	syncx.LockFunc(&m.mux, func() {
		byName, ok := m.transitions[from]
		if !ok {
			byName = map[string]string{}
			m.transitions[from] = byName
		}
		byName[name] = to
	})
}

// SetInitial enters the given state.
// If the machine already has a current state, then it's exited first.
func (m *Machine[O]) SetInitial(id string) error {
	prev, err := syncx.LockFuncTErr(&m.mux, func() (string, error) {
		next, ok := m.states[id]
		if !ok {
			return "", fmt.Errorf("%w: '%s'", ErrUnknownState, id)
		}
		var prev string
		if m.current != nil {
			prev = m.current.ID()
			m.current.Exit(m.owner)
		}
		m.current = next
		next.Enter(m.owner)
		return prev, nil
	})
	if err != nil {
		return err
	}
	m.publish(prev, id, "")
	return nil
}

// Fire applies the named transition from the current state.
// False is returned if no such transition is declared for the current state.
func (m *Machine[O]) Fire(name string) (bool, error) {
	from, to, err := func() (string, string, error) {
		m.mux.Lock()
		defer m.mux.Unlock()
		if m.current == nil {
			return "", "", ErrNoCurrentState
		}
		from := m.current.ID()
		to, ok := m.transitions[from][name]
		if !ok {
			return "", "", nil
		}
		next, ok := m.states[to]
		if !ok {
			return "", "", fmt.Errorf("%w: transition '%s' from '%s' leads to '%s'", ErrUnknownState, name, from, to)
		}
		m.current.Exit(m.owner)
		m.current = next
		next.Enter(m.owner)
		return from, to, nil
	}()
	if err != nil || len(to) == 0 {
		return false, err
	}
	m.publish(from, to, name)
	return true, nil
}

// Update passes the elapsed time to the current state, if there is one.
func (m *Machine[O]) Update(elapsed time.Duration) {
	syncx.LockFunc(&m.mux, func() {
		if m.current != nil {
			m.current.Update(m.owner, elapsed)
		}
	})
}

// Current returns the ID of the current state, and false if no state has been entered.
func (m *Machine[O]) Current() (string, bool) {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.current == nil {
		return "", false
	}
	return m.current.ID(), true
}

func (m *Machine[O]) publish(from, to, transition string) {
	if m.bus == nil {
		return
	}
	args := eventbus.NewArguments(m.owner)
	FsmTransitionFrom.Set(args, from)
	FsmTransitionTo.Set(args, to)
	FsmTransitionTransition.Set(args, transition)
	m.bus.Execute(FsmTransition, args)
}
