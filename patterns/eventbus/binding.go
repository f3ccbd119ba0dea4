package eventbus

import (
	"fmt"
	"sync/atomic"
)

// HandlerFunc handles a dispatched event.
// A returned error is reported by the [Dispatcher] without affecting other handlers.
type HandlerFunc func(args *Arguments) error

// Param declares an argument key and the type a handler expects for it.
// This is only a convention for documentation and code generation, the [Dispatcher] never validates it.
type Param struct {
	Key  string
	Type string
}

// Binding associates an event name with the function that should handle it.
// Name is used to identify the binding in logs and errors, and defaults to the event name.
type Binding struct {
	Event  string
	Name   string
	Params []Param
	Func   HandlerFunc
}

// On is a shorthand for creating a [Binding].
func On(event string, fn HandlerFunc, params ...Param) Binding {
	return Binding{
		Event:  event,
		Func:   fn,
		Params: params,
	}
}

// Named returns a copy of the [Binding] with the given name.
func (b Binding) Named(name string) Binding {
	b.Name = name
	return b
}

func (b Binding) label() string {
	if len(b.Name) > 0 {
		return b.Name
	}
	return b.Event
}

// Owner is a component that declares the events it handles.
// Bindings is called once for each [Dispatcher.Register].
type Owner interface {
	Bindings() []Binding
}

// Table is a statically declared [Owner].
type Table []Binding

func (t Table) Bindings() []Binding {
	return t
}

// OwnerFunc is a function that implements [Owner].
type OwnerFunc func() []Binding

func (f OwnerFunc) Bindings() []Binding {
	return f()
}

// Handle identifies the bindings added by one call to [Dispatcher.Register].
// It's the only way to remove them with [Dispatcher.Unregister].
// The zero Handle is never returned from registration.
type Handle struct {
	id uint64
}

var lastHandle atomic.Uint64

func nextHandle() Handle {
	return Handle{id: lastHandle.Add(1)}
}

func (h Handle) ID() uint64 {
	return h.id
}

func (h Handle) Valid() bool {
	return h.id > 0
}

func (h Handle) String() string {
	return fmt.Sprintf("handle#%d", h.id)
}

// binding is the registered form of a [Binding].
// The dispatcher keeps no reference to the owner itself, only to the handler func.
type binding struct {
	handle Handle
	name   string
	fn     HandlerFunc
}
