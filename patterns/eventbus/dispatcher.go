package eventbus

import (
	"fmt"
	"log/slog"
	"maps"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saylorsolutions/eventx/structures/set"
	"github.com/saylorsolutions/eventx/syncx"
)

// DispatchHook is called after each [Dispatcher.Execute] that found at least one binding.
type DispatchHook func(event string, bindings, failures int, elapsed time.Duration)

// Option configures a [Dispatcher].
type Option func(d *Dispatcher)

// WithLogger sets the logger used to report registration and handler failures.
// The default is [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// WithErrorHandler sets a function that receives every [RegistrationError] and [InvocationError], in addition to logging.
// This is the way for application code to react to failures, since [Dispatcher.Execute] never returns them.
func WithErrorHandler(handler func(err error)) Option {
	return func(d *Dispatcher) {
		d.onError = handler
	}
}

// WithDispatchHook sets a [DispatchHook].
func WithDispatchHook(hook DispatchHook) Option {
	return func(d *Dispatcher) {
		d.hook = hook
	}
}

type registry = map[string][]binding

// Dispatcher routes named events to the handlers registered for them.
//
// The registry is copy-on-write.
// Mutations are serialized and publish a new registry with a single atomic store, while [Dispatcher.Execute] works from a single atomic load.
// No lock is held while handlers run, so handlers may register, unregister, or execute other events.
type Dispatcher struct {
	mux      sync.Mutex
	registry atomic.Pointer[registry]
	log      *slog.Logger
	onError  func(err error)
	hook     DispatchHook
}

// New creates a [Dispatcher] with an empty registry.
// The zero value is also ready to use, with the default logger and no hooks.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// logger falls back to [slog.Default] so that a zero value Dispatcher is usable.
func (d *Dispatcher) logger() *slog.Logger {
	if d.log == nil {
		return slog.Default()
	}
	return d.log
}

func (d *Dispatcher) snapshot() registry {
	reg := d.registry.Load()
	if reg == nil {
		return nil
	}
	return *reg
}

// mutate must not modify the registry or buckets passed to fn, since they may be in use by Execute.
func (d *Dispatcher) mutate(fn func(current registry) registry) {
	syncx.LockFunc(&d.mux, func() {
		next := fn(d.snapshot())
		d.registry.Store(&next)
	})
}

// Register adds all bindings declared by the [Owner], and returns the [Handle] needed to remove them.
// Event names are not validated, so the empty string is an event like any other.
//
// Invalid bindings are reported as a [RegistrationError] and skipped, the rest are still registered.
// Registering the same owner twice adds its bindings twice, and each registration has its own [Handle].
func (d *Dispatcher) Register(owner Owner) Handle {
	handle := nextHandle()
	if owner == nil {
		d.registrationFailed(&RegistrationError{Handle: handle, Err: fmt.Errorf("nil owner")})
		return handle
	}
	bindings, err := listBindings(owner)
	if err != nil {
		d.registrationFailed(&RegistrationError{Handle: handle, Err: err})
		return handle
	}

	added := map[string][]binding{}
	for _, b := range bindings {
		if b.Func == nil {
			d.registrationFailed(&RegistrationError{Handle: handle, Event: b.Event, Binding: b.label(), Err: errNilHandler})
			continue
		}
		if len(b.Params) > 0 {
			d.logger().Debug("Binding declares parameters", "event", b.Event, "binding", b.label(), "params", b.Params)
		}
		added[b.Event] = append(added[b.Event], binding{
			handle: handle,
			name:   b.label(),
			fn:     b.Func,
		})
	}
	if len(added) == 0 {
		return handle
	}
	d.mutate(func(current registry) registry {
		next := maps.Clone(current)
		if next == nil {
			next = registry{}
		}
		for event, bucket := range added {
			// Clip so appending never writes into a backing array shared with a published snapshot.
			next[event] = append(slices.Clip(next[event]), bucket...)
		}
		return next
	})
	return handle
}

func listBindings(owner Owner) (bindings []Binding, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errOwnerPanicked, r)
		}
	}()
	return owner.Bindings(), nil
}

// RegisterFunc registers a single handler function for an event.
func (d *Dispatcher) RegisterFunc(event string, fn HandlerFunc) Handle {
	return d.Register(Table{On(event, fn)})
}

// Unregister removes every binding added with the [Handle], and returns how many were removed.
// Events left without bindings are removed entirely.
func (d *Dispatcher) Unregister(handle Handle) int {
	var removed int
	d.mutate(func(current registry) registry {
		next := make(registry, len(current))
		for event, bucket := range current {
			kept := slices.DeleteFunc(slices.Clone(bucket), func(b binding) bool {
				return b.handle == handle
			})
			removed += len(bucket) - len(kept)
			if len(kept) > 0 {
				next[event] = kept
			}
		}
		return next
	})
	return removed
}

// Execute calls every handler registered for the event, in registration order.
//
// If there are no handlers for the event, then nothing happens.
// A handler returning an error or panicking is reported as an [InvocationError], and the remaining handlers still run.
// Execute blocks until all handlers have returned, and never propagates handler failures to the caller.
//
// A nil args is replaced with an empty [Arguments].
func (d *Dispatcher) Execute(event string, args *Arguments) {
	bindings := d.snapshot()[event]
	if len(bindings) == 0 {
		return
	}
	if args == nil {
		args = NewArguments(nil)
	}
	var (
		failures int
		start    = time.Now()
	)
	for _, b := range bindings {
		if err := invoke(event, b, args); err != nil {
			failures++
			d.invocationFailed(err)
		}
	}
	if d.hook != nil {
		elapsed := time.Since(start)
		d.guard("dispatch hook", func() {
			d.hook(event, len(bindings), failures, elapsed)
		})
	}
}

func invoke(event string, b binding, args *Arguments) (failure *InvocationError) {
	defer func() {
		if r := recover(); r != nil {
			failure = &InvocationError{
				Handle:  b.handle,
				Event:   event,
				Binding: b.name,
				Err:     fmt.Errorf("%w: %v", ErrHandlerPanic, r),
				Panic:   r,
				Stack:   debug.Stack(),
			}
		}
	}()
	if err := b.fn(args); err != nil {
		return &InvocationError{
			Handle:  b.handle,
			Event:   event,
			Binding: b.name,
			Err:     err,
		}
	}
	return nil
}

func (d *Dispatcher) registrationFailed(err *RegistrationError) {
	d.logger().Error("Failed to register binding", "event", err.Event, "binding", err.Binding, "handle", err.Handle.String(), "error", err.Err)
	d.notify(err)
}

func (d *Dispatcher) invocationFailed(err *InvocationError) {
	if err.Panicked() {
		d.logger().Error("Handler panicked", "event", err.Event, "binding", err.Binding, "handle", err.Handle.String(), "panic", err.Panic, "stack", string(err.Stack))
	} else {
		d.logger().Error("Handler failed", "event", err.Event, "binding", err.Binding, "handle", err.Handle.String(), "error", err.Err)
	}
	d.notify(err)
}

func (d *Dispatcher) notify(err error) {
	if d.onError == nil {
		return
	}
	d.guard("error handler", func() {
		d.onError(err)
	})
}

// guard keeps a panicking callback from interrupting dispatch.
func (d *Dispatcher) guard(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger().Error("Recovered panic in "+name, "panic", r)
		}
	}()
	fn()
}

// HasEvent reports whether any handler is registered for the event.
func (d *Dispatcher) HasEvent(event string) bool {
	_, ok := d.snapshot()[event]
	return ok
}

// EventNames returns the set of events that have at least one handler.
func (d *Dispatcher) EventNames() set.Set[string] {
	return set.FromKeys(d.snapshot())
}

// EventCount returns the number of events that have at least one handler.
func (d *Dispatcher) EventCount() int {
	return len(d.snapshot())
}

// BindingCount returns the number of handlers registered for the event.
func (d *Dispatcher) BindingCount(event string) int {
	return len(d.snapshot()[event])
}

// RemoveEvent drops all handlers for the event, regardless of which registration added them.
func (d *Dispatcher) RemoveEvent(event string) {
	d.mutate(func(current registry) registry {
		if _, ok := current[event]; !ok {
			return current
		}
		next := maps.Clone(current)
		delete(next, event)
		return next
	})
}

// Clear drops all handlers for all events.
func (d *Dispatcher) Clear() {
	d.mutate(func(registry) registry {
		return registry{}
	})
}
