package eventbus

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrMissingKey    = errors.New("missing argument")
	ErrTypeMismatch  = errors.New("unexpected argument type")
	ErrNotASequence  = errors.New("argument is not a sequence")
	ErrRegistration  = errors.New("failed to register binding")
	ErrInvocation    = errors.New("handler failed")
	ErrHandlerPanic  = errors.New("handler panicked")
	errNilHandler    = errors.New("nil handler func")
	errOwnerPanicked = errors.New("owner panicked while listing bindings")
)

// MissingKeyError is returned by [Arguments] accessors when no value is stored for a key.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%v: '%s'", ErrMissingKey, e.Key)
}

func (e *MissingKeyError) Is(target error) bool {
	return target == ErrMissingKey
}

// TypeMismatchError is returned by [Arguments] accessors when a stored value can't be narrowed to the requested type.
// Index is the offending element position for list accessors, and -1 otherwise.
type TypeMismatchError struct {
	Key   string
	Want  reflect.Type
	Got   reflect.Type
	Index int
	seq   bool
}

func (e *TypeMismatchError) Error() string {
	switch {
	case e.seq:
		return fmt.Sprintf("%v: '%s' holds %v", ErrNotASequence, e.Key, e.Got)
	case e.Index >= 0:
		return fmt.Sprintf("%v: element %d of '%s' is %v, expected %v", ErrTypeMismatch, e.Index, e.Key, e.Got, e.Want)
	default:
		return fmt.Sprintf("%v: '%s' is %v, expected %v", ErrTypeMismatch, e.Key, e.Got, e.Want)
	}
}

// Unwrap makes a not-a-sequence failure match both [ErrNotASequence] and [ErrTypeMismatch].
func (e *TypeMismatchError) Unwrap() []error {
	if e.seq {
		return []error{ErrNotASequence, ErrTypeMismatch}
	}
	return []error{ErrTypeMismatch}
}

func mismatch(key string, want reflect.Type, got any) *TypeMismatchError {
	return &TypeMismatchError{Key: key, Want: want, Got: reflect.TypeOf(got), Index: -1}
}

func notASequence(key string, got any) *TypeMismatchError {
	return &TypeMismatchError{Key: key, Got: reflect.TypeOf(got), Index: -1, seq: true}
}

// RegistrationError reports a binding that couldn't be added during [Dispatcher.Register].
// Other bindings of the same owner are still registered.
type RegistrationError struct {
	Handle  Handle
	Event   string
	Binding string
	Err     error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%v '%s' for event '%s' (%s): %v", ErrRegistration, e.Binding, e.Event, e.Handle, e.Err)
}

func (e *RegistrationError) Unwrap() []error {
	return []error{ErrRegistration, e.Err}
}

// InvocationError reports a handler that returned an error or panicked during [Dispatcher.Execute].
// Panic and Stack are only set if the handler panicked.
type InvocationError struct {
	Handle  Handle
	Event   string
	Binding string
	Err     error
	Panic   any
	Stack   []byte
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%v: '%s' on event '%s' (%s): %v", ErrInvocation, e.Binding, e.Event, e.Handle, e.Err)
}

func (e *InvocationError) Unwrap() []error {
	return []error{ErrInvocation, e.Err}
}

// Panicked reports whether the handler panicked rather than returning an error.
func (e *InvocationError) Panicked() bool {
	return e.Stack != nil
}
