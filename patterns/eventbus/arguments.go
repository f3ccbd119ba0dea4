package eventbus

import (
	"reflect"
	"slices"
)

// Arguments is the parameter bundle passed to every handler of a single [Dispatcher.Execute] call.
// It carries the emitter, which is whatever triggered the event, and a set of uniquely keyed values of any type.
//
// Producers populate Arguments with [Arguments.Set] before dispatch, and handlers read values back with the typed accessors.
// [Get], [GetList], and the other accessors distinguish between a missing key ([ErrMissingKey]) and a value of the wrong type ([ErrTypeMismatch]).
//
// A key that was set to nil is reported by [Arguments.ContainsKey], but is treated as absent by the typed accessors.
//
// Arguments is not concurrency safe, and is not intended to be reused across events.
type Arguments struct {
	emitter any
	params  map[string]any
}

// NewArguments creates an empty [Arguments] for the given emitter.
// The emitter is stored as-is.
func NewArguments(emitter any) *Arguments {
	return &Arguments{
		emitter: emitter,
		params:  map[string]any{},
	}
}

// Set stores val under key, replacing any previous value.
func (a *Arguments) Set(key string, val any) *Arguments {
	if a.params == nil {
		a.params = map[string]any{}
	}
	a.params[key] = val
	return a
}

// ContainsKey reports whether anything was stored under key, including nil.
func (a *Arguments) ContainsKey(key string) bool {
	_, ok := a.params[key]
	return ok
}

// Len returns the number of stored keys.
func (a *Arguments) Len() int {
	return len(a.params)
}

// Keys returns the stored keys in sorted order.
func (a *Arguments) Keys() []string {
	keys := make([]string, 0, len(a.params))
	for key := range a.params {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// KeysAndTypes returns a snapshot of each stored key mapped to the dynamic type of its value.
// Keys holding nil map to a nil [reflect.Type].
// This is intended for debugging handlers.
func (a *Arguments) KeysAndTypes() map[string]reflect.Type {
	types := make(map[string]reflect.Type, len(a.params))
	for key, val := range a.params {
		types[key] = reflect.TypeOf(val)
	}
	return types
}

// Emitter returns the object that triggered the event.
func (a *Arguments) Emitter() any {
	return a.emitter
}

func (a *Arguments) lookup(key string) (any, bool) {
	val, ok := a.params[key]
	if !ok || val == nil {
		return nil, false
	}
	return val, true
}

// EmitterAs narrows the emitter to T.
// If the emitter is nil or not a T, then a [TypeMismatchError] is returned.
func EmitterAs[T any](a *Arguments) (T, error) {
	val, ok := a.emitter.(T)
	if !ok {
		var zero T
		return zero, mismatch("emitter", reflect.TypeFor[T](), a.emitter)
	}
	return val, nil
}

// Get returns the value stored under key as a T.
// T may be an interface, in which case any value implementing it is accepted.
func Get[T any](a *Arguments, key string) (T, error) {
	val, ok := a.lookup(key)
	if !ok {
		var zero T
		return zero, &MissingKeyError{Key: key}
	}
	return narrow[T](key, val)
}

// GetOptional is like [Get], but a missing key returns false instead of an error.
// A value of the wrong type is still an error.
func GetOptional[T any](a *Arguments, key string) (T, bool, error) {
	val, ok := a.lookup(key)
	if !ok {
		var zero T
		return zero, false, nil
	}
	narrowed, err := narrow[T](key, val)
	if err != nil {
		return narrowed, false, err
	}
	return narrowed, true, nil
}

// GetOrDefault is like [Get], but a missing key returns defaultVal.
// A value of the wrong type is still an error.
func GetOrDefault[T any](a *Arguments, key string, defaultVal T) (T, error) {
	val, ok := a.lookup(key)
	if !ok {
		return defaultVal, nil
	}
	return narrow[T](key, val)
}

// GetList returns the sequence stored under key with every element narrowed to T.
// The stored value may be any slice or array type.
// If the value isn't a sequence, then the error matches both [ErrNotASequence] and [ErrTypeMismatch].
// If any element isn't a T, then no elements are returned.
//
// The returned slice is always a copy, so handlers can't modify the stored sequence through it.
func GetList[T any](a *Arguments, key string) ([]T, error) {
	val, ok := a.lookup(key)
	if !ok {
		return nil, &MissingKeyError{Key: key}
	}
	return narrowList[T](key, val)
}

// GetOptionalList is like [GetList], but a missing key returns false instead of an error.
func GetOptionalList[T any](a *Arguments, key string) ([]T, bool, error) {
	val, ok := a.lookup(key)
	if !ok {
		return nil, false, nil
	}
	list, err := narrowList[T](key, val)
	if err != nil {
		return nil, false, err
	}
	return list, true, nil
}

// GetListOrDefault is like [GetList], but a missing key returns defaultVal.
func GetListOrDefault[T any](a *Arguments, key string, defaultVal []T) ([]T, error) {
	val, ok := a.lookup(key)
	if !ok {
		return defaultVal, nil
	}
	return narrowList[T](key, val)
}

func narrow[T any](key string, val any) (T, error) {
	typed, ok := val.(T)
	if !ok {
		return typed, mismatch(key, reflect.TypeFor[T](), val)
	}
	return typed, nil
}

func narrowList[T any](key string, val any) ([]T, error) {
	switch seq := val.(type) {
	case []T:
		return slices.Clone(seq), nil
	case []any:
		list := make([]T, len(seq))
		for i, el := range seq {
			typed, err := narrowElement[T](key, i, el)
			if err != nil {
				return nil, err
			}
			list[i] = typed
		}
		return list, nil
	}
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, notASequence(key, val)
	}
	list := make([]T, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		typed, err := narrowElement[T](key, i, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		list[i] = typed
	}
	return list, nil
}

func narrowElement[T any](key string, i int, el any) (T, error) {
	typed, ok := el.(T)
	if !ok {
		err := mismatch(key, reflect.TypeFor[T](), el)
		err.Index = i
		return typed, err
	}
	return typed, nil
}
