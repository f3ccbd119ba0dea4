package eventbus

import (
	"fmt"
	"reflect"
)

// Key is a typed argument name.
// Declaring keys once, usually with generated code, keeps producers and handlers in agreement about a value's type.
type Key[T any] struct {
	name string
}

// NewKey creates a [Key] for values of type T.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

func (k Key[T]) Name() string {
	return k.name
}

func (k Key[T]) String() string {
	return fmt.Sprintf("%s(%v)", k.name, reflect.TypeFor[T]())
}

// Set stores val in the [Arguments] under this key.
func (k Key[T]) Set(a *Arguments, val T) *Arguments {
	return a.Set(k.name, val)
}

// Get is [Get] for this key.
func (k Key[T]) Get(a *Arguments) (T, error) {
	return Get[T](a, k.name)
}

// GetOptional is [GetOptional] for this key.
func (k Key[T]) GetOptional(a *Arguments) (T, bool, error) {
	return GetOptional[T](a, k.name)
}

// GetOrDefault is [GetOrDefault] for this key.
func (k Key[T]) GetOrDefault(a *Arguments, defaultVal T) (T, error) {
	return GetOrDefault(a, k.name, defaultVal)
}

// ListKey is a typed argument name for a sequence of T.
type ListKey[T any] struct {
	name string
}

// NewListKey creates a [ListKey] for sequences of T.
func NewListKey[T any](name string) ListKey[T] {
	return ListKey[T]{name: name}
}

func (k ListKey[T]) Name() string {
	return k.name
}

func (k ListKey[T]) String() string {
	return fmt.Sprintf("%s([]%v)", k.name, reflect.TypeFor[T]())
}

func (k ListKey[T]) Set(a *Arguments, vals []T) *Arguments {
	return a.Set(k.name, vals)
}

func (k ListKey[T]) Get(a *Arguments) ([]T, error) {
	return GetList[T](a, k.name)
}

func (k ListKey[T]) GetOptional(a *Arguments) ([]T, bool, error) {
	return GetOptionalList[T](a, k.name)
}

func (k ListKey[T]) GetOrDefault(a *Arguments, defaultVal []T) ([]T, error) {
	return GetListOrDefault(a, k.name, defaultVal)
}
