package eventbus

import (
	"errors"
	"fmt"
)

// Extractor reads one value out of [Arguments], usually into a local variable of a handler.
type Extractor func(a *Arguments) error

// Into returns an [Extractor] that requires key to hold a T, and stores it in target.
// The target parameter cannot be a nil pointer.
func Into[T any](key string, target *T) Extractor {
	if target == nil {
		return func(*Arguments) error {
			return fmt.Errorf("target for argument '%s' is nil pointer", key)
		}
	}
	return func(a *Arguments) error {
		val, err := Get[T](a, key)
		if err != nil {
			return err
		}
		*target = val
		return nil
	}
}

// OptionalInto is like [Into], but leaves target untouched if key is missing.
func OptionalInto[T any](key string, target *T) Extractor {
	if target == nil {
		return Into(key, target)
	}
	return func(a *Arguments) error {
		val, ok, err := GetOptional[T](a, key)
		if err != nil || !ok {
			return err
		}
		*target = val
		return nil
	}
}

// ListInto returns an [Extractor] that requires key to hold a sequence of T, and stores it in target.
func ListInto[T any](key string, target *[]T) Extractor {
	if target == nil {
		return func(*Arguments) error {
			return fmt.Errorf("target for argument '%s' is nil pointer", key)
		}
	}
	return func(a *Arguments) error {
		vals, err := GetList[T](a, key)
		if err != nil {
			return err
		}
		*target = vals
		return nil
	}
}

// Extract applies every [Extractor] to the [Arguments], and returns all failures joined together.
// This is the most convenient way for a handler to read several arguments at once.
func Extract(a *Arguments, extractors ...Extractor) error {
	var errs []error
	for _, extract := range extractors {
		if extract == nil {
			continue
		}
		if err := extract(a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
