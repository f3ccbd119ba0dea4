package assert

import (
	"fmt"
	"strings"
)

// Collector gathers validation errors so every problem can be reported at once, rather than only the first.
//
// A Collector is itself an error, so it can be returned directly and compared with [errors.Is] or [errors.As].
//
// Note that a Collector is not concurrency safe.
type Collector struct {
	errs    []error
	joinStr string
}

// CollectErrors creates a new Collector, optionally with a join string that differs from the default of "\n".
func CollectErrors(joinString ...string) *Collector {
	joinStr := "\n"
	if len(joinString) > 0 {
		joinStr = joinString[0]
	}
	return &Collector{
		joinStr: joinStr,
	}
}

// Add adds a new, potentially nil error to the Collector.
// Nil errors will not be included.
func (c *Collector) Add(err error) *Collector {
	if err != nil {
		c.errs = append(c.errs, err)
	}
	return c
}

// AddString creates an error with [fmt.Errorf], which means that the "%w" verb may be used.
func (c *Collector) AddString(msg string, args ...any) *Collector {
	return c.Add(fmt.Errorf(msg, args...))
}

// Check adds an error created like [Collector.AddString] only if ok is false.
// It returns ok so follow-up checks can depend on it.
func (c *Collector) Check(ok bool, msg string, args ...any) bool {
	if !ok {
		c.AddString(msg, args...)
	}
	return ok
}

// Len returns the number of collected errors.
func (c *Collector) Len() int {
	return len(c.errs)
}

// Result returns nil if nothing has been collected, and the Collector itself otherwise.
// Returning an empty Collector would still be returning a non-nil error.
func (c *Collector) Result() error {
	if len(c.errs) > 0 {
		return c
	}
	return nil
}

func (c *Collector) Error() string {
	msgs := make([]string, len(c.errs))
	for i, err := range c.errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, c.joinStr)
}

// Unwrap allows using [errors.Is] and [errors.As] to identify any error in the Collector.
func (c *Collector) Unwrap() []error {
	return c.errs
}
