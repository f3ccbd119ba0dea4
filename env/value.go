// Package env reads configuration from environment variables, falling back to defaults for missing or unusable values.
package env

import (
	"os"
	"slices"
	"strings"
)

var (
	DefaultTrue  = []string{"1", "yes", "true", "on"}  // DefaultTrue are the values considered "true" by [Bool].
	DefaultFalse = []string{"0", "no", "false", "off"} // DefaultFalse are the values considered "false" by [Bool].
)

// lookup finds a variable with a case-insensitive key match, returning its trimmed value.
func lookup(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(val), true
	}
	for _, kv := range os.Environ() {
		k, val, found := strings.Cut(kv, "=")
		if found && strings.EqualFold(k, key) {
			return strings.TrimSpace(val), true
		}
	}
	return "", false
}

// Val returns the value of an environment variable, or defaultVal if it isn't set or is blank.
// Keys are compared case-insensitive.
func Val(key string, defaultVal string) string {
	val, ok := lookup(key)
	if !ok || len(val) == 0 {
		return defaultVal
	}
	return val
}

// OneOf returns the lower cased value of an environment variable if it matches one of the allowed values, ignoring case.
// Otherwise, defaultVal is returned.
func OneOf(key string, defaultVal string, allowed ...string) string {
	val := strings.ToLower(Val(key, ""))
	if len(val) == 0 || !slices.ContainsFunc(allowed, func(a string) bool {
		return strings.EqualFold(a, val)
	}) {
		return defaultVal
	}
	return val
}

// Bool interprets an environment variable as a boolean, using [DefaultTrue] and [DefaultFalse].
// The defaultVal will be returned if the variable isn't set, is empty, or can't be a boolean value.
func Bool(key string, defaultVal bool) bool {
	val := strings.ToLower(Val(key, ""))
	switch {
	case slices.Contains(DefaultTrue, val):
		return true
	case slices.Contains(DefaultFalse, val):
		return false
	default:
		return defaultVal
	}
}
