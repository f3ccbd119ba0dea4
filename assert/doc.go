/*
Package assert collects validation failures so they can be reported together.

A [Collector] is built up while checking a value, and [Collector.Result] returns either nil or a single error that wraps everything found.
Each collected error stays reachable with [errors.Is] and [errors.As].
*/
package assert
