/*
Package eventx is an in-process event toolkit built around named events and loosely coupled handlers.

The core is [github.com/saylorsolutions/eventx/patterns/eventbus], where owners register handlers for event names and publishers execute events with typed arguments.
The other packages build on it.
  - patterns/fsm publishes state transitions as events.
  - storage/filerepo is a file-backed repository that announces changes as events.
  - codegen and cmd/eventgen generate typed argument keys from an event manifest.
  - metrics/eventmetrics exports dispatch activity to Prometheus.

The remaining packages are small supporting pieces used by the above, in the spirit of eXtensions to standard packages.
*/
package eventx
