/*
Package eventbus provides a synchronous, in-process dispatcher for named events.

# Design Priorities

Here are the design priorities of the implementation:

  - It should isolate handlers from each other, so a failing or panicking handler never prevents the rest from running.
  - It should be safe to register and unregister handlers from one goroutine while another is dispatching.
  - It should keep absence and type mismatches of event arguments distinct, so handlers can tell a caller bug from an optional value.
  - It should require no reflection over application types to find handlers.

# Primitives

An event is identified by a case-sensitive string name, like "user.login".
There is no schema for event names, but generating them as constants with the eventgen tool keeps producers and handlers in agreement.

Values accompanying an event are carried in [Arguments], along with the emitter that triggered the event.
Handlers read values with [Get], [GetList], and their optional and defaulted variants, or with a typed [Key] or [ListKey].
These return a [MissingKeyError] when a key isn't present, and a [TypeMismatchError] when the value has the wrong type.
To read several values at once, use [Extract] with [Into] and friends.

# Registration

A component declares the events it handles by implementing [Owner], or by using a [Table] of [Binding].
[Dispatcher.Register] adds the bindings and returns a [Handle], which is the only way to remove them with [Dispatcher.Unregister].
Invalid bindings are logged and reported as a [RegistrationError], without preventing the valid bindings from being registered.

# Event Flow

Any component may call [Dispatcher.Execute] with an event name and [Arguments].
Each handler registered for the event is called in registration order, on the calling goroutine.
Execute returns after the last handler returns.

Errors returned from handlers and panics are logged and reported as an [InvocationError] to the function set with [WithErrorHandler].
They are never returned to the code that executed the event.
*/
package eventbus
