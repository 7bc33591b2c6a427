// Package call defines the message-call contract of the native text engine.
//
// The engine is reached through a single synchronous call primitive that
// carries a command number and two machine-word parameters. This package
// re-architects that surface as a closed set of typed operations: a Request
// carries the command number, the numeric parameters, and at most one inbound
// payload and one caller-owned output buffer, and every operation the upper
// layers need has a typed wrapper so no caller builds raw Requests.
//
// Engine failures are reported as status words, not as panics or exceptions.
// A Dispatcher implementation queries the status after each call and surfaces
// a non-ok status as *DispatchError. Calls are never retried at this level.
package call
