// Package proc is a low-level package that relays the debug output of the
// process we are launching.
//
// proc implements the platform independent half of a debug session:
//   - building the command line of the debuggee
//   - the debug event types delivered by a backend
//   - the event pump that forwards debug strings and waits for the exit
//
// The operating system specific half lives in pkg/proc/native.
package proc
