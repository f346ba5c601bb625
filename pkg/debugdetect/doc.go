// Package debugdetect reports whether the current process is running under
// a debugger. Test fixtures use it to check that a program launched by
// nimp-run sees nimp-run as its debugger.
package debugdetect
