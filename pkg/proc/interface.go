package proc

// Process represents a debuggee launched under our control. All methods
// must be called from the goroutine (and OS thread) that launched it.
type Process interface {
	// Pid returns the process ID of the debuggee.
	Pid() int

	EventSource
	MemoryReader

	// ExitCode returns the exit status of the debuggee, it is only valid
	// after an ExitProcessEvent has been received.
	ExitCode() (uint32, error)

	// Close releases the process and thread handles. It must be called
	// exactly once.
	Close() error
}

// EventSource delivers the debug events of a debuggee.
type EventSource interface {
	// WaitForEvent blocks until the next debug event is delivered.
	WaitForEvent() (Event, error)
	// Continue acknowledges ev and lets the debuggee run again.
	Continue(ev Event) error
}

// MemoryReader reads memory from the address space of the debuggee.
// Implementations return ErrAccessDenied, ErrInvalidAddress or
// ErrShortRead (possibly wrapped) when the copy fails.
type MemoryReader interface {
	ReadMemory(buf []byte, addr uint64) (n int, err error)
}
