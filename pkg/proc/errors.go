package proc

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrAccessDenied is returned when the debuggee's memory can not be read.
	ErrAccessDenied = errors.New("access denied reading process memory")
	// ErrInvalidAddress is returned when a read targets unmapped memory.
	ErrInvalidAddress = errors.New("invalid address in process memory")
	// ErrShortRead is returned when fewer bytes than requested were copied.
	ErrShortRead = errors.New("short read")
)

// ErrProcessExited indicates that the process has exited and contains both
// process id and exit status.
type ErrProcessExited struct {
	Pid    int
	Status uint32
}

func (pe ErrProcessExited) Error() string {
	return fmt.Sprintf("Process %d has exited with status %d", pe.Pid, int32(pe.Status))
}

// OpError records a failed platform call together with the executable it
// was operating on.
type OpError struct {
	Op     string
	Target string
	Err    error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("cannot %s(%s): %v", e.Op, e.Target, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Code returns the platform error code of the failed call, or 0 if the
// underlying error does not carry one.
func (e *OpError) Code() uint32 {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return uint32(errno)
	}
	return 0
}

// ExitStatus translates the exit status of the debuggee into the exit
// status of the launcher. Any nonzero status collapses to 1.
func ExitStatus(status uint32) int {
	if status != 0 {
		return 1
	}
	return 0
}
