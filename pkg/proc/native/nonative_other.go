//go:build !windows

package native

import (
	"errors"

	"github.com/nimp-run/nimp-run/pkg/proc"
)

// ErrNativeBackendDisabled is returned by Launch on systems without a
// debug string facility.
var ErrNativeBackendDisabled = errors.New("native backend disabled during compilation: debug strings are only captured on windows")

// Process is a stub, Launch never returns one on this system.
type Process struct{}

var _ proc.Process = (*Process)(nil)

// Launch returns ErrNativeBackendDisabled.
func Launch(cmd []string) (*Process, error) {
	return nil, ErrNativeBackendDisabled
}

func (*Process) Pid() int {
	panic(ErrNativeBackendDisabled)
}

func (*Process) WaitForEvent() (proc.Event, error) {
	panic(ErrNativeBackendDisabled)
}

func (*Process) Continue(proc.Event) error {
	panic(ErrNativeBackendDisabled)
}

func (*Process) ReadMemory([]byte, uint64) (int, error) {
	panic(ErrNativeBackendDisabled)
}

func (*Process) ExitCode() (uint32, error) {
	panic(ErrNativeBackendDisabled)
}

func (*Process) Close() error {
	panic(ErrNativeBackendDisabled)
}
