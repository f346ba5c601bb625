package native

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/nimp-run/nimp-run/pkg/logflags"
	"github.com/nimp-run/nimp-run/pkg/proc"
)

// Process is a child process launched with the calling process as its
// debugger. It implements proc.Process.
type Process struct {
	path string
	pi   windows.ProcessInformation

	exited bool
	closed bool

	log logflags.Logger
}

var _ proc.Process = (*Process)(nil)

// Launch creates a new process from cmd and registers the calling process
// as its debugger. Only the new process is debugged, not its descendants.
//
// Windows delivers debug events only to the thread that created the
// debuggee: Launch locks the calling goroutine to its OS thread and Close
// unlocks it. Every other method must be called from the same goroutine.
func Launch(cmd []string) (*Process, error) {
	if len(cmd) == 0 {
		return nil, errors.New("no command to launch")
	}
	log := logflags.LauncherLogger()

	// CreateProcessW may modify the command line in place, it must not be
	// a read-only string.
	cmdline, err := windows.UTF16FromString(proc.BuildCommandLine(cmd))
	if err != nil {
		return nil, &proc.OpError{Op: "CreateProcess", Target: cmd[0], Err: err}
	}

	runtime.LockOSThread()

	dbp := &Process{path: cmd[0], log: log}
	si := &windows.StartupInfo{}
	si.Cb = uint32(unsafe.Sizeof(*si))
	err = windows.CreateProcess(nil, &cmdline[0], nil, nil, false, _DEBUG_ONLY_THIS_PROCESS, nil, nil, si, &dbp.pi)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, &proc.OpError{Op: "CreateProcess", Target: cmd[0], Err: err}
	}
	log.Debugf("created process %d (main thread %d) for %q", dbp.pi.ProcessId, dbp.pi.ThreadId, cmd[0])

	// The creation flag already made us the debugger, attaching again is
	// expected to fail on most systems.
	if err := _DebugActiveProcess(dbp.pi.ProcessId); err != nil {
		log.Debugf("DebugActiveProcess(%d): %v", dbp.pi.ProcessId, err)
	}

	return dbp, nil
}

// Pid returns the process ID of the debuggee.
func (dbp *Process) Pid() int {
	return int(dbp.pi.ProcessId)
}

// WaitForEvent blocks, without timeout, until the next debug event.
func (dbp *Process) WaitForEvent() (proc.Event, error) {
	var debugEvent _DEBUG_EVENT
	if err := _WaitForDebugEvent(&debugEvent, windows.INFINITE); err != nil {
		return nil, &proc.OpError{Op: "WaitForDebugEvent", Target: dbp.path, Err: err}
	}

	hdr := proc.EventHeader{ProcessID: debugEvent.ProcessId, ThreadID: debugEvent.ThreadId}
	unionPtr := unsafe.Pointer(&debugEvent.U[0])
	unhandled := false

	switch debugEvent.DebugEventCode {
	case _OUTPUT_DEBUG_STRING_EVENT:
		debugInfo := (*_OUTPUT_DEBUG_STRING_INFO)(unionPtr)
		return &proc.OutputDebugStringEvent{
			EventHeader: hdr,
			Addr:        uint64(debugInfo.DebugStringData),
			Length:      uint32(debugInfo.DebugStringLength),
			Unicode:     debugInfo.Unicode != 0,
		}, nil
	case _EXIT_PROCESS_DEBUG_EVENT:
		debugInfo := (*_EXIT_PROCESS_DEBUG_INFO)(unionPtr)
		dbp.exited = true
		return &proc.ExitProcessEvent{EventHeader: hdr, Status: debugInfo.ExitCode}, nil
	case _CREATE_PROCESS_DEBUG_EVENT:
		debugInfo := (*_CREATE_PROCESS_DEBUG_INFO)(unionPtr)
		dbp.closeFileHandle(debugInfo.File)
	case _LOAD_DLL_DEBUG_EVENT:
		debugInfo := (*_LOAD_DLL_DEBUG_INFO)(unionPtr)
		dbp.closeFileHandle(debugInfo.File)
	case _EXCEPTION_DEBUG_EVENT:
		exception := (*_EXCEPTION_DEBUG_INFO)(unionPtr)
		switch code := exception.ExceptionRecord.ExceptionCode; code {
		case _EXCEPTION_BREAKPOINT, _STATUS_WX86_BREAKPOINT, _MS_VC_EXCEPTION:
		default:
			dbp.log.Debugf("exception %#x on thread %d (first chance: %v)", code, debugEvent.ThreadId, exception.FirstChance != 0)
			unhandled = true
		}
	}

	return &proc.OtherEvent{EventHeader: hdr, Kind: proc.EventCode(debugEvent.DebugEventCode), Unhandled: unhandled}, nil
}

// closeFileHandle closes the image file handle that comes with
// CREATE_PROCESS and LOAD_DLL events, the debugger owns it.
func (dbp *Process) closeFileHandle(h windows.Handle) {
	if h == 0 || h == windows.InvalidHandle {
		return
	}
	if err := windows.CloseHandle(h); err != nil {
		dbp.log.Warnf("could not close image file handle: %v", err)
	}
}

// Continue acknowledges ev. Exceptions other than breakpoints are passed
// back to the debuggee.
func (dbp *Process) Continue(ev proc.Event) error {
	continueStatus := uint32(_DBG_CONTINUE)
	if other, ok := ev.(*proc.OtherEvent); ok && other.Unhandled {
		continueStatus = _DBG_EXCEPTION_NOT_HANDLED
	}
	hdr := ev.Header()
	if err := _ContinueDebugEvent(hdr.ProcessID, hdr.ThreadID, continueStatus); err != nil {
		return &proc.OpError{Op: "ContinueDebugEvent", Target: dbp.path, Err: err}
	}
	return nil
}

// ReadMemory copies len(buf) bytes at addr in the debuggee into buf.
func (dbp *Process) ReadMemory(buf []byte, addr uint64) (int, error) {
	if dbp.closed {
		return 0, proc.ErrProcessExited{Pid: dbp.Pid()}
	}
	if len(buf) == 0 {
		return 0, nil
	}
	var count uintptr
	err := windows.ReadProcessMemory(dbp.pi.Process, uintptr(addr), &buf[0], uintptr(len(buf)), &count)
	if err != nil {
		return int(count), memoryError(err)
	}
	if count != uintptr(len(buf)) {
		return int(count), proc.ErrShortRead
	}
	return int(count), nil
}

func memoryError(err error) error {
	switch {
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("%w: %v", proc.ErrAccessDenied, err)
	case errors.Is(err, windows.ERROR_PARTIAL_COPY):
		return fmt.Errorf("%w: %v", proc.ErrShortRead, err)
	case errors.Is(err, windows.ERROR_NOACCESS), errors.Is(err, windows.ERROR_INVALID_ADDRESS):
		return fmt.Errorf("%w: %v", proc.ErrInvalidAddress, err)
	}
	return err
}

// ExitCode returns the exit status of the debuggee.
func (dbp *Process) ExitCode() (uint32, error) {
	if !dbp.exited {
		return 0, fmt.Errorf("process %d has not exited", dbp.Pid())
	}
	var code uint32
	if err := windows.GetExitCodeProcess(dbp.pi.Process, &code); err != nil {
		return 0, &proc.OpError{Op: "GetExitCodeProcess", Target: dbp.path, Err: err}
	}
	return code, nil
}

// Close releases the process and thread handles and unlocks the OS thread
// locked by Launch. Calls after the first are no-ops.
func (dbp *Process) Close() error {
	if dbp.closed {
		return nil
	}
	dbp.closed = true
	defer runtime.UnlockOSThread()
	err := windows.CloseHandle(dbp.pi.Process)
	if terr := windows.CloseHandle(dbp.pi.Thread); err == nil {
		err = terr
	}
	dbp.log.Debugf("released process %d", dbp.Pid())
	return err
}
