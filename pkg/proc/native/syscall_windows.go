//go:generate go run golang.org/x/sys/windows/mkwinsyscall -output zsyscall_windows.go syscall_windows.go

package native

import (
	"golang.org/x/sys/windows"
)

type _OUTPUT_DEBUG_STRING_INFO struct {
	DebugStringData   uintptr
	Unicode           uint16
	DebugStringLength uint16
}

type _CREATE_PROCESS_DEBUG_INFO struct {
	File                windows.Handle
	Process             windows.Handle
	Thread              windows.Handle
	BaseOfImage         uintptr
	DebugInfoFileOffset uint32
	DebugInfoSize       uint32
	ThreadLocalBase     uintptr
	StartAddress        uintptr
	ImageName           uintptr
	Unicode             uint16
}

type _EXIT_PROCESS_DEBUG_INFO struct {
	ExitCode uint32
}

type _LOAD_DLL_DEBUG_INFO struct {
	File                windows.Handle
	BaseOfDll           uintptr
	DebugInfoFileOffset uint32
	DebugInfoSize       uint32
	ImageName           uintptr
	Unicode             uint16
}

type _EXCEPTION_DEBUG_INFO struct {
	ExceptionRecord _EXCEPTION_RECORD
	FirstChance     uint32
}

type _EXCEPTION_RECORD struct {
	ExceptionCode        uint32
	ExceptionFlags       uint32
	ExceptionRecord      *_EXCEPTION_RECORD
	ExceptionAddress     uintptr
	NumberParameters     uint32
	ExceptionInformation [_EXCEPTION_MAXIMUM_PARAMETERS]uintptr
}

const (
	_DBG_CONTINUE              = 0x00010002
	_DBG_EXCEPTION_NOT_HANDLED = 0x80010001

	_EXCEPTION_DEBUG_EVENT      = 1
	_CREATE_THREAD_DEBUG_EVENT  = 2
	_CREATE_PROCESS_DEBUG_EVENT = 3
	_EXIT_THREAD_DEBUG_EVENT    = 4
	_EXIT_PROCESS_DEBUG_EVENT   = 5
	_LOAD_DLL_DEBUG_EVENT       = 6
	_UNLOAD_DLL_DEBUG_EVENT     = 7
	_OUTPUT_DEBUG_STRING_EVENT  = 8
	_RIP_EVENT                  = 9

	// _DEBUG_ONLY_THIS_PROCESS tracks https://learn.microsoft.com/en-us/windows/win32/procthread/process-creation-flags
	_DEBUG_ONLY_THIS_PROCESS = 0x00000002

	_EXCEPTION_BREAKPOINT   = 0x80000003
	_STATUS_WX86_BREAKPOINT = 0x4000001F
	_MS_VC_EXCEPTION        = 0x406D1388 // part of VisualC protocol to set thread names

	_EXCEPTION_MAXIMUM_PARAMETERS = 15
)

// _DEBUG_EVENT mirrors DEBUG_EVENT. The union is declared as uint64 so that
// it lands on the offset the C compiler gives it on both 32 and 64 bit
// targets.
type _DEBUG_EVENT struct {
	DebugEventCode uint32
	ProcessId      uint32
	ThreadId       uint32
	U              [20]uint64
}

//sys	_WaitForDebugEvent(debugevent *_DEBUG_EVENT, milliseconds uint32) (err error) = kernel32.WaitForDebugEvent
//sys	_ContinueDebugEvent(processid uint32, threadid uint32, continuestatus uint32) (err error) = kernel32.ContinueDebugEvent
//sys	_DebugActiveProcess(processid uint32) (err error) = kernel32.DebugActiveProcess
