package proc

import "fmt"

// EventCode is the kind of a debug event as reported by the operating system.
type EventCode uint32

const (
	EventException EventCode = iota + 1
	EventCreateThread
	EventCreateProcess
	EventExitThread
	EventExitProcess
	EventLoadDLL
	EventUnloadDLL
	EventOutputDebugString
	EventRIP
)

// String maps EventCode to string representation.
func (c EventCode) String() string {
	switch c {
	case EventException:
		return "exception"
	case EventCreateThread:
		return "create-thread"
	case EventCreateProcess:
		return "create-process"
	case EventExitThread:
		return "exit-thread"
	case EventExitProcess:
		return "exit-process"
	case EventLoadDLL:
		return "load-dll"
	case EventUnloadDLL:
		return "unload-dll"
	case EventOutputDebugString:
		return "output-debug-string"
	case EventRIP:
		return "rip"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(c))
	}
}

// EventHeader identifies the process and thread that generated an event.
// Backends need it to acknowledge the event.
type EventHeader struct {
	ProcessID uint32
	ThreadID  uint32
}

// Header returns the header of the event.
func (h EventHeader) Header() EventHeader { return h }

// Event is a debug event received from a Process.
// The concrete type is one of *OutputDebugStringEvent, *ExitProcessEvent
// or *OtherEvent.
type Event interface {
	Header() EventHeader
	Code() EventCode
	isEvent()
}

// OutputDebugStringEvent is delivered when the debuggee writes a debug
// string. Addr is only meaningful in the address space of the debuggee.
type OutputDebugStringEvent struct {
	EventHeader
	Addr    uint64
	Length  uint32
	Unicode bool
}

func (*OutputDebugStringEvent) Code() EventCode { return EventOutputDebugString }
func (*OutputDebugStringEvent) isEvent()        {}

// ExitProcessEvent is delivered when the debuggee exits.
type ExitProcessEvent struct {
	EventHeader
	Status uint32
}

func (*ExitProcessEvent) Code() EventCode { return EventExitProcess }
func (*ExitProcessEvent) isEvent()        {}

// OtherEvent is any event the pump does not interpret.
// Unhandled is set for exceptions that must be passed back to the
// debuggee's own handlers when acknowledged.
type OtherEvent struct {
	EventHeader
	Kind      EventCode
	Unhandled bool
}

func (e *OtherEvent) Code() EventCode { return e.Kind }
func (*OtherEvent) isEvent()          {}
