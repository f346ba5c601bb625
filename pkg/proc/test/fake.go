package test

import (
	"errors"
	"testing"

	"github.com/nimp-run/nimp-run/pkg/proc"
)

// FakeProcess is a scripted debug session. It fails the test if an event
// is acknowledged twice or if WaitForEvent is called before the previous
// event was acknowledged.
type FakeProcess struct {
	t testing.TB

	Events  []proc.Event
	Memory  map[uint64][]byte
	MemErr  map[uint64]error
	WaitErr error

	ExitStatus  uint32
	ExitCodeErr error
	ContinueErr error

	pending   proc.Event
	Continued []proc.Event
	Reads     int
	Closed    int
}

// NewFakeProcess returns a FakeProcess with no events queued.
func NewFakeProcess(t testing.TB) *FakeProcess {
	return &FakeProcess{
		t:      t,
		Memory: map[uint64][]byte{},
		MemErr: map[uint64]error{},
	}
}

func (p *FakeProcess) header() proc.EventHeader {
	return proc.EventHeader{ProcessID: 100, ThreadID: uint32(200 + len(p.Events))}
}

// DebugString queues an OutputDebugString event whose payload is s.
func (p *FakeProcess) DebugString(s string) *FakeProcess {
	addr := uint64(0x1000 * (len(p.Events) + 1))
	p.Memory[addr] = []byte(s)
	p.Events = append(p.Events, &proc.OutputDebugStringEvent{EventHeader: p.header(), Addr: addr, Length: uint32(len(s))})
	return p
}

// BadDebugString queues an OutputDebugString event whose payload can not
// be read, ReadMemory fails with err.
func (p *FakeProcess) BadDebugString(length uint32, err error) *FakeProcess {
	addr := uint64(0x1000 * (len(p.Events) + 1))
	p.MemErr[addr] = err
	p.Events = append(p.Events, &proc.OutputDebugStringEvent{EventHeader: p.header(), Addr: addr, Length: length})
	return p
}

// Other queues an event of the given kind that the pump does not interpret.
func (p *FakeProcess) Other(kind proc.EventCode) *FakeProcess {
	p.Events = append(p.Events, &proc.OtherEvent{EventHeader: p.header(), Kind: kind})
	return p
}

// Exit queues an ExitProcess event, ExitCode will report status.
func (p *FakeProcess) Exit(status uint32) *FakeProcess {
	p.ExitStatus = status
	p.Events = append(p.Events, &proc.ExitProcessEvent{EventHeader: p.header(), Status: status})
	return p
}

// Pid returns a fixed process ID.
func (p *FakeProcess) Pid() int { return 100 }

// WaitForEvent pops the next queued event. Once the queue is empty it
// returns WaitErr, or fails the test if WaitErr is nil.
func (p *FakeProcess) WaitForEvent() (proc.Event, error) {
	if p.pending != nil {
		p.t.Errorf("waiting for an event before acknowledging %#v", p.pending)
	}
	if p.Closed != 0 {
		p.t.Errorf("waiting for an event after Close")
	}
	if len(p.Events) == 0 {
		if p.WaitErr != nil {
			return nil, p.WaitErr
		}
		p.t.Fatalf("no more events")
		return nil, errors.New("no more events")
	}
	ev := p.Events[0]
	p.Events = p.Events[1:]
	p.pending = ev
	return ev, nil
}

// Continue records the acknowledgment of ev and returns ContinueErr.
func (p *FakeProcess) Continue(ev proc.Event) error {
	if p.pending == nil {
		p.t.Errorf("acknowledging %#v twice", ev)
	} else if p.pending != ev {
		p.t.Errorf("acknowledging %#v, expected %#v", ev, p.pending)
	}
	p.pending = nil
	p.Continued = append(p.Continued, ev)
	return p.ContinueErr
}

// ReadMemory copies the payload queued at addr, or fails with the error
// registered for it.
func (p *FakeProcess) ReadMemory(buf []byte, addr uint64) (int, error) {
	p.Reads++
	if err := p.MemErr[addr]; err != nil {
		return 0, err
	}
	data, ok := p.Memory[addr]
	if !ok {
		return 0, proc.ErrInvalidAddress
	}
	n := copy(buf, data)
	if n < len(buf) {
		return n, proc.ErrShortRead
	}
	return n, nil
}

// ExitCode returns ExitStatus and ExitCodeErr.
func (p *FakeProcess) ExitCode() (uint32, error) {
	return p.ExitStatus, p.ExitCodeErr
}

// Close counts the calls in Closed.
func (p *FakeProcess) Close() error {
	p.Closed++
	return nil
}
