package proc

import (
	"bytes"
	"io"

	"github.com/nimp-run/nimp-run/pkg/logflags"
)

// DefaultStartupSkip is the number of debug strings starting with
// DefaultStartupSignature that are dropped after launch. The cygwin
// runtime writes two identification banners through OutputDebugString
// while it initializes.
const DefaultStartupSkip = 2

// DefaultStartupSignature is the prefix of the cygwin startup banners.
var DefaultStartupSignature = []byte("cYg")

// PumpConfig configures the startup filter of a Pump.
type PumpConfig struct {
	// StartupSkip is the number of debug strings starting with
	// StartupSignature to drop. Once exhausted every debug string is
	// forwarded, whatever its prefix.
	StartupSkip int
	// StartupSignature disables the filter when empty.
	StartupSignature []byte
}

// DefaultPumpConfig returns the configuration that suppresses the cygwin
// startup banners.
func DefaultPumpConfig() PumpConfig {
	return PumpConfig{StartupSkip: DefaultStartupSkip, StartupSignature: DefaultStartupSignature}
}

// Pump services the debug events of a Process, forwarding its debug
// strings to out until it exits.
type Pump struct {
	p   Process
	out io.Writer

	skip      int
	signature []byte

	exitStatus uint32

	events     int
	forwarded  int
	suppressed int
	dropped    int

	log logflags.Logger
}

// NewPump returns a Pump that takes ownership of p.
func NewPump(p Process, out io.Writer, conf PumpConfig) *Pump {
	pump := &Pump{
		p:         p,
		out:       out,
		skip:      conf.StartupSkip,
		signature: conf.StartupSignature,
		log:       logflags.PumpLogger(),
	}
	if len(pump.signature) == 0 || pump.skip < 0 {
		pump.skip = 0
	}
	return pump
}

// Remaining returns how many startup banners are still to be suppressed.
func (pump *Pump) Remaining() int {
	return pump.skip
}

// Run services debug events until the debuggee exits and returns its exit
// status. Every event is acknowledged exactly once. The handles of the
// process are released before Run returns, whether it succeeds or not.
func (pump *Pump) Run() (status uint32, err error) {
	defer func() {
		if cerr := pump.p.Close(); cerr != nil {
			pump.log.Errorf("could not release process %d: %v", pump.p.Pid(), cerr)
		}
	}()

	for {
		ev, err := pump.p.WaitForEvent()
		if err != nil {
			return 0, err
		}
		pump.events++

		exited, herr := pump.handleEvent(ev)

		if err := pump.p.Continue(ev); err != nil {
			return 0, err
		}
		if herr != nil {
			return 0, herr
		}
		if exited {
			break
		}
	}

	pump.log.Debugf("process %d: %d events, %d forwarded, %d suppressed, %d dropped",
		pump.p.Pid(), pump.events, pump.forwarded, pump.suppressed, pump.dropped)

	status, err = pump.p.ExitCode()
	if err != nil {
		pump.log.Warnf("could not query exit code of process %d, using %#x: %v", pump.p.Pid(), pump.exitStatus, err)
		status = pump.exitStatus
	}
	return status, nil
}

// handleEvent acts on ev. It reports whether ev terminates the session.
func (pump *Pump) handleEvent(ev Event) (exited bool, err error) {
	switch ev := ev.(type) {
	case *ExitProcessEvent:
		pump.exitStatus = ev.Status
		return true, nil
	case *OutputDebugStringEvent:
		return false, pump.relay(ev)
	case *OtherEvent:
		if logflags.Pump() {
			pump.log.Debugf("ignoring %s event on thread %d", ev.Kind, ev.ThreadID)
		}
	}
	return false, nil
}

func (pump *Pump) relay(ev *OutputDebugStringEvent) error {
	buf := make([]byte, ev.Length)
	if len(buf) > 0 {
		if _, err := pump.p.ReadMemory(buf, ev.Addr); err != nil {
			pump.log.Warnf("dropping debug string of %d bytes at %#x: %v", ev.Length, ev.Addr, err)
			pump.dropped++
			return nil
		}
	}

	if pump.skip > 0 && bytes.HasPrefix(buf, pump.signature) {
		pump.skip--
		pump.suppressed++
		pump.log.Debugf("suppressed startup banner %q, %d left", buf, pump.skip)
		return nil
	}

	if _, err := pump.out.Write(buf); err != nil {
		return err
	}
	pump.forwarded++
	return nil
}
