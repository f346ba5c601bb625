package debugdetect

import (
	"fmt"
	"runtime"
)

// IsDebuggerAttached returns true if the current process is being debugged.
//
// Returns an error if the debugger state cannot be determined.
// Supported platforms: windows
func IsDebuggerAttached() (bool, error) {
	switch runtime.GOOS {
	case "windows":
		return detectDebuggerAttached()
	default:
		return false, fmt.Errorf("debugger detection not supported on %s", runtime.GOOS)
	}
}
