package debugdetect

import "golang.org/x/sys/windows"

var procIsDebuggerPresent = windows.NewLazySystemDLL("kernel32.dll").NewProc("IsDebuggerPresent")

// detectDebuggerAttached reads the BeingDebugged flag that the loader keeps
// for the current process. It is set for processes created with a debug
// creation flag as well as for attached ones.
func detectDebuggerAttached() (bool, error) {
	if err := procIsDebuggerPresent.Find(); err != nil {
		return false, err
	}
	ret, _, _ := procIsDebuggerPresent.Call()
	return ret != 0, nil
}
