//go:build !windows

package debugdetect

func detectDebuggerAttached() (bool, error) {
	panic("unreachable")
}
