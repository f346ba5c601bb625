package main

import (
	"fmt"
	"os"
	"strconv"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/nimp-run/nimp-run/pkg/debugdetect"
)

var procOutputDebugStringA = windows.NewLazySystemDLL("kernel32.dll").NewProc("OutputDebugStringA")

// outputDebugString sends s, NUL terminated, to the debugger.
func outputDebugString(s string) error {
	p, err := windows.BytePtrFromString(s)
	if err != nil {
		return err
	}
	procOutputDebugStringA.Call(uintptr(unsafe.Pointer(p)))
	return nil
}

// usage: debugstrings <exit code> [debug string...]
// The debug string "@attached" is replaced by "attached=<bool>".
func main() {
	code, err := strconv.Atoi(os.Args[1])
	if err != nil {
		os.Exit(2)
	}
	for _, s := range os.Args[2:] {
		if s == "@attached" {
			attached, err := debugdetect.IsDebuggerAttached()
			if err != nil {
				os.Exit(3)
			}
			s = fmt.Sprintf("attached=%v", attached)
		}
		if err := outputDebugString(s); err != nil {
			os.Exit(2)
		}
	}
	os.Exit(code)
}
