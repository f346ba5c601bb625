package debugdetect

import (
	"runtime"
	"testing"
)

func TestIsDebuggerAttached(t *testing.T) {
	attached, err := IsDebuggerAttached()
	if runtime.GOOS != "windows" {
		if err == nil {
			t.Fatalf("expected error on %s", runtime.GOOS)
		}
		return
	}
	if err != nil {
		t.Fatal(err)
	}
	t.Logf("attached: %v", attached)
}
