package version

import (
	"strings"
	"testing"
)

func TestVersionString(t *testing.T) {
	v := Version{Major: "1", Minor: "2", Patch: "3", Metadata: "rc1", Build: "abcdef"}
	want := "Version: 1.2.3-rc1\nBuild: abcdef"
	if got := v.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBuildInfo(t *testing.T) {
	if got := BuildInfo(); !strings.HasPrefix(got, "go") && !strings.HasPrefix(got, "devel") {
		t.Fatalf("expected build info to start with the Go version, got %q", got)
	}
}
