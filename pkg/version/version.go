package version

import (
	"bytes"
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version represents the current version of nimp-run.
type Version struct {
	Major    string
	Minor    string
	Patch    string
	Metadata string
	Build    string
}

// NimpRunVersion is the current version of nimp-run.
var NimpRunVersion = Version{
	Major: "1", Minor: "0", Patch: "0", Metadata: "",
	Build: "$Id$",
}

func (v Version) String() string {
	fixBuild(&v)
	ver := fmt.Sprintf("Version: %s.%s.%s", v.Major, v.Minor, v.Patch)
	if v.Metadata != "" {
		ver += "-" + v.Metadata
	}
	return fmt.Sprintf("%s\nBuild: %s", ver, v.Build)
}

// BuildInfo returns the Go version and the module dependencies nimp-run
// was built with.
func BuildInfo() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fmt.Sprintf("%s\nnot built in module mode", runtime.Version())
	}

	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "%s\n", runtime.Version())
	fmt.Fprintf(buf, " mod\t%s\t%s\t%s\n", info.Main.Path, info.Main.Version, info.Main.Sum)
	for _, dep := range info.Deps {
		fmt.Fprintf(buf, " dep\t%s\t%s\t%s", dep.Path, dep.Version, dep.Sum)
		if dep.Replace != nil {
			fmt.Fprintf(buf, "\t=> %s\t%s\t%s", dep.Replace.Path, dep.Replace.Version, dep.Replace.Sum)
		}
		fmt.Fprintf(buf, "\n")
	}
	return buf.String()
}

// fixBuild replaces the unexpanded git ident in v.Build with the VCS
// revision recorded by the go command, when there is one.
func fixBuild(v *Version) {
	if v.Build != "$Id$" {
		return
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			v.Build = setting.Value
			return
		}
	}
}
