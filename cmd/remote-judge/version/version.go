// Package version reports the build version of the remote judge binaries.
package version

import (
	"embed"
	"runtime/debug"
	"strings"
)

//go:embed version.*
var versions embed.FS

// Version is read from version.txt written by go generate, or from the
// module build info when installed with go install
var Version = readVersion()

func readVersion() string {
	if b, err := versions.ReadFile("version.txt"); err == nil {
		return strings.TrimSpace(string(b))
	}
	inf, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	v := inf.Main.Version
	for _, s := range inf.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			v += "+" + s.Value[:7]
		}
	}
	return v
}
