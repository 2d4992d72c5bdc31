// Package main provides the CLI entry point for devcyclesim.
package main

import (
	"os"
	"runtime/debug"

	"github.com/alexander-akhmetov/devcyclesim/internal/cli"
	"github.com/alexander-akhmetov/devcyclesim/internal/timing"
)

// Version information set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	timing.Log("main")
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			b := fromBuildInfo(info)
			version, commit, date = b.version, b.commit, b.date
		}
	}
	cli.SetVersionInfo(version, commit, date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

type buildVersion struct {
	version string
	commit  string
	date    string
}

// fromBuildInfo reads the module version and VCS stamps embedded by the Go
// toolchain. `go install ...@vX` builds carry a module version but no VCS
// data; local builds carry VCS data and "(devel)".
func fromBuildInfo(info *debug.BuildInfo) buildVersion {
	b := buildVersion{version: "dev", commit: "unknown", date: "unknown"}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		b.version = v
	}

	var revision string
	modified := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			if s.Value != "" {
				b.date = s.Value
			}
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if len(revision) >= 7 {
		b.commit = revision[:7]
		if modified {
			b.commit += "-dirty"
		}
	}
	return b
}
