package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Overridden at build time with -ldflags "-X github.com/MrSnakeDoc/tutor/internal/version.Version=...".
var (
	Version   = "dev"             // ex: v0.1.0
	Commit    = "none"            // ex: abcd123
	BuildDate = "unknown"         // ex: 2025-08-11T18:42:00Z
	GoVersion = runtime.Version() // go version
)

func init() {
	if Commit != "none" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) > 7 {
				Commit = s.Value[:7]
			} else {
				Commit = s.Value
			}
		case "vcs.time":
			if BuildDate == "unknown" {
				BuildDate = s.Value
			}
		}
	}
}

// String is the one-line form printed by "tutor version".
func String() string {
	return fmt.Sprintf("tutor %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
