// Package version holds build metadata, set via -ldflags.
package version

// Version is the devsetup release, e.g.
//
//	go build -ldflags "-X github.com/NielsdaWheelz/devsetup/internal/version.Version=v1.2.0"
var Version = "dev"

// Commit is the source revision, if known.
var Commit = ""

// String returns the version line printed by `devsetup version`.
func String() string {
	if Commit == "" {
		return "devsetup " + Version
	}
	return "devsetup " + Version + " (" + Commit + ")"
}
