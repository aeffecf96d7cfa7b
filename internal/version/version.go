// Package version exposes build metadata injected at link time.
// The variables are overridden via -ldflags during release builds.
package version

// Build metadata, overridden at build time via:
//
//	go build -ldflags "-X github.com/oshokin/geektime-grabber/internal/version.Version=..."
//
//nolint:gochecknoglobals // These are set by the linker and must be package-level variables.
var (
	// Version is the semantic version of the binary.
	Version = "0.1.0"
	// Commit is the git commit hash the binary was built from.
	Commit = "none"
	// BuildTime is the timestamp of the build.
	BuildTime = "unknown"
)

// Short returns just the semantic version.
func Short() string {
	return Version
}

// Full returns the version, commit hash, and build time as a single string.
func Full() string {
	return "version: " + Version + ", commit: " + Commit + ", built at: " + BuildTime
}
