package version

// Set at build time via -ldflags "-X icloudmonkey/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info returns the version and commit, as shown in the info splash
func Info() string {
	return Version + " (" + Commit + ")"
}

// Full returns version information including build time
func Full() string {
	return Version + " (commit: " + Commit + ", built: " + BuildTime + ")"
}
