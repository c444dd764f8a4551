package version

// Set with -ldflags "-X ..." at build time.
var (
	Version   = "v0.0.0-dev"
	GitCommit = "unknown"
)
