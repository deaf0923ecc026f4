package version

// Overridden at build time with
// -ldflags "-X lox/pkg/version.Version=... -X lox/pkg/version.GitCommit=..."
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)
