package version

// Set at build time via -ldflags.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Summary returns a human-friendly version string for CLI output,
// including the commit hash when one was baked in.
func Summary() string {
	if CommitHash == "" || CommitHash == "unknown" {
		return Version
	}
	return Version + " (" + CommitHash + ")"
}
