// Package version holds build information injected at link time.
package version

var (
	// Version is the semantic version of the build.
	Version = "dev"

	// Commit is the git commit hash of the build.
	Commit = ""

	// Date is the build date.
	Date = ""
)
