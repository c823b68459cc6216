package version

import "github.com/fatih/color"

// Build metadata for the metabin CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	restColor  = color.New(color.FgGreen)
)

// Colored returns Version with its major component highlighted. Color is
// dropped automatically when output is not a terminal.
func Colored() string {
	major, rest := Version, ""
	for i := 0; i < len(Version); i++ {
		if Version[i] == '.' {
			major, rest = Version[:i], Version[i:]
			break
		}
	}
	return majorColor.Sprint(major) + restColor.Sprint(rest)
}
