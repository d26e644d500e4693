package gotmemo

const (
	// Name is the application name.
	Name = "gotmemo"

	// Description is a short description of the application.
	Description = "Go translation memo - cached, deduplicated translation lookups"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/gotmemo"
)

// Build information, set via ldflags:
//
//	go build -ldflags "-X github.com/ZaguanLabs/gotmemo.Version=1.0.0"
var (
	// Version is the semantic version of the application.
	Version = "0.1.0"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// FullVersion returns the version string with the short commit hash, if known.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

// UserAgent returns a user agent string for HTTP requests.
func UserAgent() string {
	return Name + "/" + Version
}
