package version

import (
	"fmt"
	"runtime"
)

const (
	Major      = 1
	Minor      = 0
	Patch      = 0
	PreRelease = "" // e.g. "rc1"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/AbstractLogica/acp-tracker/pkg/version.GitCommit=$(git rev-parse HEAD)"
var (
	GitCommit = ""
	BuildDate = ""
)

const Name = "ACP Tracker"

// Version returns the semantic version string.
func Version() string {
	v := fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
	if PreRelease != "" {
		v += "-" + PreRelease
	}
	return v
}

// BuildInfo describes the running binary.
type BuildInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Name:      Name,
		Version:   Version(),
		GitCommit: shortCommit(),
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String is a one-line summary for logs and -version output.
func (b BuildInfo) String() string {
	s := fmt.Sprintf("%s v%s", b.Name, b.Version)
	if b.GitCommit != "" {
		s += fmt.Sprintf(" (commit: %s)", b.GitCommit)
	}
	if b.BuildDate != "" {
		s += fmt.Sprintf(" (built: %s)", b.BuildDate)
	}
	return s + fmt.Sprintf(" (go: %s, platform: %s)", b.GoVersion, b.Platform)
}

func shortCommit() string {
	if len(GitCommit) > 7 {
		return GitCommit[:7]
	}
	return GitCommit
}
