// Package version provides build information for ckan2csw.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables set via ldflags.
var (
	// Version is the release version.
	Version = "v0.0.0-dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

const cueModule = "cuelang.org/go"

// Info contains version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`

	// CUESDKVersion is the CUE module the model and config schemas are
	// evaluated with. Empty when build info is unavailable.
	CUESDKVersion string `json:"cueSDKVersion,omitempty"`
}

// Get returns the current version information.
func Get() Info {
	return Info{
		Version:       Version,
		GitCommit:     GitCommit,
		BuildDate:     BuildDate,
		GoVersion:     runtime.Version(),
		CUESDKVersion: moduleVersion(cueModule),
	}
}

// String returns a human-readable version string.
func (i Info) String() string {
	s := fmt.Sprintf("ckan2csw:\n  Version:  %s\n  Build ID: %s/%s\n  Go:       %s",
		i.Version, i.BuildDate, i.GitCommit, i.GoVersion)
	if i.CUESDKVersion != "" {
		s += fmt.Sprintf("\n\nCUE:\n  SDK Version: %s", i.CUESDKVersion)
	}
	return s
}

// UserAgent is sent with every catalog request.
func UserAgent() string {
	return "ckan2csw/" + Version
}

func moduleVersion(path string) string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, dep := range bi.Deps {
		if dep.Path == path {
			if dep.Replace != nil {
				return dep.Replace.Version
			}
			return dep.Version
		}
	}
	return ""
}
