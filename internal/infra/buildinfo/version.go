package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables (set via ldflags).
var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// Info contains build information.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the build information.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromVCS(&info, bi.Settings)
	}
	return info
}

// fillFromVCS fills fields still at their defaults from VCS settings.
func fillFromVCS(info *Info, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && s.Value != "" {
				info.Commit = s.Value
				if len(info.Commit) > 12 {
					info.Commit = info.Commit[:12]
				}
			}
		case "vcs.time":
			if info.BuildTime == "unknown" && s.Value != "" {
				info.BuildTime = s.Value
			}
		}
	}
}

// String returns a formatted version string.
func (i Info) String() string {
	return fmt.Sprintf("%s (%s) built at %s with %s for %s", i.Version, i.Commit, i.BuildTime, i.GoVersion, i.Platform)
}

// String returns the formatted version string of this binary.
func String() string {
	return Get().String()
}
