// Package version provides build and release information for examprep.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Build information that can be set at compile time via -ldflags
var (
	// Version is the semantic version of the application
	Version = "0.3.0"

	// GitCommit is the git commit hash when the binary was built
	GitCommit = "unknown"

	// BuildDate is the date when the binary was built
	BuildDate = "unknown"
)

// SchemaRevision identifies the framework JSON layout the prompt asks for.
// Bump it whenever a required key is added, renamed or removed.
const SchemaRevision = 1

// Info represents comprehensive version information
type Info struct {
	Version        string          `json:"version"`
	SchemaRevision int             `json:"schemaRevision"`
	GitCommit      string          `json:"gitCommit"`
	BuildDate      string          `json:"buildDate"`
	GoVersion      string          `json:"goVersion"`
	Platform       string          `json:"platform"`
	SemVer         *semver.Version `json:"-"`
}

// GetInfo returns comprehensive version information
func GetInfo() (*Info, error) {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}

	return &Info{
		Version:        Version,
		SchemaRevision: SchemaRevision,
		GitCommit:      GitCommit,
		BuildDate:      BuildDate,
		GoVersion:      runtime.Version(),
		Platform:       fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		SemVer:         sv,
	}, nil
}

// GetBaseVersion returns major.minor.patch without prerelease or build metadata
func GetBaseVersion() string {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return Version
	}
	return fmt.Sprintf("%d.%d.%d", sv.Major(), sv.Minor(), sv.Patch())
}

// ShortCommit returns the first seven characters of GitCommit, or "" when unknown.
func ShortCommit() string {
	if GitCommit == "" || GitCommit == "unknown" {
		return ""
	}
	if len(GitCommit) > 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

// GetFormattedVersion returns a one-line version string
func GetFormattedVersion() string {
	if _, err := GetInfo(); err != nil {
		return fmt.Sprintf("examprep v%s (invalid version)", Version)
	}

	parts := []string{fmt.Sprintf("examprep v%s", Version)}
	if commit := ShortCommit(); commit != "" {
		parts = append(parts, "commit "+commit)
	}
	if BuildDate != "unknown" && BuildDate != "" {
		parts = append(parts, "built "+BuildDate)
	}
	return strings.Join(parts, ", ")
}

// GetDetailedVersion returns multi-line version information for debugging
func GetDetailedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("examprep v%s (error: %v)", Version, err)
	}

	lines := []string{
		fmt.Sprintf("examprep v%s", info.Version),
		fmt.Sprintf("Framework Schema: r%d", info.SchemaRevision),
		fmt.Sprintf("Git Commit: %s", info.GitCommit),
		fmt.Sprintf("Build Date: %s", info.BuildDate),
	}
	if meta := info.SemVer.Metadata(); meta != "" {
		lines = append(lines, fmt.Sprintf("Build Metadata: %s", meta))
	}
	lines = append(lines,
		fmt.Sprintf("Release Channel: %s", ReleaseChannel()),
		fmt.Sprintf("Go Version: %s", info.GoVersion),
		fmt.Sprintf("Platform: %s", info.Platform),
	)
	return strings.Join(lines, "\n")
}

// UserAgent is the identifier sent on outbound HTTP requests and API responses.
func UserAgent() string {
	return fmt.Sprintf("examprep/%s (schema r%d)", GetBaseVersion(), SchemaRevision)
}

// IsPrerelease returns true if the current version is a prerelease
func IsPrerelease() bool {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return false
	}
	return sv.Prerelease() != ""
}

// IsDevelopment returns true if this appears to be a development build
func IsDevelopment() bool {
	return GitCommit == "unknown" || BuildDate == "unknown"
}

// ReleaseChannel names the kind of build: "development" without ldflags build
// info, "prerelease" for a prerelease version, "stable" otherwise.
func ReleaseChannel() string {
	switch {
	case IsDevelopment():
		return "development"
	case IsPrerelease():
		return "prerelease"
	default:
		return "stable"
	}
}
