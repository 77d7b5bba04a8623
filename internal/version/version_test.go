package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withBuildInfo(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })
}

func TestGetInfo(t *testing.T) {
	withBuildInfo(t, "1.2.3+45.abc1234", "abc1234def", "2025-06-01")

	info, err := GetInfo()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3+45.abc1234", info.Version)
	assert.Equal(t, SchemaRevision, info.SchemaRevision)
	assert.Equal(t, "45.abc1234", info.SemVer.Metadata())
	assert.Contains(t, info.Platform, "/")
}

func TestGetInfo_InvalidVersion(t *testing.T) {
	withBuildInfo(t, "not-a-version", "unknown", "unknown")

	_, err := GetInfo()
	assert.Error(t, err)
	assert.Equal(t, "examprep vnot-a-version (invalid version)", GetFormattedVersion())
	assert.Equal(t, "not-a-version", GetBaseVersion())
}

func TestGetBaseVersion(t *testing.T) {
	tests := []struct {
		version  string
		expected string
	}{
		{"0.3.0", "0.3.0"},
		{"1.0.0-beta.1", "1.0.0"},
		{"2.1.4+7.deadbee", "2.1.4"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			withBuildInfo(t, tt.version, "unknown", "unknown")
			assert.Equal(t, tt.expected, GetBaseVersion())
		})
	}
}

func TestGetFormattedVersion(t *testing.T) {
	withBuildInfo(t, "0.3.0", "0123456789abcdef", "2025-06-01")
	assert.Equal(t, "examprep v0.3.0, commit 0123456, built 2025-06-01", GetFormattedVersion())

	GitCommit, BuildDate = "unknown", "unknown"
	assert.Equal(t, "examprep v0.3.0", GetFormattedVersion())
}

func TestGetDetailedVersion(t *testing.T) {
	withBuildInfo(t, "0.3.0+12.abc", "abc", "2025-06-01")

	detailed := GetDetailedVersion()
	assert.True(t, strings.HasPrefix(detailed, "examprep v0.3.0+12.abc\n"))
	assert.Contains(t, detailed, "Framework Schema: r1")
	assert.Contains(t, detailed, "Build Metadata: 12.abc")
	assert.Contains(t, detailed, "Release Channel: stable")
}

func TestUserAgent(t *testing.T) {
	withBuildInfo(t, "0.3.0-rc.1", "unknown", "unknown")
	assert.Equal(t, "examprep/0.3.0 (schema r1)", UserAgent())
}

func TestIsPrereleaseAndDevelopment(t *testing.T) {
	withBuildInfo(t, "1.0.0-alpha", "unknown", "2025-06-01")
	assert.True(t, IsPrerelease())
	assert.True(t, IsDevelopment())

	Version, GitCommit = "1.0.0", "abc"
	assert.False(t, IsPrerelease())
	assert.False(t, IsDevelopment())
}

func TestReleaseChannel(t *testing.T) {
	tests := []struct {
		version  string
		commit   string
		expected string
	}{
		{"1.0.0", "unknown", "development"},
		{"1.0.0-rc.1", "unknown", "development"},
		{"1.0.0-rc.1", "abc", "prerelease"},
		{"1.0.0", "abc", "stable"},
	}

	for _, tt := range tests {
		t.Run(tt.version+"/"+tt.commit, func(t *testing.T) {
			withBuildInfo(t, tt.version, tt.commit, "2025-06-01")
			assert.Equal(t, tt.expected, ReleaseChannel())
		})
	}
}
