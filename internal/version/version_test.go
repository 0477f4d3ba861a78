package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withBuildInfo(t *testing.T, version, commit, date string) {
	t.Helper()
	prevVersion, prevCommit, prevDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = version, commit, date
	t.Cleanup(func() { Version, GitCommit, BuildDate = prevVersion, prevCommit, prevDate })
}

func TestDefaultVersionParses(t *testing.T) {
	_, err := parse()
	assert.NoError(t, err)
	assert.True(t, IsDevelopment())
}

func TestGetFormattedVersion(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		commit   string
		date     string
		expected string
	}{
		{"development build", "0.1.0", "unknown", "unknown", "MediWise v0.1.0"},
		{"release build", "1.2.3", "abcdef1234567", "2025-03-01", "MediWise v1.2.3, commit abcdef1, built 2025-03-01"},
		{"short commit", "1.2.3", "abc", "", "MediWise v1.2.3, commit abc"},
		{"invalid version", "bogus", "unknown", "unknown", "MediWise vbogus (invalid version)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, tt.version, tt.commit, tt.date)
			assert.Equal(t, tt.expected, GetFormattedVersion())
		})
	}
}

func TestGetDetailedVersion(t *testing.T) {
	withBuildInfo(t, "0.3.0-rc.1+42.abc1234", "abc1234", "2025-03-01")

	detailed := GetDetailedVersion()
	assert.True(t, strings.HasPrefix(detailed, "MediWise v0.3.0-rc.1+42.abc1234\n"))
	assert.Contains(t, detailed, "Pre-release: rc.1")
	assert.Contains(t, detailed, "Build Metadata: 42.abc1234")
	assert.Contains(t, detailed, "Go Version: go")
	assert.Contains(t, detailed, "Platform: ")
	assert.False(t, IsDevelopment())
}

func TestGetDetailedVersion_Invalid(t *testing.T) {
	withBuildInfo(t, "bogus", "unknown", "unknown")
	assert.Contains(t, GetDetailedVersion(), "(error: invalid semantic version")
}

func TestUserAgent(t *testing.T) {
	withBuildInfo(t, "0.4.1-beta.1+7", "unknown", "unknown")
	assert.Equal(t, "mediwise/0.4.1", UserAgent())

	withBuildInfo(t, "dev", "unknown", "unknown")
	assert.Equal(t, "mediwise/dev", UserAgent())
}
