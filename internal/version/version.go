// Package version reports the MediWise build. Version, GitCommit and BuildDate are set with
// -ldflags "-X mediwise/internal/version.Version=..." at release time.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Build variables.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const productName = "MediWise"

// GetVersion returns Version as set at build time.
func GetVersion() string {
	return Version
}

func parse() (*semver.Version, error) {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version %q: %w", Version, err)
	}
	return sv, nil
}

// GetFormattedVersion returns the one-line banner, e.g.
// "MediWise v1.2.3, commit abcdef1, built 2025-03-01".
func GetFormattedVersion() string {
	head := productName + " v" + Version
	if _, err := parse(); err != nil {
		return head + " (invalid version)"
	}

	parts := []string{head}
	if known(GitCommit) {
		commit := GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		parts = append(parts, "commit "+commit)
	}
	if known(BuildDate) {
		parts = append(parts, "built "+BuildDate)
	}
	return strings.Join(parts, ", ")
}

// GetDetailedVersion returns the multi-line report printed by "\version detail".
func GetDetailedVersion() string {
	sv, err := parse()
	if err != nil {
		return fmt.Sprintf("%s v%s (error: %v)", productName, Version, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s v%s\n", productName, Version)
	fmt.Fprintf(&b, "Git Commit: %s\nBuild Date: %s\n", GitCommit, BuildDate)
	if pre := sv.Prerelease(); pre != "" {
		fmt.Fprintf(&b, "Pre-release: %s\n", pre)
	}
	if meta := sv.Metadata(); meta != "" {
		fmt.Fprintf(&b, "Build Metadata: %s\n", meta)
	}
	fmt.Fprintf(&b, "Go Version: %s\nPlatform: %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return b.String()
}

// UserAgent identifies the client to the backend, e.g. "mediwise/0.1.0". Pre-release and
// build metadata are left out.
func UserAgent() string {
	name := strings.ToLower(productName)
	sv, err := parse()
	if err != nil {
		return name + "/" + Version
	}
	return fmt.Sprintf("%s/%d.%d.%d", name, sv.Major(), sv.Minor(), sv.Patch())
}

// IsDevelopment reports whether the binary was built without release ldflags.
func IsDevelopment() bool {
	return !known(GitCommit) || !known(BuildDate)
}

func known(value string) bool {
	return value != "" && value != "unknown"
}
