// Package version reports the ghgfreight build version.
package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DevVersion is reported when no release version was stamped at build time.
const DevVersion = "0.0.0-dev"

// version is set at build time:
//
//	go build -ldflags "-X github.com/rshade/ghgfreight/pkg/version.version=1.2.3"
//
//nolint:gochecknoglobals // Overridden by the linker.
var version = DevVersion

// GetVersion returns the build version without a leading "v". A stamped
// value that is not valid semver is reported as DevVersion.
func GetVersion() string {
	v, err := Parse(version)
	if err != nil {
		return DevVersion
	}
	return v.String()
}

// Parse parses a version string, accepting an optional "v" prefix.
func Parse(s string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimSpace(s))
}

// IsRelease reports whether v is a release build: valid semver with no
// prerelease suffix.
func IsRelease(v string) bool {
	parsed, err := Parse(v)
	if err != nil {
		return false
	}
	return parsed.Prerelease() == ""
}
