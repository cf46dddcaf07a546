// Package compat answers "can this embedder run against this runtime": it
// exposes the runtime's semantic version and checks embedder-declared
// constraints against it before initialization.
package compat

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// version is the runtime's semantic version. Bump the minor for additive
// surface changes and the major for anything that breaks the FFI contract.
const version = "1.2.0"

// RuntimeVersion returns the runtime's version.
func RuntimeVersion() *semver.Version {
	return semver.MustParse(version)
}

// Check verifies the runtime version against a semver constraint such as
// "^1.0" or ">=1.2.0 <2". Embedders call it before runtime.Init; an error
// means the embedder was built against an incompatible runtime.
func Check(required string) error {
	con, err := semver.NewConstraint(required)
	if err != nil {
		return fmt.Errorf("compat: invalid version constraint %q: %w", required, err)
	}
	if v := RuntimeVersion(); !con.Check(v) {
		return fmt.Errorf("compat: runtime %s does not satisfy %q", v, con.String())
	}
	return nil
}

// BuildInfo describes the running runtime for diagnostics and the debug
// endpoint.
type BuildInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// Info returns the runtime's build description.
func Info() BuildInfo {
	return BuildInfo{
		Version:   version,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// String renders the build info as a single human-readable line.
func (b BuildInfo) String() string {
	return fmt.Sprintf("Asthra Runtime v%s (%s %s/%s)", b.Version, b.GoVersion, b.OS, b.Arch)
}
