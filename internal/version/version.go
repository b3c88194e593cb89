// Package version provides version information for the recipe feeder.
//
// Build-time injection:
//
//	-ldflags "-X recipefeeder/internal/version.version=v1.0.0 -X recipefeeder/internal/version.commit=abc123 -X recipefeeder/internal/version.buildTime=2025-01-01T00:00:00Z"
package version

import (
	"fmt"
	"io"
)

// These variables are set via ldflags during build.
//
//nolint:gochecknoglobals // Required for build-time injection via ldflags.
var (
	version   string
	commit    string
	buildTime string
)

// ApplicationName is the name displayed in version output.
const ApplicationName = "Recipe Feeder"

// Default values used when version information is not available.
const (
	DefaultVersion   = "dev"
	DefaultCommit    = "unknown"
	DefaultBuildTime = "unknown"
)

// Info encapsulates version information with defaults applied.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
}

// GetVersion returns the current version information.
func GetVersion() *Info {
	info := &Info{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	}
	if info.Version == "" {
		info.Version = DefaultVersion
	}
	if info.Commit == "" {
		info.Commit = DefaultCommit
	}
	if info.BuildTime == "" {
		info.BuildTime = DefaultBuildTime
	}
	return info
}

// SetBuildVars overrides the build-time variables (used by build systems
// that inject into the cmd package instead).
func SetBuildVars(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
}

// Write writes the formatted version output. When short is true only the
// version number is printed.
func (i *Info) Write(w io.Writer, short bool) error {
	if short {
		_, err := fmt.Fprintln(w, i.Version)
		return err
	}
	_, err := fmt.Fprintf(w, "%s\nVersion: %s\nCommit: %s\nBuilt: %s\n",
		ApplicationName, i.Version, i.Commit, i.BuildTime)
	return err
}
