// Package buildinfo holds build-time metadata that is not part of the user configuration.
package buildinfo

import "runtime/debug"

// Set with -ldflags "-X github.com/JimmyVaras/ros-web-app/internal/buildinfo.version=..."
var (
	version   string
	buildDate string
)

const unknown = "unknown"

// Context contains build-time metadata.
type Context struct {
	// Version holds the Git version tag from build
	Version string `json:"version" yaml:"version"`

	// BuildDate is the time when the binary was built
	BuildDate string `json:"buildDate" yaml:"buildDate"`

	// GoVersion is the toolchain the binary was built with
	GoVersion string `json:"goVersion" yaml:"goVersion"`
}

// Current returns the metadata of the running binary. Values that were not
// injected at link time fall back to the module build information.
func Current() *Context {
	c := &Context{Version: version, BuildDate: buildDate}
	if info, ok := debug.ReadBuildInfo(); ok {
		c.GoVersion = info.GoVersion
		if c.Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			c.Version = info.Main.Version
		}
		if c.BuildDate == "" {
			for _, s := range info.Settings {
				if s.Key == "vcs.time" {
					c.BuildDate = s.Value
				}
			}
		}
	}
	return c
}

// GetVersion returns the version or "unknown".
func (c *Context) GetVersion() string {
	if c == nil || c.Version == "" {
		return unknown
	}
	return c.Version
}

// GetBuildDate returns the build date or "unknown".
func (c *Context) GetBuildDate() string {
	if c == nil || c.BuildDate == "" {
		return unknown
	}
	return c.BuildDate
}

// Release is the identifier used when reporting errors, e.g. "rosweb@v1.2.0".
func (c *Context) Release() string {
	return "rosweb@" + c.GetVersion()
}
