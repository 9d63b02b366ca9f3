// Package settings carries build metadata and the per-run options of the
// sdtheme CLI.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "sdtheme"

// DefaultThemesRoot is where the firmware mounts the card's theme tree.
const DefaultThemesRoot = "/sd/themes"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds the commit hash, build version and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the settings of a single CLI invocation, after flags, environment
// and config file have been merged.
type Run struct {
	MinLogLevel int8
	ThemesRoot  string
	Theme       string
	ConfigFile  string
	IconBox     int
	IconCache   int
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the settings used when nothing overrides them.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		ThemesRoot:  DefaultThemesRoot,
		Theme:       "default",
		IconBox:     48,
		IconCache:   32,
		NoColor:     false,
		ExitOnError: true,
	}
}
