package config

import (
	"os"
	"runtime/debug"
	"strings"
)

// fallbackVersion is reported when neither APP_VERSION nor build info carry one
const fallbackVersion = "0.1.0"

// GetVersion returns the version from APP_VERSION, else the module build info
func GetVersion() string {
	// Set by CI/CD
	if envVersion := strings.TrimSpace(os.Getenv("APP_VERSION")); envVersion != "" {
		return envVersion
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if v := buildInfoVersion(info); v != "" {
			return v
		}
	}

	return fallbackVersion
}

// buildInfoVersion extracts a usable version from build info.
// "(devel)" means a local build; the short VCS revision is used when present.
func buildInfoVersion(info *debug.BuildInfo) string {
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return fallbackVersion + "+" + s.Value[:7]
		}
	}
	return ""
}
