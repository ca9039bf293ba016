package config

import (
	"runtime/debug"
	"strings"
)

// UnspecifiedVersion is reported when no version is configured and the binary
// carries no module version.
const UnspecifiedVersion = "unspecified"

// ResolveVersion returns the override when set, the main module version the
// binary was built with otherwise.
func ResolveVersion(override string) string {
	if v := strings.TrimSpace(override); v != "" {
		return v
	}

	return buildVersion(debug.ReadBuildInfo)
}

func buildVersion(readBuildInfo func() (*debug.BuildInfo, bool)) string {
	info, ok := readBuildInfo()

	if !ok || info == nil {
		return UnspecifiedVersion
	}

	// (devel) is reported for binaries built from a working tree.
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	return UnspecifiedVersion
}
