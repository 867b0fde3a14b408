// Package fsmeta provides version and build-wide settings.
package fsmeta

import (
	"fmt"
)

const (
	// VersionMajor represents the current major version.
	VersionMajor = 0
	// VersionMinor represents the current minor version.
	VersionMinor = 3
	// VersionPatch represents the current patch version.
	VersionPatch = 0
	// VersionTag represents a tag to be appended to the version string. It
	// must not contain spaces. If empty, no tag is appended to the version
	// string.
	VersionTag = "dev"
)

// Version provides a stringified version of the current version.
var Version string

func init() {
	if VersionTag != "" {
		Version = fmt.Sprintf("%d.%d.%d-%s", VersionMajor, VersionMinor, VersionPatch, VersionTag)
	} else {
		Version = fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
	}
}
