package fsmeta

import (
	"strings"
	"testing"
)

// TestVersionFormat tests that the version string contains its numeric
// components and tag.
func TestVersionFormat(t *testing.T) {
	if !strings.HasPrefix(Version, "0.3.0") {
		t.Error("unexpected version prefix:", Version)
	}
	if VersionTag != "" && !strings.HasSuffix(Version, "-"+VersionTag) {
		t.Error("version tag missing:", Version)
	}
	if strings.Contains(Version, " ") {
		t.Error("version contains spaces")
	}
}
