package longpath

import (
	"strings"
	"testing"
)

func TestVolumeName(t *testing.T) {
	testCases := []struct {
		path     string
		expected string
	}{
		{"", ""},
		{"c", ""},
		{"c:", "c:"},
		{`C:\Windows`, "C:"},
		{`\\server\share\dir`, `\\server\share`},
		{`//server/share`, `//server/share`},
		{`\\server`, ""},
		{`\\?\c:\dir`, ""},
		{`relative\path`, ""},
	}
	for _, testCase := range testCases {
		if volume := VolumeName(testCase.path); volume != testCase.expected {
			t.Errorf("volume name mismatch for %q: %q != %q", testCase.path, volume, testCase.expected)
		}
	}
}

func TestIsAbs(t *testing.T) {
	testCases := []struct {
		path     string
		expected bool
	}{
		{`c:\`, true},
		{`c:/dir/file`, true},
		{`c:`, false},
		{`c:dir`, false},
		{`\dir`, false},
		{`dir\file`, false},
		{`\\server\share`, true},
		{`\\server\share\file`, true},
		{`\\?\c:\file`, true},
	}
	for _, testCase := range testCases {
		if result := IsAbs(testCase.path); result != testCase.expected {
			t.Errorf("IsAbs(%q) = %t, expected %t", testCase.path, result, testCase.expected)
		}
	}
}

func TestStrip(t *testing.T) {
	testCases := []struct {
		path     string
		expected string
	}{
		{`\??\C:\target`, `C:\target`},
		{`\\?\C:\target`, `C:\target`},
		{`\\?\UNC\server\share\x`, `\\server\share\x`},
		{`\??\UNC\server\share`, `\\server\share`},
		{`C:\plain`, `C:\plain`},
		{`relative`, `relative`},
	}
	for _, testCase := range testCases {
		if result := Strip(testCase.path); result != testCase.expected {
			t.Errorf("Strip(%q) = %q, expected %q", testCase.path, result, testCase.expected)
		}
	}
}

func TestFixShortPathUnmodified(t *testing.T) {
	for _, path := range []string{`C:\short`, `\\server\share\short`, `relative`} {
		if fixed := Fix(path); fixed != path {
			t.Errorf("short path modified: %q -> %q", path, fixed)
		}
	}
}

func TestFixLongDrivePath(t *testing.T) {
	component := strings.Repeat("a", 100)
	path := `C:\` + component + `\.\` + component + `/` + component
	fixed := Fix(path)
	expected := `\\?\C:\` + component + `\` + component + `\` + component
	if fixed != expected {
		t.Error("long drive path conversion mismatch:", fixed)
	}
	if Fix(fixed) != fixed {
		t.Error("extended path modified on second conversion")
	}
}

func TestFixLongUNCPath(t *testing.T) {
	component := strings.Repeat("b", 120)
	path := `\\server\share\` + component + `\` + component
	fixed := Fix(path)
	expected := `\\?\UNC\server\share\` + component + `\` + component
	if fixed != expected {
		t.Error("long UNC path conversion mismatch:", fixed)
	}
	if Strip(fixed) != path {
		t.Error("stripped UNC path does not match original")
	}
}

func TestFixLongPathWithParentReference(t *testing.T) {
	component := strings.Repeat("c", 130)
	path := `C:\` + component + `\..\` + component
	if Fix(path) != path {
		t.Error("path with parent reference converted")
	}
}
