package filesystem

import (
	"os"
	"testing"
)

func TestPermissionsModeRoundTrip(t *testing.T) {
	for _, mode := range []os.FileMode{0, 0644, 0755, 0700, 0640, 0777, 0111} {
		if result := PermissionsFromMode(mode).Mode(); result != mode {
			t.Errorf("mode %o converted to %o", mode, result)
		}
	}
}

func TestPermissionsUserMirrorsOwner(t *testing.T) {
	permissions := PermissionsFromMode(0640)
	if permissions&PermissionUserRead == 0 || permissions&PermissionUserWrite == 0 {
		t.Error("user triple does not mirror owner triple:", permissions)
	}
	if permissions&PermissionUserExecute != 0 {
		t.Error("user triple has unexpected execute bit:", permissions)
	}
}

func TestPermissionsString(t *testing.T) {
	if s := PermissionsFromMode(0754).String(); s != "rwxrwxr-xr--" {
		t.Error("permission string incorrect:", s)
	}
	if s := Permissions(0).String(); s != "------------" {
		t.Error("empty permission string incorrect:", s)
	}
}

func TestHeuristicPermissions(t *testing.T) {
	testCases := []struct {
		name       string
		directory  bool
		attributes Attributes
		expected   string
	}{
		{"a.txt", false, AttributeReadOnly, "r--r--r--r--"},
		{"a.txt", false, 0, "rw-rw-rw-rw-"},
		{"run.EXE", false, 0, "rwxrwxrwxrwx"},
		{"script.cmd", false, AttributeReadOnly, "r-xr-xr-xr-x"},
		{"folder", true, 0, "rwxrwxrwxrwx"},
		{"folder", true, AttributeReadOnly, "r-xr-xr-xr-x"},
	}
	for _, testCase := range testCases {
		if result := heuristicPermissions(testCase.name, testCase.directory, testCase.attributes).String(); result != testCase.expected {
			t.Errorf("heuristic permissions for %q: %s != %s", testCase.name, result, testCase.expected)
		}
	}
}

func TestPermissionLookupToggle(t *testing.T) {
	original := PermissionLookupEnabled()
	defer SetPermissionLookupEnabled(original)
	SetPermissionLookupEnabled(true)
	if !PermissionLookupEnabled() {
		t.Error("permission lookup not enabled")
	}
	SetPermissionLookupEnabled(false)
	if PermissionLookupEnabled() {
		t.Error("permission lookup not disabled")
	}
}
