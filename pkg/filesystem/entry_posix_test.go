//go:build !windows

package filesystem

import (
	"testing"
)

func TestEntryPOSIX(t *testing.T) {
	testCases := []struct {
		path   string
		name   string
		parent string
		clean  bool
	}{
		{"/", "", "/", true},
		{"/usr", "usr", "/", true},
		{"/usr/lib/", "lib", "/usr", false},
		{"/usr/./lib", "lib", "/usr", false},
		{"/usr/foo ", "foo ", "/usr", true},
		{"file", "file", ".", true},
	}
	for _, testCase := range testCases {
		entry := NewEntry(testCase.path)
		if name := entry.Name(); name != testCase.name {
			t.Errorf("name of %q: %q != %q", testCase.path, name, testCase.name)
		}
		if parent := entry.Parent().Path(); parent != testCase.parent {
			t.Errorf("parent of %q: %q != %q", testCase.path, parent, testCase.parent)
		}
		if clean := entry.IsClean(); clean != testCase.clean {
			t.Errorf("cleanliness of %q: %t != %t", testCase.path, clean, testCase.clean)
		}
	}
}

func TestEntryTrailingSpacePreserved(t *testing.T) {
	if absolute := NewEntry("/tmp/foo ").Absolute(); absolute.Path() != "/tmp/foo " {
		t.Error("trailing space stripped:", absolute.Path())
	}
	if absolute := NewEntry("/tmp/foo.").Absolute(); absolute.Path() != "/tmp/foo." {
		t.Error("trailing dot stripped:", absolute.Path())
	}
}

func TestEntryJoin(t *testing.T) {
	if joined := NewEntry("/").Join("usr"); joined.Path() != "/usr" {
		t.Error("join onto root incorrect:", joined)
	}
	if joined := NewEntry("/usr").Join("lib"); joined.Path() != "/usr/lib" {
		t.Error("join onto directory incorrect:", joined)
	}
	if joined := NewEntry("/usr").Join(".."); joined.Path() != "/usr/.." {
		t.Error("join cleaned the result:", joined)
	}
}
