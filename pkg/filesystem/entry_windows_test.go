package filesystem

import (
	"testing"
)

func TestEntryWindows(t *testing.T) {
	testCases := []struct {
		path      string
		name      string
		absolute  bool
		driveRoot bool
	}{
		{`C:\`, "", true, true},
		{`c:/`, "", true, true},
		{`C:`, "", false, false},
		{`C:\Windows`, "Windows", true, false},
		{`C:\Windows\`, "Windows", true, false},
		{`\\server\share\file`, "file", true, false},
		{`\\?\C:\Windows`, "Windows", true, false},
		{`\\?\C:\`, "", true, true},
		{`relative\file`, "file", false, false},
	}
	for _, testCase := range testCases {
		entry := NewEntry(testCase.path)
		if name := entry.Name(); name != testCase.name {
			t.Errorf("name of %q: %q != %q", testCase.path, name, testCase.name)
		}
		if absolute := entry.IsAbsolute(); absolute != testCase.absolute {
			t.Errorf("absoluteness of %q: %t != %t", testCase.path, absolute, testCase.absolute)
		}
		if driveRoot := entry.IsDriveRoot(); driveRoot != testCase.driveRoot {
			t.Errorf("drive root check of %q: %t != %t", testCase.path, driveRoot, testCase.driveRoot)
		}
	}
}

func TestEntryAbsoluteWindows(t *testing.T) {
	testCases := map[string]string{
		`c:\foo`:          `C:\foo`,
		`C:\foo\..\bar`:   `C:\bar`,
		`C:\foo `:         `C:\foo `,
		`C:\dir\foo.`:     `C:\dir\foo.`,
		`C:\dir\..\foo .`: `C:\foo .`,
	}
	for input, expected := range testCases {
		if result := NewEntry(input).Absolute().Path(); result != expected {
			t.Errorf("absolute form of %q: %q != %q", input, result, expected)
		}
	}
}
