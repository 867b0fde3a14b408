//go:build !windows

package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// separators is the set of path separator characters.
const separators = "/"

// isAbsolutePath reports whether or not path is absolute.
func isAbsolutePath(path string) bool {
	return strings.HasPrefix(path, "/")
}

// isDriveRootPath reports whether or not path is the filesystem root.
func isDriveRootPath(path string) bool {
	return path == "/"
}

// absolutePath computes the absolute, cleaned form of path. POSIX cleaning
// never strips trailing spaces or dots, so no restoration is necessary.
func absolutePath(path string) string {
	if isAbsolutePath(path) {
		return filepath.Clean(path)
	}
	workingDirectory, err := os.Getwd()
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Join(workingDirectory, path)
}

// nativePath returns the native form of path.
func nativePath(path string) string {
	return path
}

// RootPath returns the root of the filesystem hierarchy.
func RootPath() Entry {
	return NewEntry("/")
}
