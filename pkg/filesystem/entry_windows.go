package filesystem

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"

	"github.com/mutagen-io/fsmeta/pkg/filesystem/internal/longpath"
)

// separators is the set of path separator characters.
const separators = `\/`

// isAbsolutePath reports whether or not path is absolute.
func isAbsolutePath(path string) bool {
	return longpath.IsAbs(path)
}

// isDriveRootPath reports whether or not path is the root of a drive.
func isDriveRootPath(path string) bool {
	return isDriveLetterRoot(longpath.Strip(path))
}

// fullPathName wraps GetFullPathName, growing the buffer as necessary.
func fullPathName(path string) (string, error) {
	path16, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return "", err
	}
	buffer := make([]uint16, windows.MAX_PATH)
	for {
		length, err := windows.GetFullPathName(path16, uint32(len(buffer)), &buffer[0], nil)
		if err != nil {
			return "", err
		} else if length < uint32(len(buffer)) {
			return windows.UTF16ToString(buffer[:length]), nil
		}
		buffer = make([]uint16, length)
	}
}

// absolutePath computes the absolute, cleaned form of path. GetFullPathName
// strips trailing spaces and dots from the final name, which changes the
// object referenced, so they are restored afterward.
func absolutePath(path string) string {
	if longpath.IsExtended(path) {
		return path
	}
	if longpath.IsAbs(path) && filepath.Clean(path) == filepath.FromSlash(path) {
		return upperDriveLetter(path)
	}
	full, err := fullPathName(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return upperDriveLetter(restoreTrailing(path, full))
}

// nativePath returns the native form of path.
func nativePath(path string) string {
	return longpath.Fix(filepath.FromSlash(path))
}

// RootPath returns the root of the system drive, falling back to C:\.
func RootPath() Entry {
	drive := os.Getenv("SystemDrive")
	if drive == "" {
		drive = "C:"
	}
	return NewEntry(upperDriveLetter(drive) + `\`)
}
