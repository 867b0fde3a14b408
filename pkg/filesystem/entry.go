package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mutagen-io/fsmeta/pkg/filesystem/internal/longpath"
)

// Entry is an immutable filesystem path. It stores the path exactly as
// supplied and derives its native form and classification on demand.
// Transformations such as Absolute and Clean return new entries. Entry
// construction never fails; malformed paths fail when they are queried.
type Entry struct {
	// path is the path as supplied by the caller.
	path string
}

// NewEntry creates a new entry for the specified path.
func NewEntry(path string) Entry {
	return Entry{path: path}
}

// Path returns the path as supplied by the caller.
func (e Entry) Path() string {
	return e.path
}

// String implements fmt.Stringer.String.
func (e Entry) String() string {
	return e.path
}

// IsEmpty reports whether or not the path is empty. The empty path denotes
// the set of drive roots when enumerated.
func (e Entry) IsEmpty() bool {
	return e.path == ""
}

// IsAbsolute reports whether or not the path is absolute.
func (e Entry) IsAbsolute() bool {
	return isAbsolutePath(e.path)
}

// IsRelative reports whether or not the path is relative.
func (e Entry) IsRelative() bool {
	return !isAbsolutePath(e.path)
}

// IsDriveRoot reports whether or not the path is the root of a drive (or the
// filesystem root on POSIX systems).
func (e Entry) IsDriveRoot() bool {
	return isDriveRootPath(e.path)
}

// IsClean reports whether or not the path is free of . and .. elements,
// redundant separators, and trailing separators (other than that of a root).
// The empty path is not clean.
func (e Entry) IsClean() bool {
	return e.path != "" && filepath.Clean(e.path) == filepath.FromSlash(e.path)
}

// Clean returns a lexically cleaned copy of the entry. Cleaning never strips
// trailing spaces or dots from names.
func (e Entry) Clean() Entry {
	if e.path == "" {
		return e
	}
	return Entry{path: filepath.Clean(e.path)}
}

// Absolute returns an absolute, cleaned form of the entry. Relative paths are
// resolved against the process working directory. On Windows, the drive
// letter is forced to uppercase and any trailing spaces or dots that native
// normalization strips from the final name are restored. If the working
// directory cannot be determined, the cleaned relative entry is returned and
// will fail when queried.
func (e Entry) Absolute() Entry {
	if e.path == "" {
		return e
	}
	return Entry{path: absolutePath(e.path)}
}

// Native returns the path in the platform's native form: native separators
// and, on Windows, the extended-length prefix for paths that exceed legacy
// length limits.
func (e Entry) Native() string {
	return nativePath(e.path)
}

// Name returns the final element of the path. It is empty for roots and for
// the empty path.
func (e Entry) Name() string {
	if e.path == "" || e.IsDriveRoot() {
		return ""
	}
	trimmed := strings.TrimRight(e.path, separators)
	if trimmed == "" {
		return ""
	}
	if index := strings.LastIndexAny(trimmed, separators); index >= 0 {
		return trimmed[index+1:]
	}
	if volume := filepath.VolumeName(trimmed); volume != "" {
		return trimmed[len(volume):]
	}
	return trimmed
}

// Parent returns the entry for the parent directory. Trailing separators are
// ignored. The parent of a root is the root itself.
func (e Entry) Parent() Entry {
	path := e.path
	if !e.IsDriveRoot() {
		trimmed := strings.TrimRight(path, separators)
		if len(trimmed) > len(filepath.VolumeName(path)) {
			path = trimmed
		}
	}
	return Entry{path: filepath.Dir(path)}
}

// Join returns the entry for a child of this entry. The name is appended
// without cleaning.
func (e Entry) Join(name string) Entry {
	if e.path == "" {
		return Entry{path: name}
	}
	if strings.ContainsRune(separators, rune(e.path[len(e.path)-1])) {
		return Entry{path: e.path + name}
	}
	return Entry{path: e.path + string(os.PathSeparator) + name}
}

// hasShortcutSuffix reports whether or not the final name has the shortcut
// extension.
func (e Entry) hasShortcutSuffix() bool {
	return strings.HasSuffix(strings.ToLower(e.Name()), ".lnk")
}

// restoreTrailing re-appends the trailing spaces and dots of the final name
// in original to normalized if a normalization routine stripped them. Names
// consisting only of spaces and dots (such as . and ..) are navigation
// elements and are left alone.
func restoreTrailing(original, normalized string) string {
	last := original
	if index := strings.LastIndexAny(original, `\/`); index >= 0 {
		last = original[index+1:]
	}
	trimmed := strings.TrimRight(last, " .")
	if trimmed == "" || trimmed == last {
		return normalized
	}
	suffix := last[len(trimmed):]
	if strings.HasSuffix(normalized, suffix) {
		return normalized
	}
	return strings.TrimRight(normalized, " .") + suffix
}

// upperDriveLetter forces the drive letter of a drive path to uppercase.
func upperDriveLetter(path string) string {
	if len(path) >= 2 && path[1] == ':' && 'a' <= path[0] && path[0] <= 'z' {
		return string(path[0]-'a'+'A') + path[1:]
	}
	return path
}

// isDriveLetterRoot reports whether path has the form X:\ or X:/.
func isDriveLetterRoot(path string) bool {
	if len(path) != 3 || path[1] != ':' || !longpath.IsSeparator(path[2]) {
		return false
	}
	c := path[0]
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// splitUNC splits a UNC path (\\server\share\rest, with either separator and
// optionally in extended-length form) into its components. The share and rest
// components may be empty.
func splitUNC(path string) (server, share, rest string, ok bool) {
	path = longpath.Strip(path)
	if len(path) < 3 || !longpath.IsSeparator(path[0]) || !longpath.IsSeparator(path[1]) {
		return "", "", "", false
	}
	body := path[2:]
	index := strings.IndexAny(body, `\/`)
	if index < 0 {
		server = body
	} else {
		server, body = body[:index], body[index+1:]
		if index = strings.IndexAny(body, `\/`); index < 0 {
			share = body
		} else {
			share, rest = body[:index], body[index+1:]
		}
	}
	if server == "" || server == "." || server == "?" {
		return "", "", "", false
	}
	return server, share, rest, true
}
