//go:build !windows

package filesystem

import (
	"io"
	"io/fs"
	"os"

	"github.com/mutagen-io/fsmeta/pkg/logging"
)

// posixEnumerator enumerates a directory through an open directory file.
type posixEnumerator struct {
	// directory is the directory entry.
	directory Entry
	// file is the open directory.
	file *os.File
}

// openEnumerator opens a directory for enumeration.
func openEnumerator(directory Entry, _ *logging.Logger) (enumerator, error) {
	path := directory.Native()
	file, err := os.Open(path)
	if err != nil {
		return nil, newError("open", path, err)
	}
	return &posixEnumerator{directory: directory, file: file}, nil
}

// enumerationMetadata converts a directory entry to partial metadata. Links
// are reported with only their kind and attributes known.
func enumerationMetadata(child Entry, content fs.DirEntry) *Metadata {
	metadata := &Metadata{}
	metadata.SetAttributes(nameAttributes(child))
	mode := content.Type()
	if mode&fs.ModeSymlink != 0 {
		metadata.SetLinkKind(LinkKindSymbolicLink)
		return metadata
	}
	metadata.SetLinkKind(LinkKindNone)
	metadata.SetExists(true)
	switch {
	case mode.IsDir():
		metadata.SetType(FileTypeDirectory)
	case mode.IsRegular():
		metadata.SetType(FileTypeFile)
	default:
		metadata.SetType(FileTypeOther)
	}
	return metadata
}

// next implements enumerator.next. Entries are read one at a time from the
// buffer that the operating system fills.
func (e *posixEnumerator) next() (Child, error) {
	contents, err := e.file.ReadDir(1)
	if len(contents) == 0 {
		if err == nil || err == io.EOF {
			return Child{}, io.EOF
		}
		return Child{}, newError("readdir", e.directory.Native(), err)
	}
	child := e.directory.Join(contents[0].Name())
	return Child{Entry: child, Metadata: enumerationMetadata(child, contents[0])}, nil
}

// close implements enumerator.close.
func (e *posixEnumerator) close() error {
	return e.file.Close()
}
