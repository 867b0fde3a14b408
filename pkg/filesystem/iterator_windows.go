package filesystem

import (
	"io"
	"strings"

	"golang.org/x/sys/windows"

	"github.com/mutagen-io/fsmeta/pkg/logging"
)

// windowsEnumerator enumerates a directory through a find handle.
type windowsEnumerator struct {
	// directory is the directory entry.
	directory Entry
	// handle is the find handle.
	handle windows.Handle
	// pending holds the result of FindFirstFile until it's consumed.
	pending *windows.Win32finddata
}

// openEnumerator opens a directory for enumeration. UNC server roots that
// can't be enumerated directly are enumerated through the server's share
// list.
func openEnumerator(directory Entry, logger *logging.Logger) (enumerator, error) {
	path := directory.Native()
	pattern16, err := windows.UTF16PtrFromString(strings.TrimRight(path, `\/`) + `\*`)
	if err != nil {
		return nil, newKindError(ErrorKindInvalidPath, "open", path, "path contains NUL")
	}
	var data windows.Win32finddata
	handle, err := windows.FindFirstFile(pattern16, &data)
	if err != nil {
		if children, ok := shareChildren(directory, logger); ok {
			return &sliceEnumerator{children: children}, nil
		} else if err == windows.ERROR_FILE_NOT_FOUND {
			return &sliceEnumerator{}, nil
		}
		return nil, newError("find", path, err)
	}
	return &windowsEnumerator{directory: directory, handle: handle, pending: &data}, nil
}

// shareChildren synthesizes directory children for the shares of a UNC
// server root.
func shareChildren(directory Entry, logger *logging.Logger) ([]Child, bool) {
	server, share, _, ok := splitUNC(directory.Path())
	if !ok || share != "" {
		return nil, false
	}
	shares, err := listShares(loadCapabilities(logger), `\\`+server)
	if err != nil {
		logger.Debugf("Unable to list shares on %s: %v", server, err)
		return nil, false
	}
	children := make([]Child, 0, len(shares))
	for _, name := range shares {
		metadata := &Metadata{}
		metadata.SetExists(true)
		metadata.SetType(FileTypeDirectory)
		metadata.SetLinkKind(LinkKindNone)
		metadata.SetSize(0)
		metadata.SetAttributes(0)
		children = append(children, Child{Entry: directory.Join(name), Metadata: metadata})
	}
	return children, true
}

// findMetadata converts find data to partial metadata. Links are reported
// with only their kind and attributes known.
func findMetadata(child Entry, data *windows.Win32finddata) *Metadata {
	stat := statFromFindData(data)
	metadata := &Metadata{}
	metadata.SetAttributes(attributesFromNative(stat.attributes, child))
	if stat.attributes&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0 {
		if kind := linkKindFromTag(data.Reserved0); kind != LinkKindNone {
			metadata.SetLinkKind(kind)
			return metadata
		}
	}
	metadata.SetLinkKind(LinkKindNone)
	metadata.SetExists(true)
	metadata.SetType(fileTypeFromAttributes(stat.attributes))
	if stat.attributes&windows.FILE_ATTRIBUTE_DIRECTORY != 0 {
		metadata.SetSize(0)
	} else {
		metadata.SetSize(stat.size)
	}
	metadata.SetTimes(filetimeToTime(stat.creation), filetimeToTime(stat.write), filetimeToTime(stat.access))
	return metadata
}

// next implements enumerator.next.
func (e *windowsEnumerator) next() (Child, error) {
	data := e.pending
	if data != nil {
		e.pending = nil
	} else {
		data = &windows.Win32finddata{}
		if err := windows.FindNextFile(e.handle, data); err == windows.ERROR_NO_MORE_FILES {
			return Child{}, io.EOF
		} else if err != nil {
			return Child{}, newError("find", e.directory.Native(), err)
		}
	}
	child := e.directory.Join(windows.UTF16ToString(data.FileName[:]))
	return Child{Entry: child, Metadata: findMetadata(child, data)}, nil
}

// close implements enumerator.close.
func (e *windowsEnumerator) close() error {
	return windows.FindClose(e.handle)
}
