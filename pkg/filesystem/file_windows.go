package filesystem

import (
	"os"

	"github.com/Microsoft/go-winio"
	"golang.org/x/sys/windows"

	"github.com/mutagen-io/fsmeta/pkg/logging"
)

// fileMetadata queries metadata through an open file handle. Times and
// attributes come from the handle's basic information and the size and
// directory flag from its standard information. Identity is computed from the
// handle itself rather than by reopening the path.
func fileMetadata(file *os.File, fields Fields, logger *logging.Logger) (*Metadata, error) {
	basic, err := winio.GetFileBasicInfo(file)
	if err != nil {
		return nil, newError("query basic information", file.Name(), err)
	}
	standard, err := winio.GetFileStandardInfo(file)
	if err != nil {
		return nil, newError("query standard information", file.Name(), err)
	}
	stat := &nativeStat{
		attributes: basic.FileAttributes,
		creation:   basic.CreationTime,
		access:     basic.LastAccessTime,
		write:      basic.LastWriteTime,
	}
	if standard.Directory {
		stat.attributes |= windows.FILE_ATTRIBUTE_DIRECTORY
	} else if standard.EndOfFile > 0 {
		stat.size = uint64(standard.EndOfFile)
	}

	backend := &windowsBackend{logger: logger, caps: loadCapabilities(logger)}
	metadata := &Metadata{}
	metadata.SetLinkKind(LinkKindNone)
	backend.fill(metadata, NewEntry(file.Name()), stat, fields&^FieldIdentity)
	if fields&FieldIdentity != 0 {
		identity, err := backend.fileIdentity(file)
		if err != nil {
			logger.Debugf("Unable to compute identity for %s: %v", file.Name(), err)
		}
		metadata.SetIdentity(identity)
	}
	return metadata, nil
}
