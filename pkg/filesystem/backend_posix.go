//go:build !windows

package filesystem

import (
	"encoding/binary"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/mutagen-io/fsmeta/pkg/logging"
	"github.com/mutagen-io/fsmeta/pkg/must"
)

// posixBackend is the POSIX Backend implementation.
type posixBackend struct {
	// logger is the backend logger.
	logger *logging.Logger
}

// NewNativeBackend creates the backend for the current platform.
func NewNativeBackend(logger *logging.Logger) Backend {
	return &posixBackend{logger: logger}
}

// fileTypeFromMode converts the format bits of a POSIX mode to a file type.
func fileTypeFromMode(mode uint32) FileType {
	switch mode & unix.S_IFMT {
	case unix.S_IFREG:
		return FileTypeFile
	case unix.S_IFDIR:
		return FileTypeDirectory
	default:
		return FileTypeOther
	}
}

// posixIdentity encodes the device and inode numbers as an identity.
func posixIdentity(metadata *unix.Stat_t) []byte {
	identity := make([]byte, 16)
	binary.BigEndian.PutUint64(identity[:8], uint64(metadata.Dev))
	binary.BigEndian.PutUint64(identity[8:], uint64(metadata.Ino))
	return identity
}

// nameAttributes computes the attributes implied by a name. Names beginning
// with a dot are hidden.
func nameAttributes(entry Entry) Attributes {
	var attributes Attributes
	if entry.IsDriveRoot() {
		attributes |= AttributeDriveRoot
	} else if name := entry.Name(); strings.HasPrefix(name, ".") && name != "." && name != ".." {
		attributes |= AttributeHidden
	}
	return attributes
}

// fillFromStat populates every field that a stat call yields. The user
// permission triple mirrors the owner triple.
func fillFromStat(metadata *Metadata, entry Entry, stat *unix.Stat_t) {
	mode := uint32(stat.Mode)
	metadata.SetExists(true)
	metadata.SetType(fileTypeFromMode(mode))
	metadata.SetSize(uint64(stat.Size))
	metadata.SetTimes(statTimes(stat))
	metadata.SetAttributes(nameAttributes(entry))
	metadata.SetPermissions(PermissionsFromMode(os.FileMode(mode&0o777)), FieldPermissions)
	metadata.SetIdentity(posixIdentity(stat))
	metadata.SetOwnership(
		strconv.FormatUint(uint64(stat.Uid), 10),
		strconv.FormatUint(uint64(stat.Gid), 10),
	)
}

// Query implements Backend.Query. The link kind comes from lstat, while every
// other field describes the link target. A single stat call populates all
// fields.
func (b *posixBackend) Query(entry Entry, fields Fields) (*Metadata, error) {
	path := entry.Native()
	if path == "" {
		return nil, newKindError(ErrorKindInvalidPath, "query", path, "empty path")
	}
	metadata := &Metadata{}

	// Classify the path itself.
	var linkStat unix.Stat_t
	if err := lstatRetryingOnEINTR(path, &linkStat); err != nil {
		if IsKind(err, ErrorKindNotFound) {
			metadata.SetLinkKind(LinkKindNone)
			metadata.markNonexistent(fields)
			return metadata, nil
		}
		return nil, newError("lstat", path, err)
	}
	if uint32(linkStat.Mode)&unix.S_IFMT != unix.S_IFLNK {
		metadata.SetLinkKind(LinkKindNone)
		fillFromStat(metadata, entry, &linkStat)
		return metadata, nil
	}
	metadata.SetLinkKind(LinkKindSymbolicLink)

	// Avoid following the link if only its kind was requested.
	if fields&^FieldLinkType == 0 {
		return metadata, nil
	}

	// Describe the target.
	var targetStat unix.Stat_t
	if err := statRetryingOnEINTR(path, &targetStat); err != nil {
		if kind := KindOf(err); kind == ErrorKindNotFound || kind == ErrorKindLinkResolutionFailed {
			b.logger.Tracef("Dangling link at %s", path)
			metadata.markNonexistent(fields)
			return metadata, nil
		}
		return nil, newError("stat", path, err)
	}
	fillFromStat(metadata, entry, &targetStat)
	return metadata, nil
}

// QueryByEnumeration implements Backend.QueryByEnumeration. Directory entries
// only carry type information, so the result is limited to existence, type,
// and link kind. Links found this way are reported as existing since their
// targets cannot be examined.
func (b *posixBackend) QueryByEnumeration(entry Entry, fields Fields) (*Metadata, error) {
	name := entry.Name()
	if name == "" {
		return nil, newKindError(ErrorKindUnsupportedOperation, "enumerate", entry.Path(), "path has no parent")
	}
	parent := entry.Parent().Native()

	// Open the parent directory and defer its closure.
	directory, err := os.Open(parent)
	if err != nil {
		return nil, newError("open", parent, err)
	}
	defer must.Close(directory, b.logger)

	// Scan for the name.
	for {
		contents, err := directory.ReadDir(64)
		for _, content := range contents {
			if content.Name() != name {
				continue
			}
			metadata := &Metadata{}
			metadata.SetExists(true)
			mode := content.Type()
			switch {
			case mode&os.ModeSymlink != 0:
				metadata.SetLinkKind(LinkKindSymbolicLink)
				metadata.SetType(FileTypeUnknown)
			case mode.IsDir():
				metadata.SetLinkKind(LinkKindNone)
				metadata.SetType(FileTypeDirectory)
			case mode.IsRegular():
				metadata.SetLinkKind(LinkKindNone)
				metadata.SetType(FileTypeFile)
			default:
				metadata.SetLinkKind(LinkKindNone)
				metadata.SetType(FileTypeOther)
			}
			metadata.SetAttributes(nameAttributes(entry))
			return metadata, nil
		}
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, newError("readdir", parent, err)
		}
	}

	// The name wasn't found.
	metadata := &Metadata{}
	metadata.SetLinkKind(LinkKindNone)
	metadata.markNonexistent(fields)
	return metadata, nil
}

// ReadLink implements Backend.ReadLink. The buffer starts small and doubles
// until the target fits.
func (b *posixBackend) ReadLink(entry Entry) (string, error) {
	path := entry.Native()
	for size := 128; ; size *= 2 {
		buffer := make([]byte, size)
		count, err := readlinkRetryingOnEINTR(path, buffer)
		if err != nil {
			if err == unix.EINVAL {
				return "", newKindError(ErrorKindLinkResolutionFailed, "readlink", path, "not a symbolic link")
			} else if err == unix.ERANGE {
				continue
			}
			return "", newError("readlink", path, err)
		} else if count < size {
			return string(buffer[:count]), nil
		}
	}
}

// Identity implements Backend.Identity. Links are followed.
func (b *posixBackend) Identity(entry Entry) ([]byte, error) {
	path := entry.Native()
	var metadata unix.Stat_t
	if err := statRetryingOnEINTR(path, &metadata); err != nil {
		return nil, newError("stat", path, err)
	}
	return posixIdentity(&metadata), nil
}
