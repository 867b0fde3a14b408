package filesystem

import (
	"encoding/binary"
	"os"
	"strings"
	"time"
	"unsafe"

	"github.com/Microsoft/go-winio"
	"golang.org/x/sys/windows"

	"github.com/mutagen-io/fsmeta/pkg/filesystem/internal/longpath"
	fssyscall "github.com/mutagen-io/fsmeta/pkg/filesystem/internal/syscall"
	"github.com/mutagen-io/fsmeta/pkg/filesystem/reparse"
	"github.com/mutagen-io/fsmeta/pkg/logging"
	"github.com/mutagen-io/fsmeta/pkg/must"
)

// windowsBackend is the Windows Backend implementation.
type windowsBackend struct {
	// logger is the backend logger.
	logger *logging.Logger
	// caps is the process capability table.
	caps *capabilities
}

// NewNativeBackend creates the backend for the current platform.
func NewNativeBackend(logger *logging.Logger) Backend {
	return &windowsBackend{
		logger: logger,
		caps:   loadCapabilities(logger),
	}
}

// nativeStat is the subset of native attribute data shared by the various
// Windows query calls.
type nativeStat struct {
	// attributes are the native file attributes.
	attributes uint32
	// size is the file size.
	size uint64
	// creation is the creation time.
	creation windows.Filetime
	// access is the last access time.
	access windows.Filetime
	// write is the last write time.
	write windows.Filetime
}

// statFromAttributeData converts GetFileAttributesEx results.
func statFromAttributeData(data *windows.Win32FileAttributeData) *nativeStat {
	return &nativeStat{
		attributes: data.FileAttributes,
		size:       uint64(data.FileSizeHigh)<<32 | uint64(data.FileSizeLow),
		creation:   data.CreationTime,
		access:     data.LastAccessTime,
		write:      data.LastWriteTime,
	}
}

// statFromFindData converts FindFirstFile results.
func statFromFindData(data *windows.Win32finddata) *nativeStat {
	return &nativeStat{
		attributes: data.FileAttributes,
		size:       uint64(data.FileSizeHigh)<<32 | uint64(data.FileSizeLow),
		creation:   data.CreationTime,
		access:     data.LastAccessTime,
		write:      data.LastWriteTime,
	}
}

// statFromHandleInformation converts GetFileInformationByHandle results.
func statFromHandleInformation(data *windows.ByHandleFileInformation) *nativeStat {
	return &nativeStat{
		attributes: data.FileAttributes,
		size:       uint64(data.FileSizeHigh)<<32 | uint64(data.FileSizeLow),
		creation:   data.CreationTime,
		access:     data.LastAccessTime,
		write:      data.LastWriteTime,
	}
}

// filetimeToTime converts a native timestamp. A zero timestamp (reported by
// some filesystems for unsupported times) converts to the zero time.
func filetimeToTime(value windows.Filetime) time.Time {
	if value.HighDateTime == 0 && value.LowDateTime == 0 {
		return time.Time{}
	}
	return time.Unix(0, value.Nanoseconds())
}

// fileTypeFromAttributes converts native attributes to a file type.
func fileTypeFromAttributes(attributes uint32) FileType {
	switch {
	case attributes&windows.FILE_ATTRIBUTE_DIRECTORY != 0:
		return FileTypeDirectory
	case attributes&fssyscall.FILE_ATTRIBUTE_DEVICE != 0:
		return FileTypeOther
	default:
		return FileTypeFile
	}
}

// attributesFromNative converts native attributes to an attribute set. Drive
// roots are never reported as hidden.
func attributesFromNative(native uint32, entry Entry) Attributes {
	var attributes Attributes
	if native&windows.FILE_ATTRIBUTE_HIDDEN != 0 {
		attributes |= AttributeHidden
	}
	if native&windows.FILE_ATTRIBUTE_SYSTEM != 0 {
		attributes |= AttributeSystem
	}
	if native&windows.FILE_ATTRIBUTE_READONLY != 0 {
		attributes |= AttributeReadOnly
	}
	if native&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0 {
		attributes |= AttributeReparsePoint
	}
	if entry.IsDriveRoot() {
		attributes |= AttributeDriveRoot
		attributes &^= AttributeHidden
	}
	return attributes
}

// linkKindFromTag converts a reparse tag to a link kind. Reparse points of
// other kinds (such as deduplication or cloud placeholders) are treated as
// ordinary objects.
func linkKindFromTag(tag uint32) LinkKind {
	switch tag {
	case reparse.TagSymlink:
		return LinkKindSymbolicLink
	case reparse.TagMountPoint:
		return LinkKindJunction
	default:
		return LinkKindNone
	}
}

// findData performs a single-object FindFirstFile query. Trailing separators
// are removed since FindFirstFile rejects them.
func (b *windowsBackend) findData(path string) (*windows.Win32finddata, error) {
	path16, err := windows.UTF16PtrFromString(strings.TrimRight(path, `\`))
	if err != nil {
		return nil, err
	}
	var data windows.Win32finddata
	handle, err := windows.FindFirstFile(path16, &data)
	if err != nil {
		return nil, err
	}
	must.FindClose(handle, b.logger)
	return &data, nil
}

// openHandle opens a handle suitable for attribute queries. If follow is
// false, reparse points are opened rather than traversed.
func openHandle(path string, access uint32, follow bool) (windows.Handle, error) {
	path16, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return windows.InvalidHandle, err
	}
	flags := uint32(windows.FILE_FLAG_BACKUP_SEMANTICS)
	if !follow {
		flags |= windows.FILE_FLAG_OPEN_REPARSE_POINT
	}
	return windows.CreateFile(
		path16,
		access,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		flags,
		0,
	)
}

// handleStat queries attribute data through an open handle.
func handleStat(handle windows.Handle) (*nativeStat, error) {
	var information windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(handle, &information); err != nil {
		return nil, err
	}
	return statFromHandleInformation(&information), nil
}

// fileIdentity computes the identity of an open file. The encoding is chosen
// once per process by the capability table: FILE_ID_INFO yields the 64-bit
// volume serial followed by the 128-bit file identifier, and the legacy form
// yields the 32-bit volume serial followed by the 64-bit file index.
func (b *windowsBackend) fileIdentity(file *os.File) ([]byte, error) {
	if b.caps.fileIDInfo {
		information, err := winio.GetFileID(file)
		if err != nil {
			return nil, err
		}
		identity := make([]byte, 24)
		binary.BigEndian.PutUint64(identity[:8], information.VolumeSerialNumber)
		copy(identity[8:], information.FileID[:])
		return identity, nil
	}
	var information windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(windows.Handle(file.Fd()), &information); err != nil {
		return nil, err
	}
	identity := make([]byte, 12)
	binary.BigEndian.PutUint32(identity[:4], information.VolumeSerialNumber)
	binary.BigEndian.PutUint32(identity[4:8], information.FileIndexHigh)
	binary.BigEndian.PutUint32(identity[8:], information.FileIndexLow)
	return identity, nil
}

// driveUNCFallback handles paths that GetFileAttributesEx cannot query
// directly: drive roots of removable or unready media, and UNC server or share
// roots. Drive roots are validated against the logical drive mask and UNC
// roots against the server's share list.
func (b *windowsBackend) driveUNCFallback(entry Entry) (*nativeStat, bool) {
	if entry.IsDriveRoot() {
		letter := upperDriveLetter(longpath.Strip(entry.Path()))[0]
		mask, err := windows.GetLogicalDrives()
		if err != nil || mask&(1<<(letter-'A')) == 0 {
			return nil, false
		}
		return &nativeStat{attributes: windows.FILE_ATTRIBUTE_DIRECTORY | windows.FILE_ATTRIBUTE_SYSTEM}, true
	}

	server, share, rest, ok := splitUNC(entry.Path())
	if !ok || strings.Trim(rest, separators) != "" {
		return nil, false
	}
	shares, err := listShares(b.caps, `\\`+server)
	if err != nil {
		b.logger.Debugf("Unable to list shares on %s: %v", server, err)
		return nil, false
	}
	directory := &nativeStat{attributes: windows.FILE_ATTRIBUTE_DIRECTORY}
	if share == "" {
		return directory, true
	}
	for _, candidate := range shares {
		if strings.EqualFold(candidate, share) {
			return directory, true
		}
	}
	return nil, false
}

// fill populates metadata from native attribute data, computing permissions,
// identity, and ownership if requested.
func (b *windowsBackend) fill(metadata *Metadata, entry Entry, stat *nativeStat, fields Fields) {
	path := entry.Native()
	directory := stat.attributes&windows.FILE_ATTRIBUTE_DIRECTORY != 0
	attributes := attributesFromNative(stat.attributes, entry)

	// Set the fields that every query yields.
	metadata.SetExists(true)
	metadata.SetType(fileTypeFromAttributes(stat.attributes))
	if directory {
		metadata.SetSize(0)
	} else {
		metadata.SetSize(stat.size)
	}
	metadata.SetTimes(filetimeToTime(stat.creation), filetimeToTime(stat.write), filetimeToTime(stat.access))
	metadata.SetAttributes(attributes)

	// Compute permissions and ownership. Access control lists are only
	// consulted when lookup is enabled, since the queries can block on
	// network paths.
	if fields&(FieldPermissions|FieldOwnership) != 0 {
		var computed bool
		if PermissionLookupEnabled() && b.caps.aclLookup() {
			permissions, security, err := aclPermissions(b.caps, path, attributes, b.logger)
			if err != nil {
				b.logger.Debugf("Falling back to attribute permissions for %s: %v", path, err)
			} else {
				metadata.SetPermissions(permissions, FieldPermissions)
				metadata.SetOwnership(sidString(security.owner), sidString(security.group))
				security.release(b.logger)
				computed = true
			}
		}
		if !computed {
			metadata.SetPermissions(heuristicPermissions(entry.Name(), directory, attributes), FieldPermissions)
			metadata.SetOwnership("", "")
		}
	}

	// Compute identity. Failures yield an empty identity.
	if fields&FieldIdentity != 0 {
		identity, err := b.Identity(entry)
		if err != nil {
			b.logger.Debugf("Unable to compute identity for %s: %v", path, err)
		}
		metadata.SetIdentity(identity)
	}
}

// Query implements Backend.Query. The link kind describes the path itself,
// while every other field describes the link target.
func (b *windowsBackend) Query(entry Entry, fields Fields) (*Metadata, error) {
	path := entry.Native()
	if path == "" {
		return nil, newKindError(ErrorKindInvalidPath, "query", path, "empty path")
	}
	path16, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, newKindError(ErrorKindInvalidPath, "query", path, "path contains NUL")
	}
	metadata := &Metadata{}

	// Perform the attribute query, falling back to drive and UNC handling.
	var data windows.Win32FileAttributeData
	if err := windows.GetFileAttributesEx(path16, windows.GetFileExInfoStandard, (*byte)(unsafe.Pointer(&data))); err != nil {
		if stat, ok := b.driveUNCFallback(entry); ok {
			metadata.SetLinkKind(LinkKindNone)
			b.fill(metadata, entry, stat, fields)
			return metadata, nil
		} else if IsKind(err, ErrorKindNotFound) {
			metadata.SetLinkKind(LinkKindNone)
			metadata.markNonexistent(fields)
			return metadata, nil
		}
		return nil, newError("get attributes", path, err)
	}
	stat := statFromAttributeData(&data)

	// Classify reparse points. The tag is only available through directory
	// enumeration, which can't handle drive roots.
	kind := LinkKindNone
	if stat.attributes&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0 && !entry.IsDriveRoot() {
		if find, err := b.findData(path); err != nil {
			b.logger.Debugf("Unable to read reparse tag for %s: %v", path, err)
		} else {
			kind = linkKindFromTag(find.Reserved0)
		}
	}
	metadata.SetLinkKind(kind)

	// Describe the link target if necessary.
	if kind != LinkKindNone {
		if fields&^FieldLinkType == 0 {
			return metadata, nil
		}
		handle, err := openHandle(path, fssyscall.FILE_READ_ATTRIBUTES, true)
		if err != nil {
			if kind := KindOf(err); kind == ErrorKindNotFound || kind == ErrorKindLinkResolutionFailed {
				b.logger.Tracef("Dangling link at %s", path)
				metadata.markNonexistent(fields)
				return metadata, nil
			}
			return nil, newError("open", path, err)
		}
		target, err := handleStat(handle)
		must.CloseWindowsHandle(handle, b.logger)
		if err != nil {
			return nil, newError("query handle", path, err)
		}
		target.attributes |= windows.FILE_ATTRIBUTE_REPARSE_POINT
		stat = target
	}

	// Populate the metadata.
	b.fill(metadata, entry, stat, fields)
	return metadata, nil
}

// QueryByEnumeration implements Backend.QueryByEnumeration. Directory
// enumeration succeeds for objects that are locked or whose attributes can't
// be read directly. Links are reported with their own attributes since their
// targets can't be examined. Permissions, ownership, and identity are computed
// as for direct queries, with identity left empty if the object can't be
// opened.
func (b *windowsBackend) QueryByEnumeration(entry Entry, fields Fields) (*Metadata, error) {
	path := entry.Native()
	metadata := &Metadata{}
	data, err := b.findData(path)
	if err != nil {
		if IsKind(err, ErrorKindNotFound) {
			metadata.SetLinkKind(LinkKindNone)
			metadata.markNonexistent(fields)
			return metadata, nil
		}
		return nil, newError("find", path, err)
	}
	stat := statFromFindData(data)
	kind := LinkKindNone
	if stat.attributes&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0 {
		kind = linkKindFromTag(data.Reserved0)
	}
	metadata.SetLinkKind(kind)
	b.fill(metadata, entry, stat, fields)
	return metadata, nil
}

// volumeMountPath maps a volume GUID path to the first path at which the
// volume is mounted.
func (b *windowsBackend) volumeMountPath(volume string) (string, bool) {
	if b.caps.getVolumePathNamesForVolumeName == nil {
		return "", false
	}
	volume16, err := windows.UTF16PtrFromString(volume)
	if err != nil {
		return "", false
	}
	buffer := make([]uint16, windows.MAX_PATH)
	for {
		var length uint32
		status, _, errno := b.caps.getVolumePathNamesForVolumeName.Call(
			uintptr(unsafe.Pointer(volume16)),
			uintptr(unsafe.Pointer(&buffer[0])),
			uintptr(len(buffer)),
			uintptr(unsafe.Pointer(&length)),
		)
		if status != 0 {
			mounted := windows.UTF16ToString(buffer)
			return mounted, mounted != ""
		} else if errno == windows.ERROR_MORE_DATA && int(length) > len(buffer) {
			buffer = make([]uint16, length)
			continue
		}
		b.logger.Debugf("Unable to map volume %s: %v", volume, errno)
		return "", false
	}
}

// ReadLink implements Backend.ReadLink by decoding the reparse buffer of a
// symbolic link or junction. Mount point targets naming a volume by GUID are
// translated to a drive path where possible.
func (b *windowsBackend) ReadLink(entry Entry) (string, error) {
	path := entry.Native()

	// Open the reparse point and defer its closure.
	handle, err := openHandle(path, fssyscall.FILE_READ_EA, false)
	if err != nil {
		return "", newError("open", path, err)
	}
	defer must.CloseWindowsHandle(handle, b.logger)

	// Read and decode the reparse data.
	buffer := make([]byte, reparse.MaximumSize)
	var returned uint32
	if err := windows.DeviceIoControl(
		handle,
		windows.FSCTL_GET_REPARSE_POINT,
		nil,
		0,
		&buffer[0],
		uint32(len(buffer)),
		&returned,
		nil,
	); err != nil {
		return "", newError("read reparse point", path, err)
	}
	data, err := reparse.Parse(buffer[:returned])
	if err != nil {
		return "", &Error{Kind: ErrorKindLinkResolutionFailed, Op: "decode reparse point", Path: path, Err: err}
	}

	// Compute the target.
	target := data.Target()
	if !data.Relative {
		if volume, rest, ok := reparse.SplitVolumeGUID(target); ok {
			if mounted, ok := b.volumeMountPath(volume); ok {
				target = mounted + rest
			}
		}
	}
	return target, nil
}

// Identity implements Backend.Identity. Links are followed.
func (b *windowsBackend) Identity(entry Entry) ([]byte, error) {
	path := entry.Native()
	handle, err := openHandle(path, fssyscall.FILE_READ_ATTRIBUTES, true)
	if err != nil {
		return nil, newError("open", path, err)
	}
	file := os.NewFile(uintptr(handle), path)
	defer must.Close(file, b.logger)
	identity, err := b.fileIdentity(file)
	if err != nil {
		return nil, newError("query identity", path, err)
	}
	return identity, nil
}
