package filesystem

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Fields is a bitmask identifying metadata fields.
type Fields uint32

const (
	// FieldExists indicates whether or not the path resolves to an object.
	// Links are followed, so a dangling link does not exist.
	FieldExists Fields = 1 << iota
	// FieldType is the object type (file, directory, or other).
	FieldType
	// FieldLinkType is the link kind of the path itself (not followed).
	FieldLinkType
	// FieldSize is the object size in bytes.
	FieldSize
	// FieldCreationTime is the object creation time.
	FieldCreationTime
	// FieldModificationTime is the object modification time.
	FieldModificationTime
	// FieldAccessTime is the object access time.
	FieldAccessTime
	// FieldAttributes is the object attribute set.
	FieldAttributes
	// FieldOwnerPermissions is the owner permission triple.
	FieldOwnerPermissions
	// FieldGroupPermissions is the group permission triple.
	FieldGroupPermissions
	// FieldOtherPermissions is the other permission triple.
	FieldOtherPermissions
	// FieldUserPermissions is the permission triple of the account running
	// the process.
	FieldUserPermissions
	// FieldIdentity is the opaque object identity.
	FieldIdentity
	// FieldOwnership is the owner and group identifier pair.
	FieldOwnership

	// FieldTimes is the set of all time fields.
	FieldTimes = FieldCreationTime | FieldModificationTime | FieldAccessTime
	// FieldPermissions is the set of all permission triples.
	FieldPermissions = FieldOwnerPermissions | FieldGroupPermissions |
		FieldOtherPermissions | FieldUserPermissions
	// FieldStat is the set of fields that a single stat-style call yields.
	FieldStat = FieldExists | FieldType | FieldLinkType | FieldSize |
		FieldTimes | FieldAttributes
	// FieldAll is the set of all fields.
	FieldAll = FieldOwnership<<1 - 1
)

// fieldNames maps single fields to their names.
var fieldNames = []struct {
	field Fields
	name  string
}{
	{FieldExists, "exists"},
	{FieldType, "type"},
	{FieldLinkType, "link-type"},
	{FieldSize, "size"},
	{FieldCreationTime, "creation-time"},
	{FieldModificationTime, "modification-time"},
	{FieldAccessTime, "access-time"},
	{FieldAttributes, "attributes"},
	{FieldOwnerPermissions, "owner-permissions"},
	{FieldGroupPermissions, "group-permissions"},
	{FieldOtherPermissions, "other-permissions"},
	{FieldUserPermissions, "user-permissions"},
	{FieldIdentity, "identity"},
	{FieldOwnership, "ownership"},
}

// String provides a human-readable representation of a field set.
func (f Fields) String() string {
	var result string
	for _, entry := range fieldNames {
		if f&entry.field != 0 {
			if result != "" {
				result += "|"
			}
			result += entry.name
		}
	}
	if result == "" {
		return "none"
	}
	return result
}

// ParseFields parses a comma-separated list of field names. The names "all",
// "stat", "times", and "permissions" denote field groups.
func ParseFields(names string) (Fields, error) {
	var result Fields
	for _, name := range strings.Split(names, ",") {
		switch name = strings.TrimSpace(name); name {
		case "":
			continue
		case "all":
			result |= FieldAll
			continue
		case "stat":
			result |= FieldStat
			continue
		case "times":
			result |= FieldTimes
			continue
		case "permissions":
			result |= FieldPermissions
			continue
		}
		var found bool
		for _, entry := range fieldNames {
			if entry.name == name {
				result |= entry.field
				found = true
				break
			}
		}
		if !found {
			return 0, errors.Errorf("unknown field: %s", name)
		}
	}
	if result == 0 {
		return 0, errors.New("no fields specified")
	}
	return result, nil
}

// FileType is the type of a filesystem object.
type FileType uint8

const (
	// FileTypeUnknown indicates that the object does not exist or that its
	// type could not be determined.
	FileTypeUnknown FileType = iota
	// FileTypeFile indicates a regular file.
	FileTypeFile
	// FileTypeDirectory indicates a directory.
	FileTypeDirectory
	// FileTypeOther indicates a device, pipe, socket, or other special object.
	FileTypeOther
)

// String provides a human-readable representation of a file type.
func (t FileType) String() string {
	switch t {
	case FileTypeFile:
		return "file"
	case FileTypeDirectory:
		return "directory"
	case FileTypeOther:
		return "other"
	default:
		return "unknown"
	}
}

// LinkKind is the kind of link that a path refers to.
type LinkKind uint8

const (
	// LinkKindNone indicates that a path is not a link.
	LinkKindNone LinkKind = iota
	// LinkKindSymbolicLink indicates a symbolic link.
	LinkKindSymbolicLink
	// LinkKindJunction indicates an NTFS junction or mount point.
	LinkKindJunction
	// LinkKindShortcut indicates a Windows shell shortcut (.lnk) file.
	LinkKindShortcut
)

// String provides a human-readable representation of a link kind.
func (k LinkKind) String() string {
	switch k {
	case LinkKindNone:
		return "none"
	case LinkKindSymbolicLink:
		return "symlink"
	case LinkKindJunction:
		return "junction"
	case LinkKindShortcut:
		return "shortcut"
	default:
		return "unknown"
	}
}

// Attributes is a set of object attribute flags.
type Attributes uint16

const (
	// AttributeHidden indicates a hidden object.
	AttributeHidden Attributes = 1 << iota
	// AttributeSystem indicates a system object.
	AttributeSystem
	// AttributeReadOnly indicates a read-only object.
	AttributeReadOnly
	// AttributeReparsePoint indicates that the path carries reparse data.
	AttributeReparsePoint
	// AttributeShortcut indicates that the path is a shortcut file whose
	// target the remaining metadata describes.
	AttributeShortcut
	// AttributeDriveRoot indicates the root of a logical drive or volume.
	AttributeDriveRoot
)

// attributeNames maps single attributes to their names.
var attributeNames = []struct {
	attribute Attributes
	name      string
}{
	{AttributeHidden, "hidden"},
	{AttributeSystem, "system"},
	{AttributeReadOnly, "read-only"},
	{AttributeReparsePoint, "reparse-point"},
	{AttributeShortcut, "shortcut"},
	{AttributeDriveRoot, "drive-root"},
}

// Names returns the names of the attributes in the set.
func (a Attributes) Names() []string {
	var names []string
	for _, entry := range attributeNames {
		if a&entry.attribute != 0 {
			names = append(names, entry.name)
		}
	}
	return names
}

// DriveInfo describes a drive root discovered by root enumeration. Mapped
// network drives carry their remote target and connection state.
type DriveInfo struct {
	// Letter is the drive letter, or zero on platforms without drive letters.
	Letter byte
	// Mapped indicates a mapped network drive.
	Mapped bool
	// RemoteName is the UNC target of a mapped network drive.
	RemoteName string
	// Provider is the network provider name of a mapped network drive.
	Provider string
	// SMB indicates that the mapped drive is served over SMB.
	SMB bool
	// Connected indicates whether or not a mapped network drive is currently
	// connected. It is always true for local drives.
	Connected bool
}

// Metadata is a partially populated set of metadata fields for a single path.
// Fields are populated incrementally and tracked with a known-field mask.
// Reading a field that is not known is a programming error and panics.
// Metadata values are independently owned and not safe for concurrent
// mutation.
type Metadata struct {
	known            Fields
	exists           bool
	fileType         FileType
	linkKind         LinkKind
	size             uint64
	creationTime     time.Time
	modificationTime time.Time
	accessTime       time.Time
	attributes       Attributes
	permissions      Permissions
	identity         []byte
	ownerID          string
	groupID          string
	drive            *DriveInfo
}

// Known returns the set of populated fields.
func (m *Metadata) Known() Fields {
	return m.known
}

// Has reports whether or not all of the specified fields are populated.
func (m *Metadata) Has(fields Fields) bool {
	return m.known&fields == fields
}

// require panics if the specified field is not populated.
func (m *Metadata) require(field Fields) {
	if m.known&field == 0 {
		panic(fmt.Sprintf("metadata field not populated: %s", field))
	}
}

// Exists returns whether or not the path resolves to an existing object.
func (m *Metadata) Exists() bool {
	m.require(FieldExists)
	return m.exists
}

// Type returns the object type.
func (m *Metadata) Type() FileType {
	m.require(FieldType)
	return m.fileType
}

// IsDirectory is a shorthand for checking whether Type is
// FileTypeDirectory.
func (m *Metadata) IsDirectory() bool {
	return m.Type() == FileTypeDirectory
}

// LinkKind returns the link kind of the path itself.
func (m *Metadata) LinkKind() LinkKind {
	m.require(FieldLinkType)
	return m.linkKind
}

// Size returns the object size in bytes. It may be zero for directories.
func (m *Metadata) Size() uint64 {
	m.require(FieldSize)
	return m.size
}

// CreationTime returns the creation time. On platforms without a birth time,
// it is the inode change time. A zero time indicates that the platform did
// not report a value.
func (m *Metadata) CreationTime() time.Time {
	m.require(FieldCreationTime)
	return m.creationTime
}

// ModificationTime returns the modification time.
func (m *Metadata) ModificationTime() time.Time {
	m.require(FieldModificationTime)
	return m.modificationTime
}

// AccessTime returns the access time.
func (m *Metadata) AccessTime() time.Time {
	m.require(FieldAccessTime)
	return m.accessTime
}

// Attributes returns the attribute set.
func (m *Metadata) Attributes() Attributes {
	m.require(FieldAttributes)
	return m.attributes
}

// Permissions returns the permission bits. At least one permission triple must
// be known. Bits belonging to unknown triples are zero.
func (m *Metadata) Permissions() Permissions {
	if m.known&FieldPermissions == 0 {
		panic("metadata field not populated: permissions")
	}
	return m.permissions
}

// Identity returns the opaque object identity. It is empty if the object
// could not be opened.
func (m *Metadata) Identity() []byte {
	m.require(FieldIdentity)
	return m.identity
}

// OwnerID returns the owner identifier: a decimal user ID on POSIX systems
// and a SID string on Windows. It may be empty if ownership could not be
// determined.
func (m *Metadata) OwnerID() string {
	m.require(FieldOwnership)
	return m.ownerID
}

// GroupID returns the group identifier in the same format as OwnerID.
func (m *Metadata) GroupID() string {
	m.require(FieldOwnership)
	return m.groupID
}

// Drive returns drive root information, if the metadata was produced by root
// enumeration. Drive information is computed on demand and never refreshed.
func (m *Metadata) Drive() (*DriveInfo, bool) {
	return m.drive, m.drive != nil
}

// SetExists sets the existence flag and marks it known.
func (m *Metadata) SetExists(exists bool) {
	m.exists = exists
	m.known |= FieldExists
}

// SetType sets the object type and marks it known.
func (m *Metadata) SetType(fileType FileType) {
	m.fileType = fileType
	m.known |= FieldType
}

// SetLinkKind sets the link kind and marks it known.
func (m *Metadata) SetLinkKind(kind LinkKind) {
	m.linkKind = kind
	m.known |= FieldLinkType
}

// SetSize sets the size and marks it known.
func (m *Metadata) SetSize(size uint64) {
	m.size = size
	m.known |= FieldSize
}

// SetTimes sets the creation, modification, and access times and marks them
// known.
func (m *Metadata) SetTimes(creation, modification, access time.Time) {
	m.creationTime = creation
	m.modificationTime = modification
	m.accessTime = access
	m.known |= FieldTimes
}

// SetAttributes sets the attribute set and marks it known.
func (m *Metadata) SetAttributes(attributes Attributes) {
	m.attributes = attributes
	m.known |= FieldAttributes
}

// SetPermissions sets the permission bits and marks the triples identified by
// fields (a subset of FieldPermissions) as known.
func (m *Metadata) SetPermissions(permissions Permissions, fields Fields) {
	mask := maskFromFields(fields)
	m.permissions = (m.permissions &^ mask) | (permissions & mask)
	m.known |= fields & FieldPermissions
}

// SetIdentity sets the identity and marks it known.
func (m *Metadata) SetIdentity(identity []byte) {
	m.identity = identity
	m.known |= FieldIdentity
}

// SetOwnership sets the owner and group identifiers and marks them known.
func (m *Metadata) SetOwnership(owner, group string) {
	m.ownerID = owner
	m.groupID = group
	m.known |= FieldOwnership
}

// setDrive attaches drive information.
func (m *Metadata) setDrive(drive *DriveInfo) {
	m.drive = drive
}

// markNonexistent records that the path does not exist. Every requested field
// is marked known with its zero value, so that repeated queries for a missing
// path do not reach the backend again.
func (m *Metadata) markNonexistent(fields Fields) {
	linkKind, linkKnown := m.linkKind, m.known&FieldLinkType != 0
	*m = Metadata{known: fields | FieldExists | FieldType}
	if linkKnown {
		m.SetLinkKind(linkKind)
	}
}

// markAllKnown marks every field as known, leaving unpopulated fields at their
// zero values. It is used for objects that must not be queried further, such
// as disconnected network drives.
func (m *Metadata) markAllKnown() {
	m.known = FieldAll
}

// Merge copies every field known to other into m, overwriting any existing
// values for those fields.
func (m *Metadata) Merge(other *Metadata) {
	known := other.known
	if known&FieldExists != 0 {
		m.exists = other.exists
	}
	if known&FieldType != 0 {
		m.fileType = other.fileType
	}
	if known&FieldLinkType != 0 {
		m.linkKind = other.linkKind
	}
	if known&FieldSize != 0 {
		m.size = other.size
	}
	if known&FieldCreationTime != 0 {
		m.creationTime = other.creationTime
	}
	if known&FieldModificationTime != 0 {
		m.modificationTime = other.modificationTime
	}
	if known&FieldAccessTime != 0 {
		m.accessTime = other.accessTime
	}
	if known&FieldAttributes != 0 {
		m.attributes = other.attributes
	}
	if known&FieldPermissions != 0 {
		mask := maskFromFields(known)
		m.permissions = (m.permissions &^ mask) | (other.permissions & mask)
	}
	if known&FieldIdentity != 0 {
		m.identity = other.identity
	}
	if known&FieldOwnership != 0 {
		m.ownerID = other.ownerID
		m.groupID = other.groupID
	}
	if other.drive != nil {
		m.drive = other.drive
	}
	m.known |= known
}
