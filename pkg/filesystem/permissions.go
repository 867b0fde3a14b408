package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Permissions is a set of permission bits covering four triples: owner,
// user, group, and other. The user triple describes the rights of the account
// running the process. On POSIX systems the user triple always mirrors the
// owner triple; only Windows ACL lookup distinguishes them.
type Permissions uint16

const (
	PermissionOwnerRead    Permissions = 0x4000
	PermissionOwnerWrite   Permissions = 0x2000
	PermissionOwnerExecute Permissions = 0x1000
	PermissionUserRead     Permissions = 0x0400
	PermissionUserWrite    Permissions = 0x0200
	PermissionUserExecute  Permissions = 0x0100
	PermissionGroupRead    Permissions = 0x0040
	PermissionGroupWrite   Permissions = 0x0020
	PermissionGroupExecute Permissions = 0x0010
	PermissionOtherRead    Permissions = 0x0004
	PermissionOtherWrite   Permissions = 0x0002
	PermissionOtherExecute Permissions = 0x0001

	permissionOwnerMask = PermissionOwnerRead | PermissionOwnerWrite | PermissionOwnerExecute
	permissionUserMask  = PermissionUserRead | PermissionUserWrite | PermissionUserExecute
	permissionGroupMask = PermissionGroupRead | PermissionGroupWrite | PermissionGroupExecute
	permissionOtherMask = PermissionOtherRead | PermissionOtherWrite | PermissionOtherExecute
)

// maskFromFields returns the permission bits covered by the permission fields
// in fields.
func maskFromFields(fields Fields) Permissions {
	var mask Permissions
	if fields&FieldOwnerPermissions != 0 {
		mask |= permissionOwnerMask
	}
	if fields&FieldUserPermissions != 0 {
		mask |= permissionUserMask
	}
	if fields&FieldGroupPermissions != 0 {
		mask |= permissionGroupMask
	}
	if fields&FieldOtherPermissions != 0 {
		mask |= permissionOtherMask
	}
	return mask
}

// triple expands a read/write/execute triple into permission bits using the
// read bit of the target triple as the base.
func triple(read, write, execute bool, readBit Permissions) Permissions {
	var result Permissions
	if read {
		result |= readBit
	}
	if write {
		result |= readBit >> 1
	}
	if execute {
		result |= readBit >> 2
	}
	return result
}

// PermissionsFromMode converts POSIX mode bits to permissions. The user triple
// mirrors the owner triple.
func PermissionsFromMode(mode os.FileMode) Permissions {
	owner := uint16(mode>>6) & 0o7
	group := uint16(mode>>3) & 0o7
	other := uint16(mode) & 0o7
	return Permissions(owner<<12 | owner<<8 | group<<4 | other)
}

// Mode converts the owner, group, and other triples to POSIX mode bits. The
// user triple is ignored.
func (p Permissions) Mode() os.FileMode {
	owner := (uint16(p) >> 12) & 0o7
	group := (uint16(p) >> 4) & 0o7
	other := uint16(p) & 0o7
	return os.FileMode(owner<<6 | group<<3 | other)
}

// String renders the permissions as four rwx triples in owner, user, group,
// other order, e.g. "rw-rw-r--r--".
func (p Permissions) String() string {
	var builder strings.Builder
	for _, base := range []Permissions{PermissionOwnerRead, PermissionUserRead, PermissionGroupRead, PermissionOtherRead} {
		for i, symbol := range "rwx" {
			if p&(base>>uint(i)) != 0 {
				builder.WriteRune(symbol)
			} else {
				builder.WriteByte('-')
			}
		}
	}
	return builder.String()
}

// executableExtensions are the file extensions treated as executable by the
// attribute-based permission heuristic.
var executableExtensions = map[string]bool{
	".exe": true,
	".com": true,
	".bat": true,
	".pif": true,
	".cmd": true,
}

// heuristicPermissions computes permissions without consulting access control
// lists. Every triple is readable, writable unless the read-only attribute is
// set, and executable for directories and for names with an executable
// extension. The user triple reflects the same read-only check that the C
// runtime's access function performs.
func heuristicPermissions(name string, directory bool, attributes Attributes) Permissions {
	writable := attributes&AttributeReadOnly == 0
	executable := directory || executableExtensions[strings.ToLower(filepath.Ext(name))]
	var result Permissions
	for _, base := range []Permissions{PermissionOwnerRead, PermissionUserRead, PermissionGroupRead, PermissionOtherRead} {
		result |= triple(true, writable, executable, base)
	}
	return result
}

// permissionLookup is the process-wide permission lookup switch.
var permissionLookup struct {
	sync.Mutex
	enabled bool
}

// SetPermissionLookupEnabled controls whether or not expensive access control
// list lookups are used to compute permissions and ownership on platforms that
// support them. It is disabled by default. Changes take effect on the next
// metadata query.
func SetPermissionLookupEnabled(enabled bool) {
	permissionLookup.Lock()
	permissionLookup.enabled = enabled
	permissionLookup.Unlock()
}

// PermissionLookupEnabled reports whether or not access control list lookups
// are enabled.
func PermissionLookupEnabled() bool {
	permissionLookup.Lock()
	defer permissionLookup.Unlock()
	return permissionLookup.enabled
}
