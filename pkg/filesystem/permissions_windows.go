package filesystem

import (
	"unsafe"

	"github.com/pkg/errors"

	"golang.org/x/sys/windows"

	"github.com/hectane/go-acl"
	aclapi "github.com/hectane/go-acl/api"

	fssyscall "github.com/mutagen-io/fsmeta/pkg/filesystem/internal/syscall"
	"github.com/mutagen-io/fsmeta/pkg/logging"
	"github.com/mutagen-io/fsmeta/pkg/must"
)

const (
	// accessRead is the access mask bit that grants read access.
	accessRead = 0x00000001
	// accessWrite is the access mask bit that grants write access.
	accessWrite = 0x00000002
	// accessExecute is the access mask bit that grants execute access.
	accessExecute = 0x00000020
)

// securityInfo is the security information read from an object.
type securityInfo struct {
	// owner is the owner SID.
	owner *windows.SID
	// group is the primary group SID.
	group *windows.SID
	// dacl is the discretionary access control list.
	dacl windows.Handle
	// descriptor is the security descriptor that owns the other fields.
	descriptor windows.Handle
}

// readSecurityInfo reads the owner, group, and access control list of the
// object at path. The caller must release the result.
func readSecurityInfo(path string) (*securityInfo, error) {
	result := &securityInfo{}
	if err := aclapi.GetNamedSecurityInfo(
		path,
		aclapi.SE_FILE_OBJECT,
		aclapi.OWNER_SECURITY_INFORMATION|aclapi.GROUP_SECURITY_INFORMATION|aclapi.DACL_SECURITY_INFORMATION,
		&result.owner,
		&result.group,
		&result.dacl,
		nil,
		&result.descriptor,
	); err != nil {
		return nil, newError("get security info", path, err)
	}
	return result, nil
}

// release frees the security descriptor.
func (s *securityInfo) release(logger *logging.Logger) {
	if s.descriptor != 0 {
		must.LocalFree(s.descriptor, logger)
	}
}

// effectiveRights computes the access mask that the access control list
// grants to a trustee. If the computation fails, every right is assumed.
func (s *securityInfo) effectiveRights(caps *capabilities, sid *windows.SID) uint32 {
	if sid == nil {
		return 0
	}
	trustee := aclapi.Trustee{
		MultipleTrusteeOperation: fssyscall.NO_MULTIPLE_TRUSTEE,
		TrusteeForm:              fssyscall.TRUSTEE_IS_SID,
		TrusteeType:              fssyscall.TRUSTEE_IS_UNKNOWN,
		Name:                     (*uint16)(unsafe.Pointer(sid)),
	}
	var mask uint32
	status, _, _ := caps.getEffectiveRightsFromACL.Call(
		uintptr(s.dacl),
		uintptr(unsafe.Pointer(&trustee)),
		uintptr(unsafe.Pointer(&mask)),
	)
	if status != uintptr(windows.NO_ERROR) {
		return 0xFFFFFFFF
	}
	return mask
}

// tripleFromRights converts an access mask to a permission triple.
func tripleFromRights(mask uint32, readOnly bool, readBit Permissions) Permissions {
	return triple(
		mask&accessRead != 0,
		mask&accessWrite != 0 && !readOnly,
		mask&accessExecute != 0,
		readBit,
	)
}

// aclPermissions computes permissions from the access control list of the
// object at path. The read-only attribute revokes write access from every
// triple.
func aclPermissions(caps *capabilities, path string, attributes Attributes, logger *logging.Logger) (Permissions, *securityInfo, error) {
	security, err := readSecurityInfo(path)
	if err != nil {
		return 0, nil, err
	}
	readOnly := attributes&AttributeReadOnly != 0
	permissions := tripleFromRights(security.effectiveRights(caps, caps.currentUserSID), readOnly, PermissionUserRead) |
		tripleFromRights(security.effectiveRights(caps, security.owner), readOnly, PermissionOwnerRead) |
		tripleFromRights(security.effectiveRights(caps, security.group), readOnly, PermissionGroupRead) |
		tripleFromRights(security.effectiveRights(caps, caps.worldSID), readOnly, PermissionOtherRead)
	return permissions, security, nil
}

// sidString converts a SID to its string form, returning an empty string for
// a nil SID.
func sidString(sid *windows.SID) string {
	if sid == nil {
		return ""
	}
	return sid.String()
}

// accountName resolves a SID string to an unqualified account name.
func accountName(sidValue string) (string, error) {
	sid, err := windows.StringToSid(sidValue)
	if err != nil {
		return "", errors.Wrap(err, "unable to parse SID")
	}
	account, _, _, err := sid.LookupAccount("")
	if err != nil {
		return "", errors.Wrap(err, "unable to look up account")
	}
	return account, nil
}

// setPermissions applies permissions to the object at path. With permission
// lookup enabled the owner, group, and other triples are written to the
// access control list. Otherwise only the read-only attribute is toggled,
// based on the owner write bit.
func setPermissions(path string, permissions Permissions) error {
	if PermissionLookupEnabled() {
		if err := acl.Chmod(path, permissions.Mode()); err != nil {
			return newError("chmod", path, err)
		}
		return nil
	}

	path16, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return newKindError(ErrorKindInvalidPath, "chmod", path, "invalid path")
	}
	attributes, err := windows.GetFileAttributes(path16)
	if err != nil {
		return newError("chmod", path, err)
	}
	updated := attributes &^ windows.FILE_ATTRIBUTE_READONLY
	if permissions&PermissionOwnerWrite == 0 {
		updated |= windows.FILE_ATTRIBUTE_READONLY
	}
	if updated != attributes {
		if err := windows.SetFileAttributes(path16, updated); err != nil {
			return newError("chmod", path, err)
		}
	}
	return nil
}

