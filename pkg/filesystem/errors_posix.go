//go:build !windows

package filesystem

import (
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// classifyNative maps errno values to logical error kinds.
func classifyNative(err error) (ErrorKind, uint32, bool) {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return ErrorKindOther, 0, false
	}
	switch errno {
	case unix.ENOENT, unix.ENOTDIR:
		return ErrorKindNotFound, uint32(errno), true
	case unix.EACCES, unix.EPERM:
		return ErrorKindAccessDenied, uint32(errno), true
	case unix.EBUSY, unix.ETXTBSY:
		return ErrorKindSharingViolation, uint32(errno), true
	case unix.ENAMETOOLONG, unix.EINVAL:
		return ErrorKindInvalidPath, uint32(errno), true
	case unix.ELOOP:
		return ErrorKindLinkResolutionFailed, uint32(errno), true
	case unix.ENOTSUP, unix.ENOSYS:
		return ErrorKindUnsupportedOperation, uint32(errno), true
	}
	return ErrorKindOther, uint32(errno), true
}
