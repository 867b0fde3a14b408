package filesystem

import (
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// classifyNative maps Win32 error codes to logical error kinds.
func classifyNative(err error) (ErrorKind, uint32, bool) {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return ErrorKindOther, 0, false
	}
	switch errno {
	case windows.ERROR_FILE_NOT_FOUND,
		windows.ERROR_PATH_NOT_FOUND,
		windows.ERROR_INVALID_DRIVE,
		windows.ERROR_BAD_NETPATH,
		windows.ERROR_BAD_NET_NAME,
		windows.ERROR_NOT_READY:
		return ErrorKindNotFound, uint32(errno), true
	case windows.ERROR_ACCESS_DENIED:
		return ErrorKindAccessDenied, uint32(errno), true
	case windows.ERROR_SHARING_VIOLATION, windows.ERROR_LOCK_VIOLATION:
		return ErrorKindSharingViolation, uint32(errno), true
	case windows.ERROR_INVALID_NAME,
		windows.ERROR_BAD_PATHNAME,
		windows.ERROR_FILENAME_EXCED_RANGE,
		windows.ERROR_DIRECTORY:
		return ErrorKindInvalidPath, uint32(errno), true
	case windows.ERROR_CANT_RESOLVE_FILENAME, windows.ERROR_NOT_A_REPARSE_POINT:
		return ErrorKindLinkResolutionFailed, uint32(errno), true
	case windows.ERROR_NOT_SUPPORTED, windows.ERROR_INVALID_FUNCTION, windows.ERROR_PROC_NOT_FOUND:
		return ErrorKindUnsupportedOperation, uint32(errno), true
	}
	return ErrorKindOther, uint32(errno), true
}
