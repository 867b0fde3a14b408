package must

import (
	"golang.org/x/sys/windows"

	"github.com/mutagen-io/fsmeta/pkg/logging"
)

// CloseWindowsHandle closes a Windows handle and logs a warning on failure.
func CloseWindowsHandle(handle windows.Handle, logger *logging.Logger) {
	if err := windows.CloseHandle(handle); err != nil {
		logger.Warnf("Unable to close handle %d: %s", handle, err.Error())
	}
}

// FindClose closes a Windows find handle and logs a warning on failure.
func FindClose(handle windows.Handle, logger *logging.Logger) {
	if err := windows.FindClose(handle); err != nil {
		logger.Warnf("Unable to close find handle %d: %s", handle, err.Error())
	}
}

// LocalFree releases memory allocated by the system on the caller's behalf.
func LocalFree(handle windows.Handle, logger *logging.Logger) {
	if _, err := windows.LocalFree(handle); err != nil {
		logger.Warnf("Unable to free local memory: %s", err.Error())
	}
}
