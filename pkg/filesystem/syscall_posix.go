//go:build !windows

package filesystem

import (
	"errors"

	"golang.org/x/sys/unix"
)

// lstatRetryingOnEINTR is a wrapper around the lstat system call that retries
// on EINTR errors and returns on the first successful call or non-EINTR error.
func lstatRetryingOnEINTR(path string, metadata *unix.Stat_t) error {
	for {
		err := unix.Lstat(path, metadata)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return err
	}
}

// statRetryingOnEINTR is a wrapper around the stat system call that retries on
// EINTR errors and returns on the first successful call or non-EINTR error.
func statRetryingOnEINTR(path string, metadata *unix.Stat_t) error {
	for {
		err := unix.Stat(path, metadata)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return err
	}
}

// fstatRetryingOnEINTR is a wrapper around the fstat system call that retries
// on EINTR errors and returns on the first successful call or non-EINTR error.
func fstatRetryingOnEINTR(descriptor int, metadata *unix.Stat_t) error {
	for {
		err := unix.Fstat(descriptor, metadata)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return err
	}
}

// fstatatRetryingOnEINTR is a wrapper around the fstatat system call that
// retries on EINTR errors and returns on the first successful call or non-EINTR
// error.
func fstatatRetryingOnEINTR(directory int, path string, metadata *unix.Stat_t, flags int) error {
	for {
		err := unix.Fstatat(directory, path, metadata, flags)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return err
	}
}

// openRetryingOnEINTR is a wrapper around the open system call that retries on
// EINTR errors and returns on the first successful call or non-EINTR error.
func openRetryingOnEINTR(path string, flags int, mode uint32) (int, error) {
	for {
		result, err := unix.Open(path, flags, mode)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return result, err
	}
}

// readlinkRetryingOnEINTR is a wrapper around the readlink system call that
// retries on EINTR errors and returns on the first successful call or
// non-EINTR error.
func readlinkRetryingOnEINTR(path string, buffer []byte) (int, error) {
	for {
		result, err := unix.Readlink(path, buffer)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return result, err
	}
}

// chmodRetryingOnEINTR is a wrapper around the chmod system call that retries
// on EINTR errors and returns on the first successful call or non-EINTR error.
func chmodRetryingOnEINTR(path string, mode uint32) error {
	for {
		err := unix.Chmod(path, mode)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return err
	}
}
