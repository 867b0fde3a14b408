// Package syscall provides Windows structure layouts and constants needed by
// the filesystem package that golang.org/x/sys/windows does not define.
package syscall
