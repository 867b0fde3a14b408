//go:build !windows && !darwin && !freebsd && !netbsd

package filesystem

import (
	"time"

	"golang.org/x/sys/unix"
)

// statTimes extracts creation, modification, and access times from a Stat_t
// structure. These platforms do not expose a birth time through stat, so the
// inode change time stands in for creation time.
func statTimes(metadata *unix.Stat_t) (time.Time, time.Time, time.Time) {
	return time.Unix(metadata.Ctim.Unix()),
		time.Unix(metadata.Mtim.Unix()),
		time.Unix(metadata.Atim.Unix())
}
