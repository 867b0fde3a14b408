//go:build darwin || freebsd

package filesystem

import (
	"time"

	"golang.org/x/sys/unix"
)

// statTimes extracts creation, modification, and access times from a Stat_t
// structure, using the birth time as the creation time.
func statTimes(metadata *unix.Stat_t) (time.Time, time.Time, time.Time) {
	return time.Unix(metadata.Btim.Unix()),
		time.Unix(metadata.Mtim.Unix()),
		time.Unix(metadata.Atim.Unix())
}
