package filesystem

import (
	"time"

	"golang.org/x/sys/unix"
)

// statTimes extracts creation, modification, and access times from a Stat_t
// structure, using the birth time as the creation time.
func statTimes(metadata *unix.Stat_t) (time.Time, time.Time, time.Time) {
	return time.Unix(metadata.Birthtimespec.Unix()),
		time.Unix(metadata.Mtimespec.Unix()),
		time.Unix(metadata.Atimespec.Unix())
}
