//go:build !windows

package filesystem

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/mutagen-io/fsmeta/pkg/logging"
)

// fileMetadata queries every stat field through an open file descriptor.
func fileMetadata(file *os.File, _ Fields, _ *logging.Logger) (*Metadata, error) {
	var stat unix.Stat_t
	if err := fstatRetryingOnEINTR(int(file.Fd()), &stat); err != nil {
		return nil, newError("fstat", file.Name(), err)
	}
	metadata := &Metadata{}
	metadata.SetLinkKind(LinkKindNone)
	fillFromStat(metadata, NewEntry(file.Name()), &stat)
	return metadata, nil
}
