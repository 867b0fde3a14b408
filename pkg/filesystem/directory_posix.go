//go:build !windows

package filesystem

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/mutagen-io/fsmeta/pkg/logging"
	"github.com/mutagen-io/fsmeta/pkg/must"
	"github.com/mutagen-io/fsmeta/pkg/parallelism"
)

// maximumDirectoryWorkers bounds the number of concurrent fstatat calls
// during a directory read. It is set high enough to allow parallelism but not
// so high that many-core systems are overwhelmed.
const maximumDirectoryWorkers = 4

// readChild reads the metadata for a single child relative to an open
// directory descriptor. It returns nil metadata if the child has disappeared.
func readChild(descriptor int, child Entry, name string) (*Metadata, error) {
	var stat unix.Stat_t
	if err := fstatatRetryingOnEINTR(descriptor, name, &stat, unix.AT_SYMLINK_NOFOLLOW); err != nil {
		if IsKind(err, ErrorKindNotFound) {
			return nil, nil
		}
		return nil, newError("fstatat", child.Native(), err)
	}

	metadata := &Metadata{}
	if uint32(stat.Mode)&unix.S_IFMT != unix.S_IFLNK {
		metadata.SetLinkKind(LinkKindNone)
		fillFromStat(metadata, child, &stat)
		return metadata, nil
	}

	metadata.SetLinkKind(LinkKindSymbolicLink)
	if err := fstatatRetryingOnEINTR(descriptor, name, &stat, 0); err != nil {
		if kind := KindOf(err); kind != ErrorKindNotFound && kind != ErrorKindLinkResolutionFailed {
			return nil, newError("fstatat", child.Native(), err)
		}
		metadata.markNonexistent(FieldStat)
		metadata.SetAttributes(nameAttributes(child))
		return metadata, nil
	}
	fillFromStat(metadata, child, &stat)
	return metadata, nil
}

// readDirectory reads every child of a directory. Child metadata is queried
// in parallel with fstatat against a single directory descriptor. Children
// that disappear during the read are omitted.
func readDirectory(entry Entry, logger *logging.Logger) ([]Child, error) {
	path := entry.Native()

	// Open the directory and defer its closure.
	descriptor, err := openRetryingOnEINTR(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, newError("open", path, err)
	}
	directory := os.NewFile(uintptr(descriptor), path)
	defer must.Close(directory, logger)

	// Read content names.
	names, err := directory.Readdirnames(0)
	if err != nil {
		return nil, newError("readdir", path, err)
	}
	if len(names) == 0 {
		return nil, nil
	}

	// Read content metadata.
	workers := maximumDirectoryWorkers
	if len(names) < workers {
		workers = len(names)
	}
	pool := parallelism.NewPool(workers)
	defer pool.Terminate()
	results := make([]Child, len(names))
	if err := pool.ForEach(len(names), func(index int) error {
		child := entry.Join(names[index])
		metadata, err := readChild(descriptor, child, names[index])
		if err != nil {
			return err
		}
		results[index] = Child{Entry: child, Metadata: metadata}
		return nil
	}); err != nil {
		return nil, err
	}

	// Filter out children that disappeared.
	children := results[:0]
	for _, child := range results {
		if child.Metadata != nil {
			children = append(children, child)
		}
	}
	return children, nil
}
