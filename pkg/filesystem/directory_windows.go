package filesystem

import (
	"github.com/mutagen-io/fsmeta/pkg/logging"
)

// readDirectory reads every child of a directory, including hidden children,
// by draining an enumeration. Find data already carries full attribute
// information, so no per-child queries are needed.
func readDirectory(entry Entry, logger *logging.Logger) ([]Child, error) {
	enumerator, err := openEnumerator(entry, logger)
	if err != nil {
		return nil, err
	}
	iterator := &Iterator{
		directory:     entry,
		includeHidden: true,
		enumerator:    enumerator,
		logger:        logger,
	}
	children, err := iterator.Collect()
	if err != nil {
		return nil, err
	}
	return children, nil
}
