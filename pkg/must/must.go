// Package must provides helpers for operations whose failures can only be
// logged, typically because they occur during cleanup.
package must

import (
	"io"
	"os"

	"github.com/mutagen-io/fsmeta/pkg/logging"
)

// Close closes the closer and logs a warning on failure.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("Unable to close: %s", err.Error())
	}
}

// OSRemove removes the named file or empty directory and logs a warning on
// failure.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warnf("Unable to remove '%s': %s", name, err.Error())
	}
}

// OSRemoveAll removes the named path and any children and logs a warning on
// failure.
func OSRemoveAll(name string, logger *logging.Logger) {
	if err := os.RemoveAll(name); err != nil {
		logger.Warnf("Unable to remove '%s': %s", name, err.Error())
	}
}

// Succeed logs a warning if err is non-nil.
func Succeed(err error, task string, logger *logging.Logger) {
	if err != nil {
		logger.Warnf("Unable to succeed at %s; %s", task, err.Error())
	}
}
