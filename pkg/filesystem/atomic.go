package filesystem

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mutagen-io/fsmeta/pkg/logging"
	"github.com/mutagen-io/fsmeta/pkg/must"
)

// temporaryNamePrefix is the file name prefix used for intermediate files in
// atomic writes.
const temporaryNamePrefix = ".fsmeta-temporary-"

// writeFileAtomic writes a file to disk in an atomic fashion by using an
// intermediate temporary file in the same directory that is swapped in place
// using a rename operation.
func writeFileAtomic(path string, data []byte, permissions os.FileMode, logger *logging.Logger) error {
	// Compute a unique temporary name.
	randomUUID, err := uuid.NewRandom()
	if err != nil {
		return errors.Wrap(err, "unable to generate UUID for temporary file")
	}
	temporaryPath := filepath.Join(filepath.Dir(path), temporaryNamePrefix+randomUUID.String())

	// Create the temporary file.
	temporary, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, permissions)
	if err != nil {
		return newError("create", temporaryPath, err)
	}

	// Write data.
	if _, err = temporary.Write(data); err != nil {
		must.Close(temporary, logger)
		must.OSRemove(temporaryPath, logger)
		return newError("write", temporaryPath, err)
	}

	// Close out the file.
	if err = temporary.Close(); err != nil {
		must.OSRemove(temporaryPath, logger)
		return newError("close", temporaryPath, err)
	}

	// Rename the file.
	if err = os.Rename(temporaryPath, path); err != nil {
		must.OSRemove(temporaryPath, logger)
		return newError("rename", path, err)
	}

	// Success.
	return nil
}
