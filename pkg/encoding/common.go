// Package encoding provides loading and encoding helpers shared by the
// configuration layer and the command line interface.
package encoding

import (
	"os"

	"github.com/pkg/errors"
)

// LoadAndUnmarshal reads the data at the specified path and then invokes the
// specified unmarshaling callback (usually a closure) to decode the data. If
// the file does not exist, the returned error satisfies os.IsNotExist.
func LoadAndUnmarshal(path string, unmarshal func([]byte) error) error {
	// Grab the file contents.
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return errors.Wrap(err, "unable to load file")
	}

	// Perform the unmarshaling.
	if err := unmarshal(data); err != nil {
		return errors.Wrap(err, "unable to unmarshal data")
	}

	// Success.
	return nil
}
