package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/fsmeta/cmd"

	"github.com/mutagen-io/fsmeta/pkg/encoding"
	"github.com/mutagen-io/fsmeta/pkg/filesystem"
)

// identityMain is the entry point for the id command.
func identityMain(_ *cobra.Command, arguments []string) error {
	values := make(map[string]string, len(arguments))
	for _, path := range arguments {
		identity := session.engine.Identity(filesystem.NewEntry(path))
		if len(identity) == 0 {
			return errors.Errorf("unable to compute identity for %s", path)
		}
		values[path] = encoding.EncodeBase62(identity)
	}
	return printValues(arguments, values)
}

// identityCommand is the id command.
var identityCommand = &cobra.Command{
	Use:          "id <path>...",
	Short:        "Show stable object identities for paths",
	Args:         cmd.RequireArguments(1),
	RunE:         identityMain,
	SilenceUsage: true,
}

// identityConfiguration stores configuration for the id command.
var identityConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := identityCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&identityConfiguration.help, "help", "h", false, "Show help information")
}
