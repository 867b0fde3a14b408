package main

import (
	"github.com/spf13/cobra"

	"github.com/mutagen-io/fsmeta/cmd"

	"github.com/mutagen-io/fsmeta/pkg/filesystem"
)

// canonicalizeMain is the entry point for the canonicalize command.
func canonicalizeMain(_ *cobra.Command, arguments []string) error {
	values := make(map[string]string, len(arguments))
	for _, path := range arguments {
		canonical, err := session.engine.Canonicalize(filesystem.NewEntry(path))
		if err != nil {
			return err
		}
		values[path] = canonical.Path()
	}
	return printValues(arguments, values)
}

// canonicalizeCommand is the canonicalize command.
var canonicalizeCommand = &cobra.Command{
	Use:          "canonicalize <path>...",
	Short:        "Resolve links and relative elements in paths",
	Args:         cmd.RequireArguments(1),
	RunE:         canonicalizeMain,
	SilenceUsage: true,
}

// canonicalizeConfiguration stores configuration for the canonicalize command.
var canonicalizeConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := canonicalizeCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&canonicalizeConfiguration.help, "help", "h", false, "Show help information")
}
