package main

import (
	"github.com/spf13/cobra"

	"github.com/mutagen-io/fsmeta/cmd"

	"github.com/mutagen-io/fsmeta/pkg/filesystem"
)

// statMain is the entry point for the stat command.
func statMain(_ *cobra.Command, arguments []string) error {
	// Parse the requested fields.
	fields, err := filesystem.ParseFields(statConfiguration.fields)
	if err != nil {
		return err
	}

	// Query each path. Paths that don't exist still produce records.
	records := make([]*record, 0, len(arguments))
	for _, path := range arguments {
		entry := filesystem.NewEntry(path)
		result, err := metadata(entry, fields)
		if result == nil {
			return err
		} else if err != nil {
			session.logger.Debugf("Partial metadata for %s: %v", path, err)
		}
		records = append(records, newRecord(entry, result))
	}

	// Print the results.
	return printRecords(records)
}

// statCommand is the stat command.
var statCommand = &cobra.Command{
	Use:          "stat <path>...",
	Short:        "Show metadata for one or more paths",
	Args:         cmd.RequireArguments(1),
	RunE:         statMain,
	SilenceUsage: true,
}

// statConfiguration stores configuration for the stat command.
var statConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// fields is the comma-separated list of fields to query.
	fields string
}

func init() {
	// Grab a handle for the command line flags.
	flags := statCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&statConfiguration.help, "help", "h", false, "Show help information")

	// Wire up stat flags.
	flags.StringVarP(&statConfiguration.fields, "fields", "f", "all", "Specify the fields to query (comma-separated)")
}
