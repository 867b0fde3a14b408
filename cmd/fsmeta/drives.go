package main

import (
	"github.com/spf13/cobra"

	"github.com/mutagen-io/fsmeta/cmd"
)

// drivesMain is the entry point for the drives command.
func drivesMain(_ *cobra.Command, _ []string) error {
	drives, err := session.engine.Drives()
	if err != nil {
		return err
	}
	records := make([]*record, len(drives))
	for i, drive := range drives {
		records[i] = newRecord(drive.Entry, drive.Metadata)
	}
	return printRecords(records)
}

// drivesCommand is the drives command.
var drivesCommand = &cobra.Command{
	Use:          "drives",
	Short:        "List drive roots",
	Args:         cmd.DisallowArguments,
	RunE:         drivesMain,
	SilenceUsage: true,
}

// drivesConfiguration stores configuration for the drives command.
var drivesConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := drivesCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&drivesConfiguration.help, "help", "h", false, "Show help information")
}
