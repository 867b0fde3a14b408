package main

import (
	"github.com/spf13/cobra"

	"github.com/mutagen-io/fsmeta/pkg/filesystem"
)

// ownerMain is the entry point for the owner command.
func ownerMain(_ *cobra.Command, arguments []string) error {
	kind := filesystem.OwnerUser
	if ownerConfiguration.group {
		kind = filesystem.OwnerGroup
	}
	name, err := session.engine.Owner(filesystem.NewEntry(arguments[0]), kind)
	if err != nil {
		return err
	}
	return printValues(arguments[:1], map[string]string{arguments[0]: name})
}

// ownerCommand is the owner command.
var ownerCommand = &cobra.Command{
	Use:          "owner <path>",
	Short:        "Show the owning account of a path",
	Args:         cobra.ExactArgs(1),
	RunE:         ownerMain,
	SilenceUsage: true,
}

// ownerConfiguration stores configuration for the owner command.
var ownerConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// group indicates that the owning group should be shown.
	group bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := ownerCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&ownerConfiguration.help, "help", "h", false, "Show help information")

	// Wire up owner flags.
	flags.BoolVarP(&ownerConfiguration.group, "group", "g", false, "Show the owning group instead of the user")
}
