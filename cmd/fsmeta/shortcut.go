package main

import (
	"github.com/spf13/cobra"

	"github.com/mutagen-io/fsmeta/pkg/filesystem"
)

// shortcutMain is the entry point for the shortcut command.
func shortcutMain(_ *cobra.Command, arguments []string) error {
	return session.engine.CreateShortcut(filesystem.NewEntry(arguments[0]), filesystem.NewEntry(arguments[1]))
}

// shortcutCommand is the shortcut command.
var shortcutCommand = &cobra.Command{
	Use:          "shortcut <link> <target>",
	Short:        "Create a shell shortcut file",
	Args:         cobra.ExactArgs(2),
	RunE:         shortcutMain,
	SilenceUsage: true,
}

// shortcutConfiguration stores configuration for the shortcut command.
var shortcutConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := shortcutCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&shortcutConfiguration.help, "help", "h", false, "Show help information")
}
