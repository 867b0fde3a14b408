package main

import (
	"os"
	"runtime"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/fsmeta/cmd"

	"github.com/mutagen-io/fsmeta/pkg/filesystem"
)

// chmodMain is the entry point for the chmod command.
func chmodMain(_ *cobra.Command, arguments []string) error {
	mode, err := strconv.ParseUint(arguments[0], 8, 32)
	if err != nil || mode > 0o777 {
		return errors.Errorf("invalid permission mode: %s", arguments[0])
	}
	permissions := filesystem.PermissionsFromMode(os.FileMode(mode))
	if runtime.GOOS == "windows" && !session.configuration.PermissionLookup {
		cmd.Warning("permission lookup disabled, only the read-only attribute will be changed")
	}
	for _, path := range arguments[1:] {
		if err := session.engine.SetPermissions(filesystem.NewEntry(path), permissions); err != nil {
			return err
		}
	}
	return nil
}

// chmodCommand is the chmod command.
var chmodCommand = &cobra.Command{
	Use:          "chmod <mode> <path>...",
	Short:        "Set permissions from an octal mode",
	Args:         cmd.RequireArguments(2),
	RunE:         chmodMain,
	SilenceUsage: true,
}

// chmodConfiguration stores configuration for the chmod command.
var chmodConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := chmodCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&chmodConfiguration.help, "help", "h", false, "Show help information")
}
