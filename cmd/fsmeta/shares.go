package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mutagen-io/fsmeta/pkg/configuration"
	"github.com/mutagen-io/fsmeta/pkg/encoding"
)

// sharesMain is the entry point for the shares command.
func sharesMain(_ *cobra.Command, arguments []string) error {
	shares, err := session.engine.ListShares(arguments[0])
	if err != nil {
		return err
	}
	if session.configuration.Output == configuration.OutputFormatYAML {
		return encoding.EncodeYAML(os.Stdout, shares)
	}
	for _, share := range shares {
		fmt.Println(share)
	}
	return nil
}

// sharesCommand is the shares command.
var sharesCommand = &cobra.Command{
	Use:          "shares <server>",
	Short:        "List the disk shares of a server",
	Args:         cobra.ExactArgs(1),
	RunE:         sharesMain,
	SilenceUsage: true,
}

// sharesConfiguration stores configuration for the shares command.
var sharesConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := sharesCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&sharesConfiguration.help, "help", "h", false, "Show help information")
}
