package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mutagen-io/fsmeta/cmd"

	"github.com/mutagen-io/fsmeta/pkg/configuration"
	"github.com/mutagen-io/fsmeta/pkg/filesystem"
)

// listProgressInterval is the number of children between progress updates.
const listProgressInterval = 256

// printChildText prints a single directory child in short or long form.
func printChildText(child filesystem.Child, r *record, long bool) {
	name := child.Entry.Name()
	if name == "" {
		name = child.Entry.Path()
	}
	name = colorizedName(name, r)
	if !long {
		fmt.Fprintln(color.Output, name)
		return
	}
	kind := r.Type
	if r.Link != "" {
		kind = r.Link
	}
	var size string
	if r.Size != nil && r.Type != "directory" {
		size = humanize.Bytes(*r.Size)
	}
	var modified string
	if r.Modified != nil {
		modified = humanize.Time(*r.Modified)
	}
	fmt.Fprintf(color.Output, "%-10s %10s %-16s %s\n", kind, size, modified, name)
}

// listMain is the entry point for the list command.
func listMain(_ *cobra.Command, arguments []string) error {
	// Determine the directory. An empty directory with the drives flag
	// enumerates drive roots.
	var directory filesystem.Entry
	if len(arguments) == 1 {
		directory = filesystem.NewEntry(arguments[0])
	} else if !listConfiguration.drives {
		directory = filesystem.NewEntry(".")
	}

	// Create the iterator and ensure its closure.
	iterator, err := session.engine.Iterate(directory, filesystem.IteratorOptions{
		NameFilters:   listConfiguration.filters,
		IncludeHidden: listConfiguration.all,
	})
	if err != nil {
		return err
	}
	defer iterator.Close()

	// Enumerate children, reporting progress on terminals.
	var progress *cmd.StatusLinePrinter
	if cmd.StandardErrorIsTerminal() {
		progress = &cmd.StatusLinePrinter{UseStandardError: true}
	}
	var children []filesystem.Child
	for {
		child, err := iterator.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			if progress != nil {
				progress.BreakIfNonEmpty()
			}
			return err
		}
		children = append(children, child)
		if progress != nil && len(children)%listProgressInterval == 0 {
			progress.Print(fmt.Sprintf("Enumerating %s: %d entries", iterator.Directory(), len(children)))
		}
	}
	if progress != nil && len(children) >= listProgressInterval {
		progress.Clear()
	}

	// Complete metadata for long listings.
	records := make([]*record, len(children))
	for i, child := range children {
		if listConfiguration.long && !child.Entry.IsEmpty() {
			fetched, err := session.engine.Info(child.Entry).Fetch(filesystem.FieldStat)
			if err != nil {
				session.logger.Debugf("Incomplete metadata for %s: %v", child.Entry, err)
			}
			child.Metadata.Merge(fetched)
		}
		records[i] = newRecord(child.Entry, child.Metadata)
	}

	// Print the results.
	if session.configuration.Output == configuration.OutputFormatYAML {
		return printRecords(records)
	}
	for i, child := range children {
		printChildText(child, records[i], listConfiguration.long)
	}
	return nil
}

// listCommand is the list command.
var listCommand = &cobra.Command{
	Use:          "list [<directory>]",
	Short:        "List the contents of a directory",
	Args:         cobra.MaximumNArgs(1),
	RunE:         listMain,
	SilenceUsage: true,
}

// listConfiguration stores configuration for the list command.
var listConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// filters are the name filter patterns.
	filters []string
	// all indicates whether or not hidden entries should be included.
	all bool
	// long indicates whether or not to use long listing mode.
	long bool
	// drives indicates that drive roots should be listed when no directory is
	// specified.
	drives bool
}

func init() {
	// Grab a handle for the command line flags.
	flags := listCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&listConfiguration.help, "help", "h", false, "Show help information")

	// Wire up list flags.
	flags.StringArrayVarP(&listConfiguration.filters, "filter", "f", nil, "Include only names matching a glob pattern (repeatable)")
	flags.BoolVarP(&listConfiguration.all, "all", "a", false, "Include hidden entries")
	flags.BoolVarP(&listConfiguration.long, "long", "l", false, "Show detailed information")
	flags.BoolVarP(&listConfiguration.drives, "drives", "d", false, "List drive roots if no directory is specified")
}
