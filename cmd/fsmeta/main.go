package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mutagen-io/fsmeta/cmd"

	"github.com/mutagen-io/fsmeta/pkg/configuration"
	"github.com/mutagen-io/fsmeta/pkg/filesystem"
	"github.com/mutagen-io/fsmeta/pkg/fsmeta"
	"github.com/mutagen-io/fsmeta/pkg/logging"
)

// rootMain is the entry point for the root command.
func rootMain(command *cobra.Command, _ []string) error {
	// If no commands were given, then print help information and bail. We don't
	// have to worry about warning about arguments being present here (which
	// would be incorrect usage) because arguments can't even reach this point
	// (they will be mistaken for subcommands and a error will be displayed).
	command.Help()

	// Success.
	return nil
}

// rootCommand is the root command.
var rootCommand = &cobra.Command{
	Use:           "fsmeta",
	Version:       fsmeta.Version,
	Short:         "Query filesystem metadata and resolve paths",
	RunE:          rootMain,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// rootConfiguration stores configuration for the root command.
var rootConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// configurationPath is the path of the YAML configuration file.
	configurationPath string
	// environmentPath is the path of the environment file.
	environmentPath string
	// permissionLookup enables access control list lookups.
	permissionLookup bool
	// logLevel is the log level name.
	logLevel string
	// output is the output format name.
	output string
	// shortcuts controls shortcut resolution.
	shortcuts bool
}

// session is the state shared by commands after initialization.
var session struct {
	// configuration is the effective configuration.
	configuration *configuration.Configuration
	// logger is the root logger.
	logger *logging.Logger
	// engine is the filesystem engine.
	engine *filesystem.Engine
	// cache is the metadata cache, if enabled.
	cache *filesystem.Cache
}

// initialize computes the effective configuration and constructs the engine.
// Flags take precedence over the environment, which takes precedence over the
// configuration file.
func initialize(_ *cobra.Command, _ []string) error {
	// Avoid touching the configuration during shell completion.
	if cmd.PerformingShellCompletion {
		return nil
	}

	// Load configuration and apply flag overrides.
	result, err := configuration.Load(rootConfiguration.configurationPath, rootConfiguration.environmentPath)
	if err != nil {
		return err
	}
	flags := rootCommand.PersistentFlags()
	if flags.Changed("permission-lookup") {
		result.PermissionLookup = rootConfiguration.permissionLookup
	}
	if flags.Changed("log-level") {
		if err := result.LogLevel.UnmarshalText([]byte(rootConfiguration.logLevel)); err != nil {
			return err
		}
	}
	if flags.Changed("output") {
		if err := result.Output.UnmarshalText([]byte(rootConfiguration.output)); err != nil {
			return err
		}
	}
	if flags.Changed("shortcuts") {
		result.Shortcuts = &rootConfiguration.shortcuts
	}
	if fsmeta.DebugEnabled && result.LogLevel < logging.LevelDebug {
		result.LogLevel = logging.LevelDebug
	}

	// Create the logger and engine.
	session.configuration = result
	session.logger = logging.NewLogger(result.LogLevel, os.Stderr)
	filesystem.SetPermissionLookupEnabled(result.PermissionLookup)
	options := []filesystem.Option{filesystem.WithLogger(session.logger.Sublogger("filesystem"))}
	if result.Shortcuts != nil {
		options = append(options, filesystem.WithShortcuts(*result.Shortcuts))
	}
	session.engine = filesystem.NewEngine(options...)
	if result.CacheSize > 0 {
		session.cache = filesystem.NewCache(result.CacheSize)
	}
	session.logger.Debugf("Initialized with %s output and permission lookup %t",
		result.Output, result.PermissionLookup,
	)

	// Success.
	return nil
}

// metadata queries metadata through the cache, if enabled.
func metadata(entry filesystem.Entry, fields filesystem.Fields) (*filesystem.Metadata, error) {
	if session.cache != nil {
		return session.engine.CachedMetadata(session.cache, entry, fields)
	}
	return session.engine.Metadata(entry, fields)
}

// bindPersistentFlags binds the flags shared by every command.
func bindPersistentFlags(flags *pflag.FlagSet) {
	flags.SortFlags = false
	flags.StringVarP(&rootConfiguration.configurationPath, "config", "c", "", "Specify the configuration file path")
	flags.StringVar(&rootConfiguration.environmentPath, "env-file", "", "Specify the environment file path")
	flags.BoolVar(&rootConfiguration.permissionLookup, "permission-lookup", false, "Use access control lists for permissions and ownership")
	flags.StringVar(&rootConfiguration.logLevel, "log-level", "", "Set the log level (disabled|error|warn|info|debug|trace)")
	flags.StringVarP(&rootConfiguration.output, "output", "o", "", "Set the output format (text|yaml)")
	flags.BoolVar(&rootConfiguration.shortcuts, "shortcuts", false, "Treat shell shortcut files as links")
}

func init() {
	// Disable Cobra's command sorting behavior. By default, it sorts commands
	// alphabetically in the help output.
	cobra.EnableCommandSorting = false

	// Disable Cobra's use of mousetrap.
	cobra.MousetrapHelpText = ""

	// Set the template used by the version flag.
	rootCommand.SetVersionTemplate("fsmeta version {{ .Version }}\n")

	// Grab a handle for the command line flags.
	flags := rootCommand.Flags()

	// Disable alphabetical sorting of flags in help output.
	flags.SortFlags = false

	// Manually add a help flag to override the default message. Cobra will
	// still implement its logic automatically.
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")

	// Bind persistent flags and the hook that consumes them. The hook is
	// assigned here since it refers to the root command.
	bindPersistentFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentPreRunE = initialize

	// Register commands. We do this here (rather than in individual init
	// functions) so that we can control the order.
	rootCommand.AddCommand(
		statCommand,
		listCommand,
		canonicalizeCommand,
		identityCommand,
		ownerCommand,
		drivesCommand,
		sharesCommand,
		chmodCommand,
		shortcutCommand,
		versionCommand,
	)
}

func main() {
	// Handle terminal compatibility issues. If this call returns, then we
	// should proceed normally.
	cmd.HandleTerminalCompatibility()

	// Execute the root command.
	if err := rootCommand.Execute(); err != nil {
		cmd.Fatal(err)
	}
}
