package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/mutagen-io/fsmeta/pkg/encoding"
	"github.com/mutagen-io/fsmeta/pkg/logging"
)

// Environment variables consulted by ApplyEnvironment.
const (
	EnvironmentPermissionLookup = "FSMETA_PERMISSION_LOOKUP"
	EnvironmentLogLevel         = "FSMETA_LOG_LEVEL"
	EnvironmentOutput           = "FSMETA_OUTPUT"
	EnvironmentShortcuts        = "FSMETA_SHORTCUTS"
	EnvironmentCacheSize        = "FSMETA_CACHE_SIZE"
)

// OutputFormat is the rendering format for command output.
type OutputFormat uint8

const (
	// OutputFormatText renders human-readable text.
	OutputFormatText OutputFormat = iota
	// OutputFormatYAML renders YAML documents.
	OutputFormatYAML
)

// String provides a human-readable representation of an output format.
func (f OutputFormat) String() string {
	switch f {
	case OutputFormatText:
		return "text"
	case OutputFormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.MarshalText.
func (f OutputFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.UnmarshalText.
func (f *OutputFormat) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "text":
		*f = OutputFormatText
	case "yaml", "yml":
		*f = OutputFormatYAML
	default:
		return fmt.Errorf("unknown output format: %s", text)
	}
	return nil
}

// Configuration is the fsmeta configuration object type. Its YAML form is
// the contents of the configuration file.
type Configuration struct {
	// PermissionLookup enables access control list lookups for permissions
	// and ownership on platforms that support them.
	PermissionLookup bool `yaml:"permissionLookup"`
	// LogLevel is the log level.
	LogLevel logging.Level `yaml:"logLevel"`
	// Output is the command output format.
	Output OutputFormat `yaml:"output"`
	// Shortcuts controls whether or not shell shortcut files are treated as
	// links. If nil, the platform default is used.
	Shortcuts *bool `yaml:"shortcuts,omitempty"`
	// CacheSize is the maximum number of cached metadata records. A value of
	// zero disables caching.
	CacheSize int `yaml:"cacheSize"`
}

// Default returns the default configuration.
func Default() *Configuration {
	return &Configuration{
		LogLevel:  logging.LevelWarn,
		Output:    OutputFormatText,
		CacheSize: 1024,
	}
}

// EnsureValid ensures that the configuration is valid.
func (c *Configuration) EnsureValid() error {
	if c == nil {
		return errors.New("nil configuration")
	}
	if c.LogLevel > logging.LevelTrace {
		return errors.New("invalid log level")
	}
	if c.Output != OutputFormatText && c.Output != OutputFormatYAML {
		return errors.New("invalid output format")
	}
	if c.CacheSize < 0 {
		return errors.New("negative cache size")
	}
	return nil
}

// LoadFile loads a YAML configuration file on top of the default
// configuration. If the file does not exist, the returned error satisfies
// os.IsNotExist.
func LoadFile(path string) (*Configuration, error) {
	result := Default()
	if err := encoding.LoadAndUnmarshalYAML(path, result); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadEnvironment loads a "dotenv" environment file from disk and overlays
// the current process' environment, which takes precedence. Empty process
// variables don't override the file. A missing environment file is treated
// as empty.
func LoadEnvironment(path string) (map[string]string, error) {
	environment, err := godotenv.Read(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "unable to load environment file (%s)", path)
	}
	if environment == nil {
		environment = make(map[string]string)
	}

	// Add environment variables from the OS.
	for _, specification := range os.Environ() {
		keyValue := strings.SplitN(specification, "=", 2)
		if len(keyValue) != 2 {
			return nil, errors.Errorf("invalid OS environment variable specification: %s", specification)
		} else if keyValue[1] == "" {
			continue
		}
		environment[keyValue[0]] = keyValue[1]
	}

	// Success.
	return environment, nil
}

// ApplyEnvironment overrides configuration values with any FSMETA_* variables
// present in environment. Empty values are ignored.
func (c *Configuration) ApplyEnvironment(environment map[string]string) error {
	if value := environment[EnvironmentPermissionLookup]; value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "invalid %s value", EnvironmentPermissionLookup)
		}
		c.PermissionLookup = enabled
	}
	if value := environment[EnvironmentLogLevel]; value != "" {
		if err := c.LogLevel.UnmarshalText([]byte(value)); err != nil {
			return errors.Wrapf(err, "invalid %s value", EnvironmentLogLevel)
		}
	}
	if value := environment[EnvironmentOutput]; value != "" {
		if err := c.Output.UnmarshalText([]byte(value)); err != nil {
			return errors.Wrapf(err, "invalid %s value", EnvironmentOutput)
		}
	}
	if value := environment[EnvironmentShortcuts]; value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrapf(err, "invalid %s value", EnvironmentShortcuts)
		}
		c.Shortcuts = &enabled
	}
	if value := environment[EnvironmentCacheSize]; value != "" {
		size, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "invalid %s value", EnvironmentCacheSize)
		}
		c.CacheSize = size
	}
	return nil
}

// Load computes the effective configuration from the YAML configuration file
// at configurationPath and the environment file at environmentPath, in that
// order of increasing precedence, followed by the process environment. If
// configurationPath is empty, the default configuration path is used and may
// be absent. An explicitly specified configuration file must exist.
func Load(configurationPath, environmentPath string) (*Configuration, error) {
	// Load the configuration file.
	explicit := configurationPath != ""
	if !explicit {
		var err error
		if configurationPath, err = ConfigurationPath(); err != nil {
			return nil, err
		}
	}
	result, err := LoadFile(configurationPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "unable to load configuration file (%s)", configurationPath)
		} else if explicit {
			return nil, errors.Errorf("configuration file (%s) does not exist", configurationPath)
		}
		result = Default()
	}

	// Overlay the environment.
	if environmentPath == "" {
		environmentPath = EnvironmentFileName
	}
	environment, err := LoadEnvironment(environmentPath)
	if err != nil {
		return nil, err
	}
	if err := result.ApplyEnvironment(environment); err != nil {
		return nil, err
	}

	// Validate the result.
	if err := result.EnsureValid(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	// Success.
	return result, nil
}
