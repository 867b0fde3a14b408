// Package configuration provides loading facilities for fsmeta's YAML
// configuration file, "dotenv" environment files, and FSMETA_* environment
// variables. Command line flags take precedence over all of these and are
// applied by the command line interface.
package configuration
