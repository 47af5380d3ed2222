// Package utils holds the configuration and logging plumbing shared by branchmirror commands.
//
// ConfigurationLoader layers embedded YAML, an optional config file and
// BRANCHMIRROR_ environment variables through Viper. LoggerFactory builds the
// zap loggers for the structured and console output formats.
package utils
