// Package cli constructs the branchmirror command-line interface, wiring the
// Cobra command hierarchy, the Viper configuration loader and zap logging,
// and exposes Execute for the binary entrypoint.
package cli
