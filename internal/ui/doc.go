// Package ui renders git command lifecycle events as console log lines.
//
// The CLI installs ConsoleCommandEventLogger as the shell executor observer
// when the console log format is selected, so users see one readable line per
// repository step while structured output keeps machine-friendly fields.
package ui
