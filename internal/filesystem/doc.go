// Package filesystem adapts the operating system filesystem to the interfaces consumed by the mirror engine.
package filesystem
