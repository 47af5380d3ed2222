// Package execshell runs external tools such as git on behalf of branchmirror.
//
// ShellExecutor reports each command lifecycle either through a zap logger or
// a CommandEventObserver and converts non-zero exits into CommandFailedError.
// OSCommandRunner is the default process runner; tests substitute recording
// runners through the CommandRunner interface.
package execshell
