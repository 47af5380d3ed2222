package mirror

import (
	"context"
	"io/fs"
)

// RepositoryBackend performs the version-control operations the mirror engine depends on.
// Every call names its repository path explicitly; implementations keep no per-path state.
type RepositoryBackend interface {
	InitRepository(executionContext context.Context, repositoryPath string) error
	// ListRemotes returns the configured remote names, one per line.
	ListRemotes(executionContext context.Context, repositoryPath string) (string, error)
	SetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error
	AddRemote(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error
	Fetch(executionContext context.Context, repositoryPath string) error
	Checkout(executionContext context.Context, repositoryPath string, branchName string) error
	// ListRemoteReferences returns newline separated "<hash>\t<ref>" pairs for the remote's heads.
	ListRemoteReferences(executionContext context.Context, remoteURL string) (string, error)
}

// FileSystem exposes the filesystem operations used while materializing branches.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, permissions fs.FileMode) error
	MkdirTemp(parentPath string, pattern string) (string, error)
	Rename(oldPath string, newPath string) error
	RemoveAll(path string) error
}
