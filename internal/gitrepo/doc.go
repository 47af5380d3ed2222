// Package gitrepo talks to git on behalf of the mirror engine.
//
// GitBackend implements the repository operations used to materialize branch
// checkouts (init, remote configuration, fetch, checkout and ls-remote), each
// addressed by an explicit repository path. ParseRemoteURL extracts the
// repository name from SSH and HTTPS remote URLs.
package gitrepo
