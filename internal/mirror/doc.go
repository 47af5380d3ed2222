// Package mirror lays out every branch of a remote repository as its own checkout.
//
// RepositoryMirrorer prepares <root>/<repository> as a repository whose origin
// points at the remote, lists the remote heads, selects branches according to
// a BranchSelectionPolicy and hands each one to BranchMaterializer in remote
// order. BranchMaterializer builds a standalone repository for one branch in a
// hidden staging directory and renames it into place once checkout succeeds;
// an existing branch folder is never touched again.
//
// Failures never escape Mirror. They are logged and collected in MirrorReport
// so callers can decide whether a partial mirror is acceptable.
package mirror
