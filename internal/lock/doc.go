// Package lock provides the mutexes used to serialize mirror runs per target path.
//
// Mutexes come from github.com/sasha-s/go-deadlock with the hold-time detector
// disabled.
package lock
