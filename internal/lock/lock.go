package lock

import "github.com/sasha-s/go-deadlock"

func init() {
	// Hold-time detection is off; only lock-order inversions are reported.
	deadlock.Opts.DeadlockTimeout = 0
}

// Mutex is a mutual exclusion lock that reports lock-order inversions.
type Mutex = deadlock.Mutex
