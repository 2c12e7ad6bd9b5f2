// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

package store

import "sync"

// PathLocks hands out one mutex per absolute file path so that all reads
// and writes of a path are serialized while distinct paths proceed in
// parallel.
//
// Entries are created lazily and never evicted. The map therefore grows
// with the number of distinct accounts touched over the process lifetime;
// acceptable for bounded populations, a striped table would be needed at
// larger scale.
type PathLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPathLocks creates an empty lock table.
func NewPathLocks() *PathLocks {
	return &PathLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the mutex for path, creating it on first use, and returns
// a release function. The release function must be called exactly once,
// typically via defer, so the lock is dropped on every exit path.
//
// Locks are not reentrant: code holding a path's lock must call the
// unlocked internal variants of store operations rather than re-acquiring.
func (l *PathLocks) Acquire(path string) (release func()) {
	l.mu.Lock()
	m, ok := l.locks[path]
	if !ok {
		m = &sync.Mutex{}
		l.locks[path] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Len returns the number of distinct paths ever locked.
func (l *PathLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
