// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

// Package registry provides the flat-file-backed registries that sit next
// to the per-player store: ban lists, the user-id counter, and the clan
// name registry. Each registry guards its in-memory state and backing file
// with one mutex; operations are infrequent and cheap relative to
// per-player I/O.
package registry

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/oops"
)

// BanList is an in-memory set of banned identifiers mirrored to a
// newline-delimited file. Lines starting with '#' are comments. Additions
// append to the file; removals rewrite it through a temp file and atomic
// rename (no backup generation is kept for registries).
type BanList struct {
	mu        sync.Mutex
	path      string
	entries   map[string]struct{}
	normalize bool // lowercase entries (usernames); false for IP literals
	logger    *slog.Logger
}

// NewUserBanList creates a ban list for usernames (entries lowercased).
func NewUserBanList(path string, logger *slog.Logger) *BanList {
	return newBanList(path, true, logger)
}

// NewIPBanList creates a ban list for IP literals (entries kept verbatim).
func NewIPBanList(path string, logger *slog.Logger) *BanList {
	return newBanList(path, false, logger)
}

func newBanList(path string, normalize bool, logger *slog.Logger) *BanList {
	if logger == nil {
		logger = slog.Default()
	}
	return &BanList{
		path:      path,
		entries:   make(map[string]struct{}),
		normalize: normalize,
		logger:    logger,
	}
}

func (b *BanList) key(entry string) string {
	entry = strings.TrimSpace(entry)
	if b.normalize {
		entry = strings.ToLower(entry)
	}
	return entry
}

// Load reads the backing file into memory, creating an empty file when
// none exists.
func (b *BanList) Load() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadLocked()
}

// Reload clears the in-memory set and re-reads the backing file.
func (b *BanList) Reload() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make(map[string]struct{})
	return b.loadLocked()
}

func (b *BanList) loadLocked() error {
	f, err := os.Open(b.path)
	if errors.Is(err, os.ErrNotExist) {
		if mkErr := os.MkdirAll(filepath.Dir(b.path), 0o700); mkErr != nil {
			return oops.Code("REGISTRY_LOAD_FAILED").With("path", b.path).Wrap(mkErr)
		}
		if touchErr := os.WriteFile(b.path, nil, 0o600); touchErr != nil {
			return oops.Code("REGISTRY_LOAD_FAILED").With("path", b.path).Wrap(touchErr)
		}
		return nil
	}
	if err != nil {
		return oops.Code("REGISTRY_LOAD_FAILED").With("path", b.path).Wrap(err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b.entries[b.key(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return oops.Code("REGISTRY_LOAD_FAILED").With("path", b.path).Wrap(err)
	}

	b.logger.Info("loaded ban list", "path", b.path, "entries", len(b.entries))
	return nil
}

// Contains reports whether entry is banned.
func (b *BanList) Contains(entry string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.entries[b.key(entry)]
	return ok
}

// Add bans entry: inserts into the in-memory set and appends one line to
// the backing file.
func (b *BanList) Add(entry string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := b.key(entry)
	if _, ok := b.entries[key]; ok {
		return nil
	}
	b.entries[key] = struct{}{}

	f, err := os.OpenFile(b.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return oops.Code("REGISTRY_APPEND_FAILED").With("path", b.path).Wrap(err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, key); err != nil {
		return oops.Code("REGISTRY_APPEND_FAILED").With("path", b.path).Wrap(err)
	}
	b.logger.Info("added ban entry", "path", b.path, "entry", key)
	return nil
}

// Remove unbans entry: drops it from the in-memory set and rewrites the
// backing file atomically without the entry.
func (b *BanList) Remove(entry string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := b.key(entry)
	delete(b.entries, key)

	if err := b.rewriteLocked(); err != nil {
		return err
	}
	b.logger.Info("removed ban entry", "path", b.path, "entry", key)
	return nil
}

// rewriteLocked writes the current set to a temp file and renames it over
// the backing file. Comments from the original file are not preserved.
func (b *BanList) rewriteLocked() error {
	tmpPath := b.path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return oops.Code("REGISTRY_REWRITE_FAILED").With("path", b.path).Wrap(err)
	}
	w := bufio.NewWriter(f)
	for entry := range b.entries {
		fmt.Fprintln(w, entry)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return oops.Code("REGISTRY_REWRITE_FAILED").With("path", b.path).Wrap(err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return oops.Code("REGISTRY_REWRITE_FAILED").With("path", b.path).Wrap(err)
	}
	if err := f.Close(); err != nil {
		return oops.Code("REGISTRY_REWRITE_FAILED").With("path", b.path).Wrap(err)
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		return oops.Code("REGISTRY_REWRITE_FAILED").With("path", b.path).Wrap(err)
	}
	return nil
}

// Len returns the number of banned entries.
func (b *BanList) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
