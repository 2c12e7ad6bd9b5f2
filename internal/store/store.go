// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// File suffixes used by the durable write protocol.
const (
	tmpExt    = ".tmp"
	backupExt = ".bak"
)

// Backup copying is best-effort; transient failures get a couple of quick
// retries before the write proceeds without a fresh backup.
const (
	backupRetries = 2
	backupBackoff = 25 * time.Millisecond
)

// ValidateFunc is a structural check applied to bytes read from disk.
// Returning an error marks the copy as corrupt and triggers backup
// recovery.
type ValidateFunc func(data []byte) error

// Store provides atomic write-with-backup and read-with-recovery on raw
// files. Every operation serializes against other operations on the same
// path via the shared lock table; distinct paths never block each other.
//
// Durability contract: a completed Write leaves exactly the given bytes at
// the path and the previous generation (if any) at path+".bak". A reader
// never observes a partially written file at the canonical path.
type Store struct {
	locks   *PathLocks
	logger  *slog.Logger
	metrics *Metrics
}

// New creates a Store. metrics may be nil to disable instrumentation.
func New(logger *slog.Logger, metrics *Metrics) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		locks:   NewPathLocks(),
		logger:  logger,
		metrics: metrics,
	}
}

// Write durably replaces the contents of path with data.
//
// Protocol: ensure the parent directory, write and fsync a sibling temp
// file, best-effort copy the current file to its backup, then atomically
// rename the temp file into place. On temp-write failure the original file
// is untouched.
func (s *Store) Write(ctx context.Context, path string, data []byte) error {
	release := s.locks.Acquire(path)
	defer release()
	return s.writeLocked(ctx, path, data)
}

// writeLocked runs the write protocol. The caller must hold the path lock.
func (s *Store) writeLocked(ctx context.Context, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return oops.Code("STORE_MKDIR_FAILED").
			With("dir", dir).
			Wrap(err)
	}

	tmpPath := path + tmpExt
	if err := writeSync(tmpPath, data); err != nil {
		// Leave the original untouched; the temp file is garbage either way.
		_ = os.Remove(tmpPath)
		return oops.Code("STORE_TMP_WRITE_FAILED").
			With("path", path).
			Wrap(err)
	}

	if _, err := os.Stat(path); err == nil {
		s.backupLocked(ctx, path)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return oops.Code("STORE_RENAME_FAILED").
			With("path", path).
			Wrap(err)
	}

	if s.metrics != nil {
		s.metrics.WritesTotal.Inc()
	}
	s.logger.Debug("wrote file", "path", path, "bytes", len(data))
	return nil
}

// backupLocked copies path to path+".bak", overwriting any prior backup.
// Failure is logged and never aborts the write: the store trades backup
// freshness for write availability.
func (s *Store) backupLocked(ctx context.Context, path string) {
	backoff := retry.WithMaxRetries(backupRetries, retry.NewConstant(backupBackoff))
	err := retry.Do(ctx, backoff, func(_ context.Context) error {
		if copyErr := copyFile(path, path+backupExt); copyErr != nil {
			return retry.RetryableError(copyErr)
		}
		return nil
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.BackupFailuresTotal.Inc()
		}
		s.logger.Warn("backup copy failed, continuing without fresh backup",
			"path", path, "error", err)
	}
}

// Read returns the full contents of path, recovering from the backup
// generation if the main file is unreadable. A missing path yields
// ErrNotFound.
func (s *Store) Read(ctx context.Context, path string) ([]byte, error) {
	return s.ReadValidated(ctx, path, nil)
}

// ReadValidated is Read with an additional structural check. If validate
// rejects the main file's bytes the store treats the copy as corrupt and
// attempts backup recovery, restoring the backup into place on success.
func (s *Store) ReadValidated(ctx context.Context, path string, validate ValidateFunc) ([]byte, error) {
	release := s.locks.Acquire(path)
	defer release()
	return s.readLocked(ctx, path, validate)
}

// readLocked runs the read-with-recovery protocol. The caller must hold
// the path lock.
func (s *Store) readLocked(ctx context.Context, path string, validate ValidateFunc) ([]byte, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, oops.Code("STORE_NOT_FOUND").
				With("path", path).
				Wrap(ErrNotFound)
		}
		return nil, oops.Code("STORE_STAT_FAILED").
			With("path", path).
			Wrap(err)
	}

	data, readErr := os.ReadFile(path)
	if readErr == nil && validate != nil {
		readErr = validate(data)
	}
	if readErr == nil {
		if s.metrics != nil {
			s.metrics.ReadsTotal.Inc()
		}
		return data, nil
	}

	s.logger.Warn("read failed, attempting backup recovery",
		"path", path, "error", readErr)

	backupPath := path + backupExt
	if _, err := os.Stat(backupPath); err != nil {
		// No backup generation: propagate the original failure.
		return nil, oops.Code("STORE_READ_FAILED").
			With("path", path).
			Wrap(readErr)
	}

	backupData, err := os.ReadFile(backupPath)
	if err == nil && validate != nil {
		err = validate(backupData)
	}
	if err != nil {
		return nil, oops.Code("STORE_BOTH_CORRUPT").
			With("path", path).
			With("main_error", readErr.Error()).
			With("backup_error", err.Error()).
			Wrap(ErrCorrupt)
	}

	// Promote the backup to the canonical path through the write protocol.
	if err := s.writeLocked(ctx, path, backupData); err != nil {
		return nil, oops.Code("STORE_BOTH_CORRUPT").
			With("path", path).
			With("main_error", readErr.Error()).
			With("restore_error", err.Error()).
			Wrap(ErrCorrupt)
	}

	if s.metrics != nil {
		s.metrics.RecoveriesTotal.Inc()
	}
	s.logger.Info("recovered file from backup", "path", path)
	return backupData, nil
}

// Update atomically transforms the record at path: the read (with
// recovery), the transform, and the durable write all happen under one
// hold of the path lock, so no other writer can interleave.
func (s *Store) Update(ctx context.Context, path string, validate ValidateFunc, transform func(data []byte) ([]byte, error)) error {
	release := s.locks.Acquire(path)
	defer release()

	data, err := s.readLocked(ctx, path, validate)
	if err != nil {
		return err
	}
	updated, err := transform(data)
	if err != nil {
		return err
	}
	return s.writeLocked(ctx, path, updated)
}

// Exists reports whether a record exists at path.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Delete removes the file at path together with its backup generation.
// Missing files are not an error.
func (s *Store) Delete(_ context.Context, path string) error {
	release := s.locks.Acquire(path)
	defer release()

	for _, target := range []string{path, path + backupExt} {
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			return oops.Code("STORE_DELETE_FAILED").
				With("path", target).
				Wrap(err)
		}
	}
	s.logger.Debug("deleted file", "path", path)
	return nil
}

// writeSync writes data to path and forces it to stable storage before
// returning. No partially flushed temp file is ever considered valid.
func writeSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// copyFile copies src to dst, replacing dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
