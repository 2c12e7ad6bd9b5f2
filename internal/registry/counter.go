// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

package registry

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/oops"
)

// DefaultFirstUserID is handed out first when no counter file exists.
const DefaultFirstUserID = 1000

// Counter allocates monotonically increasing user ids, one global lock.
// The file holds the last id handed out; it is overwritten and flushed
// before an id is returned, so ids survive restarts and are never reused.
type Counter struct {
	mu   sync.Mutex
	path string
	next int32
}

// NewCounter creates a counter backed by the file at path.
func NewCounter(path string) *Counter {
	return &Counter{path: path, next: DefaultFirstUserID}
}

// Load resumes from the persisted last-handed-out id. A missing file
// leaves the default starting id; a malformed file is an error.
func (c *Counter) Load(logger *slog.Logger) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return oops.Code("COUNTER_LOAD_FAILED").With("path", c.path).Wrap(err)
	}

	last, parseErr := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 32)
	if parseErr != nil {
		return oops.Code("COUNTER_MALFORMED").
			With("path", c.path).
			With("contents", strings.TrimSpace(string(data))).
			Wrap(parseErr)
	}
	c.next = int32(last) + 1

	if logger != nil {
		logger.Info("loaded user id counter", "path", c.path, "next", c.next)
	}
	return nil
}

// Next hands out the next user id. The id is flushed to disk before being
// returned; on flush failure no id is consumed.
func (c *Counter) Next() (int32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	if err := c.persistLocked(id); err != nil {
		return 0, err
	}
	c.next++
	return id, nil
}

// Peek returns the id the next call to Next would hand out.
func (c *Counter) Peek() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

func (c *Counter) persistLocked(id int32) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return oops.Code("COUNTER_PERSIST_FAILED").With("path", c.path).Wrap(err)
	}
	if err := os.WriteFile(c.path, []byte(strconv.FormatInt(int64(id), 10)+"\n"), 0o600); err != nil {
		return oops.Code("COUNTER_PERSIST_FAILED").With("path", c.path).Wrap(err)
	}
	return nil
}
