// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

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

// ClanRegistry records which clan name each owner registered. The backing
// file holds "owner:clanName" lines, append-only; the first match for an
// owner wins on lookup. Clan state itself lives inside the owner's player
// record, the registry only reserves names.
type ClanRegistry struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewClanRegistry creates a clan registry backed by the file at path.
func NewClanRegistry(path string, logger *slog.Logger) *ClanRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClanRegistry{path: path, logger: logger}
}

// Register appends an owner:name entry unless the owner already has one.
func (r *ClanRegistry) Register(owner, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner = strings.ToLower(strings.TrimSpace(owner))

	existing, err := r.lookupLocked(owner)
	if err != nil {
		return err
	}
	if existing != "" {
		r.logger.Debug("clan already registered", "owner", owner, "name", existing)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return oops.Code("CLAN_REGISTER_FAILED").With("owner", owner).Wrap(err)
	}
	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return oops.Code("CLAN_REGISTER_FAILED").With("owner", owner).Wrap(err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s:%s\n", owner, name); err != nil {
		return oops.Code("CLAN_REGISTER_FAILED").With("owner", owner).Wrap(err)
	}
	r.logger.Info("registered clan", "owner", owner, "name", name)
	return nil
}

// Lookup returns the clan name registered by owner, or "" when none.
func (r *ClanRegistry) Lookup(owner string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookupLocked(strings.ToLower(strings.TrimSpace(owner)))
}

func (r *ClanRegistry) lookupLocked(owner string) (string, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", oops.Code("CLAN_LOOKUP_FAILED").With("owner", owner).Wrap(err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if name, ok := strings.CutPrefix(line, owner+":"); ok {
			return name, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", oops.Code("CLAN_LOOKUP_FAILED").With("owner", owner).Wrap(err)
	}
	return "", nil
}
