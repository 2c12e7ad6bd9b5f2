// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

// Package store provides the durable file store underneath the player
// persistence layer: path resolution, per-path locking, and atomic
// write-with-backup / read-with-recovery primitives.
package store

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
)

// Directory names and file extensions under the data root. The layout is
// part of the external interface; existing data trees depend on it.
const (
	playerdataDir = "playerdata"
	charactersDir = "characters"
	authDir       = "auth"
	bansDir       = "bans"
	clansDir      = "clans"

	playerPrefix = "player_"
	playerExt    = ".dat"
	authExt      = ".auth"

	userIDFile   = "next_userid.txt"
	userBansFile = "banned_users.txt"
	ipBansFile   = "banned_ips.txt"
	clanRegFile  = "clan_registry.txt"
)

// shardChars are the characters a shard directory may be named after.
const shardChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// Paths maps usernames to on-disk locations under a configured data root.
type Paths struct {
	root string
}

// NewPaths creates a Paths rooted at dataDir.
func NewPaths(dataDir string) *Paths {
	return &Paths{root: dataDir}
}

// Root returns the configured data root.
func (p *Paths) Root() string {
	return p.root
}

// Init creates the full directory tree, including the 36x36 shard fan-out
// under characters/. Idempotent.
func (p *Paths) Init() error {
	dirs := []string{
		filepath.Join(p.root, playerdataDir),
		p.AuthDir(),
		filepath.Join(p.root, playerdataDir, charactersDir),
		filepath.Join(p.root, playerdataDir, bansDir),
		filepath.Join(p.root, playerdataDir, clansDir),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return oops.Code("STORE_INIT_FAILED").
				With("dir", dir).
				Wrap(err)
		}
	}

	for _, first := range shardChars {
		for _, second := range shardChars {
			dir := filepath.Join(p.root, playerdataDir, charactersDir, string(first), string(second))
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return oops.Code("STORE_INIT_FAILED").
					With("dir", dir).
					Wrap(err)
			}
		}
	}
	return nil
}

// Normalize lowercases a username and strips everything outside [a-z0-9],
// then pads so at least two shard characters exist. Total over any input.
func Normalize(username string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(username) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	normalized := b.String()
	switch len(normalized) {
	case 0:
		return "00"
	case 1:
		return normalized + "0"
	default:
		return normalized
	}
}

// HashedDir returns the shard directory a username's save file lives in.
// The result always lies within the pre-created 36x36 tree.
func (p *Paths) HashedDir(username string) string {
	normalized := Normalize(username)
	return filepath.Join(
		p.root, playerdataDir, charactersDir,
		string(normalized[0]), string(normalized[1]),
	)
}

// PlayerPath returns the save file path for a username.
func (p *Paths) PlayerPath(username string) string {
	return filepath.Join(p.HashedDir(username), playerPrefix+strings.ToLower(username)+playerExt)
}

// AuthDir returns the flat directory holding auth records.
func (p *Paths) AuthDir() string {
	return filepath.Join(p.root, playerdataDir, authDir)
}

// AuthPath returns the auth record path for a username.
func (p *Paths) AuthPath(username string) string {
	return filepath.Join(p.AuthDir(), strings.ToLower(username)+authExt)
}

// UserIDPath returns the path of the persisted user-id counter.
func (p *Paths) UserIDPath() string {
	return filepath.Join(p.root, playerdataDir, userIDFile)
}

// UserBansPath returns the path of the banned-usernames file.
func (p *Paths) UserBansPath() string {
	return filepath.Join(p.root, playerdataDir, bansDir, userBansFile)
}

// IPBansPath returns the path of the banned-IPs file.
func (p *Paths) IPBansPath() string {
	return filepath.Join(p.root, playerdataDir, bansDir, ipBansFile)
}

// ClanRegistryPath returns the path of the clan registry file.
func (p *Paths) ClanRegistryPath() string {
	return filepath.Join(p.root, playerdataDir, clansDir, clanRegFile)
}
