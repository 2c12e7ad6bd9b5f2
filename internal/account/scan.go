// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

package account

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"

	"github.com/ironvale/playerstore/internal/auth"
)

// ScanReport summarizes an integrity sweep over the auth directory.
type ScanReport struct {
	Checked      int
	Repaired     int
	Corrupt      int
	Inconsistent int

	// CorruptUsers and InconsistentUsers name the accounts needing
	// operator attention.
	CorruptUsers      []string
	InconsistentUsers []string
}

// ScanAuthRecords walks the auth directory and reads every record through
// the validated read path. Single-generation corruption is repaired from
// backup as a side effect of the read; records with no good copy are
// reported. Accounts whose auth record lacks a player save are reported as
// inconsistent, not repaired.
func (s *Service) ScanAuthRecords(ctx context.Context) (*ScanReport, error) {
	report := &ScanReport{}
	authDir := s.paths.AuthDir()

	err := filepath.WalkDir(authDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".auth") {
			return nil
		}
		username := strings.TrimSuffix(d.Name(), ".auth")
		report.Checked++

		// Peek at the raw main file first so repairs can be counted.
		raw, rawErr := os.ReadFile(path)
		mainValid := rawErr == nil && auth.Validate(raw) == nil

		if _, readErr := s.files.ReadValidated(ctx, path, auth.Validate); readErr != nil {
			report.Corrupt++
			report.CorruptUsers = append(report.CorruptUsers, username)
			s.logger.Error("auth record unrecoverable", "username", username, "error", readErr)
			return nil
		}
		if !mainValid {
			report.Repaired++
			s.logger.Info("auth record repaired from backup", "username", username)
		}

		if !s.PlayerExists(username) {
			report.Inconsistent++
			report.InconsistentUsers = append(report.InconsistentUsers, username)
			s.logger.Warn("auth record has no player save", "username", username)
		}
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, oops.Code("ACCOUNT_SCAN_FAILED").
			With("dir", authDir).
			Wrap(err)
	}

	s.logger.Info("auth integrity scan complete",
		"checked", report.Checked,
		"repaired", report.Repaired,
		"corrupt", report.Corrupt,
		"inconsistent", report.Inconsistent,
	)
	return report, nil
}
