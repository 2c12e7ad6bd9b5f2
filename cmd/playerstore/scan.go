// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironvale/playerstore/internal/account"
	"github.com/ironvale/playerstore/internal/config"
	"github.com/ironvale/playerstore/internal/logging"
	"github.com/ironvale/playerstore/internal/observability"
	"github.com/ironvale/playerstore/internal/store"
)

// NewScanCmd creates the scan subcommand.
func NewScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run an integrity sweep over all auth records",
		Long: `Read every auth record through the validated read path. Records
whose main copy is corrupt are repaired from backup where possible;
unrecoverable records and accounts missing a player save are reported.`,
		RunE: runScan,
	}
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var (
		server       *observability.Server
		storeMetrics *store.Metrics
	)
	if cfg.Observability.Enabled {
		server = observability.NewServer(cfg.Observability.Addr, func() bool { return true })
		storeMetrics = store.NewMetrics(server.Registry())
		if _, err := server.Start(); err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(ctx)
		}()
		cmd.Printf("Metrics available at http://%s/metrics\n", server.Addr())
	}

	svc, _, err := buildServiceWithMetrics(cfg, storeMetrics, server)
	if err != nil {
		return err
	}

	report, err := svc.ScanAuthRecords(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Checked:      %d\n", report.Checked)
	cmd.Printf("Repaired:     %d\n", report.Repaired)
	cmd.Printf("Corrupt:      %d\n", report.Corrupt)
	cmd.Printf("Inconsistent: %d\n", report.Inconsistent)
	if len(report.CorruptUsers) > 0 {
		cmd.Printf("Corrupt accounts: %s\n", strings.Join(report.CorruptUsers, ", "))
	}
	if len(report.InconsistentUsers) > 0 {
		cmd.Printf("Inconsistent accounts: %s\n", strings.Join(report.InconsistentUsers, ", "))
	}
	return nil
}

// buildServiceWithMetrics is buildService with store and account metrics
// attached when an observability server is running.
func buildServiceWithMetrics(cfg *config.Config, storeMetrics *store.Metrics, server *observability.Server) (*account.Service, *slog.Logger, error) {
	logger := logging.Setup("playerstore", version, cfg.Logging.Format, cfg.Logging.Level, nil)

	var accountMetrics *observability.Metrics
	if server != nil {
		accountMetrics = server.Metrics()
	}

	svc, err := account.NewService(account.Config{
		Paths:   store.NewPaths(cfg.DataDir),
		Files:   store.New(logger, storeMetrics),
		NewSave: rawSaveFactory,
		Logger:  logger,
		Metrics: accountMetrics,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := svc.Init(); err != nil {
		return nil, nil, err
	}
	return svc, logger, nil
}
