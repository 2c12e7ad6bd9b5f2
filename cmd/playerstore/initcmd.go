// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

package main

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/ironvale/playerstore/internal/config"
)

// NewInitCmd creates the init subcommand.
func NewInitCmd() *cobra.Command {
	var writeConfig bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory tree",
		Long: `Create the shard tree, registries, and auth directory under the
configured data root. Safe to run repeatedly.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if writeConfig {
				path := configFile
				if path == "" {
					path = config.DefaultPath()
				}
				switch err := config.WriteDefault(path); {
				case err == nil:
					cmd.Printf("Wrote default config to %s\n", path)
				case errors.Is(err, fs.ErrExist):
					cmd.Printf("Config already exists at %s\n", path)
				default:
					return err
				}
			}

			if _, _, err := buildService(cfg); err != nil {
				return err
			}

			cmd.Printf("Initialized data directory at %s\n", cfg.DataDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&writeConfig, "write-config", false, "also write a default config file")
	return cmd
}
