// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

package main

import (
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/ironvale/playerstore/internal/account"
	"github.com/ironvale/playerstore/internal/auth"
)

// serviceForCmd builds an initialized service from the command's
// configuration.
func serviceForCmd(cmd *cobra.Command) (*account.Service, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	svc, _, err := buildService(cfg)
	return svc, err
}

func parseRights(s string) (auth.Rights, error) {
	switch strings.ToLower(s) {
	case "player":
		return auth.RightsPlayer, nil
	case "mod", "moderator":
		return auth.RightsModerator, nil
	case "admin":
		return auth.RightsAdmin, nil
	case "owner":
		return auth.RightsOwner, nil
	default:
		return 0, oops.Code("RIGHTS_UNKNOWN").
			With("input", s).
			Errorf("unknown rights level, want player, moderator, admin, or owner")
	}
}

// NewRightsCmd creates the rights subcommand.
func NewRightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rights <username> <level>",
		Short: "Set a player's rights level",
		Long:  `Rewrite the player's auth record with a new rights level. Credentials are preserved.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rights, err := parseRights(args[1])
			if err != nil {
				return err
			}
			svc, err := serviceForCmd(cmd)
			if err != nil {
				return err
			}
			if err := svc.UpdateRights(cmd.Context(), args[0], rights); err != nil {
				return err
			}
			cmd.Printf("Set %s to %s\n", args[0], rights)
			return nil
		},
	}
}

// NewWhoisCmd creates the whois subcommand.
func NewWhoisCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whois <username>",
		Short: "Show a player's identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceForCmd(cmd)
			if err != nil {
				return err
			}
			id, err := svc.GetIdentity(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Printf("Username: %s\n", id.Username)
			cmd.Printf("User ID:  %d\n", id.UserID)
			cmd.Printf("Rights:   %s\n", id.Rights)
			cmd.Printf("Banned:   %v\n", svc.IsBanned(args[0]))
			return nil
		},
	}
}
