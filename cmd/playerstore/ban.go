// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// NewBanCmd creates the ban subcommand.
func NewBanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ban",
		Short: "Ban a username or IP address",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "user <username>",
		Short: "Ban a username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceForCmd(cmd)
			if err != nil {
				return err
			}
			if err := svc.BanUser(args[0]); err != nil {
				return err
			}
			cmd.Printf("Banned user %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ip <address>",
		Short: "Ban an IP address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceForCmd(cmd)
			if err != nil {
				return err
			}
			if err := svc.BanIP(args[0]); err != nil {
				return err
			}
			cmd.Printf("Banned IP %s\n", args[0])
			return nil
		},
	})

	return cmd
}

// NewUnbanCmd creates the unban subcommand.
func NewUnbanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unban",
		Short: "Lift a username or IP ban",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "user <username>",
		Short: "Unban a username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceForCmd(cmd)
			if err != nil {
				return err
			}
			if !svc.IsBanned(args[0]) {
				return oops.Code("BAN_NOT_FOUND").
					With("username", args[0]).
					Errorf("user is not banned")
			}
			if err := svc.UnbanUser(args[0]); err != nil {
				return err
			}
			cmd.Printf("Unbanned user %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "ip <address>",
		Short: "Unban an IP address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceForCmd(cmd)
			if err != nil {
				return err
			}
			if !svc.IsIPBanned(args[0]) {
				return oops.Code("BAN_NOT_FOUND").
					With("ip", args[0]).
					Errorf("address is not banned")
			}
			if err := svc.UnbanIP(args[0]); err != nil {
				return err
			}
			cmd.Printf("Unbanned IP %s\n", args[0])
			return nil
		},
	})

	return cmd
}
