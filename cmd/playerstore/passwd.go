// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ironvale Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewPasswdCmd creates the passwd subcommand.
func NewPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <username> <old-password> <new-password>",
		Short: "Change a player's password",
		Long: `Re-authenticate with the old password and replace the credential
with a freshly salted hash. Identity and rights are preserved.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := serviceForCmd(cmd)
			if err != nil {
				return err
			}
			if err := svc.ChangePassword(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			cmd.Printf("Password changed for %s\n", args[0])
			return nil
		},
	}
}

// NewDeleteCmd creates the delete subcommand.
func NewDeleteCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a player's save and auth record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				cmd.Println("Refusing to delete without --yes")
				return nil
			}
			svc, err := serviceForCmd(cmd)
			if err != nil {
				return err
			}
			if err := svc.DeletePlayer(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmd.Printf("Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm deletion")
	return cmd
}
