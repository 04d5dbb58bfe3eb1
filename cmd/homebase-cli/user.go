package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vrsandeep/homebase/internal/auth"
	"github.com/vrsandeep/homebase/internal/models"
)

func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var role, password string
	createCmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user; the password is generated when not given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != models.RoleAdmin && role != models.RoleUser {
				return fmt.Errorf("role must be %q or %q", models.RoleAdmin, models.RoleUser)
			}
			pw, generated, err := passwordOrGenerated(password)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(pw)
			if err != nil {
				return err
			}
			user, err := st.CreateUser(args[0], hash, role)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %q (role %s, id %d)\n", user.Username, user.Role, user.ID)
			if generated {
				fmt.Fprintf(cmd.OutOrStdout(), "Password: %s\n", pw)
			}
			return nil
		},
	}
	createCmd.Flags().StringVar(&role, "role", models.RoleUser, "Role: admin or user")
	createCmd.Flags().StringVar(&password, "password", "", "Password (generated when empty)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := st.ListUsers()
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"ID", "Username", "Role", "Created"})
			for _, u := range users {
				t.AppendRow(table.Row{u.ID, u.Username, u.Role, u.CreatedAt.Format("2006-01-02")})
			}
			t.AppendFooter(table.Row{"", "", "Total", len(users)})
			t.Render()
			return nil
		},
	}

	var newPassword string
	passwdCmd := &cobra.Command{
		Use:   "passwd <username>",
		Short: "Set a user's password; a new one is generated when not given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := st.GetUserByUsername(args[0])
			if err != nil {
				return fmt.Errorf("user %q: %w", args[0], err)
			}
			pw, generated, err := passwordOrGenerated(newPassword)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(pw)
			if err != nil {
				return err
			}
			if err := st.UpdateUserPassword(user.ID, hash); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %q\n", user.Username)
			if generated {
				fmt.Fprintf(cmd.OutOrStdout(), "Password: %s\n", pw)
			}
			return nil
		},
	}
	passwdCmd.Flags().StringVar(&newPassword, "password", "", "New password (generated when empty)")

	userCmd.AddCommand(createCmd, listCmd, passwdCmd)
	return userCmd
}

func passwordOrGenerated(given string) (string, bool, error) {
	if given != "" {
		return given, false, nil
	}
	pw, err := auth.GeneratePassword(16)
	if err != nil {
		return "", false, fmt.Errorf("generate password: %w", err)
	}
	return pw, true, nil
}
