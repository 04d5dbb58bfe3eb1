package main

import (
	"github.com/spf13/cobra"

	"github.com/vrsandeep/homebase/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve a user's articles, notes and podcasts to AI clients over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := lookupUser(username)
			if err != nil {
				return err
			}
			app.Logger().Info("Starting MCP server")
			return mcp.NewServer(st, userID, version).Start()
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "Username whose data is served (required)")
	cmd.MarkFlagRequired("user")
	return cmd
}
