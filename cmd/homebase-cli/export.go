package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vrsandeep/homebase/internal/export"
)

func newExportCmd() *cobra.Command {
	var username, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a user's notes, articles and links to a zip of markdown files",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := lookupUser(username)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("homebase-%s-%s.zip", username, time.Now().UTC().Format("20060102"))
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			sum, err := export.Write(context.Background(), st, userID, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(out)
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d notes, %d articles, %d links\n", out, sum.Notes, sum.Articles, sum.Links)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "Username (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default homebase-<user>-<date>.zip)")
	cmd.MarkFlagRequired("user")
	return cmd
}
