package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/jobs"
)

func newFeedsCmd() *cobra.Command {
	feedsCmd := &cobra.Command{
		Use:   "feeds",
		Short: "Inspect and refresh podcast subscriptions",
	}

	var username string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's podcast subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := lookupUser(username)
			if err != nil {
				return err
			}
			feeds, err := st.ListFeeds(userID)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"ID", "Title", "Episodes", "Unplayed", "Last refreshed"})
			for _, f := range feeds {
				refreshed := "never"
				if f.LastRefreshedAt != nil {
					refreshed = f.LastRefreshedAt.Local().Format("2006-01-02 15:04")
				}
				t.AppendRow(table.Row{f.ID, f.Title, f.EpisodeCount, f.UnplayedCount, refreshed})
			}
			t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 60}})
			t.Render()
			return nil
		},
	}
	listCmd.Flags().StringVar(&username, "user", "", "Username (required)")
	listCmd.MarkFlagRequired("user")

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch new episodes for every subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Same task the scheduler runs; progress is printed from the job events.
			sub := app.Bus().Subscribe(events.JobProgress)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for e := range sub.C {
					if u, ok := e.Payload.(jobs.ProgressUpdate); ok && u.JobID == jobs.PodcastRefreshJob {
						fmt.Fprintf(cmd.ErrOrStderr(), "\r%s", u.Message)
					}
				}
			}()

			err := jobs.RunPodcastRefresh(app)
			app.Bus().Unsubscribe(sub)
			<-done
			fmt.Fprintln(cmd.ErrOrStderr())
			return err
		},
	}

	feedsCmd.AddCommand(listCmd, refreshCmd)
	return feedsCmd
}
