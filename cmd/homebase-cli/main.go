// Command homebase-cli administers a homebase database from the shell:
// users, podcast feeds, exports and an MCP server for AI clients.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vrsandeep/homebase/internal/assets"
	"github.com/vrsandeep/homebase/internal/config"
	"github.com/vrsandeep/homebase/internal/core"
	"github.com/vrsandeep/homebase/internal/db"
	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/store"
)

var version = "dev"

var (
	dbPath string
	app    *core.App
	st     *store.Store
)

// openApp loads the configuration and opens the database. Logs go to
// stderr so stdout stays free for command output and the MCP transport.
func openApp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, OutputPaths: []string{"stderr"}})
	if err != nil {
		return err
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		database.Close()
		return fmt.Errorf("run migrations: %w", err)
	}

	app = core.NewWith(cfg, database, log, version)
	st = store.New(database)
	return nil
}

func closeApp(cmd *cobra.Command, args []string) {
	if app != nil {
		app.Close()
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "homebase-cli",
		Short:             "Administer a homebase database",
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: openApp,
		PersistentPostRun: closeApp,
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database (default from config)")

	rootCmd.AddCommand(newUserCmd(), newFeedsCmd(), newExportCmd(), newMCPCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// lookupUser resolves a --user flag value.
func lookupUser(username string) (int64, error) {
	if username == "" {
		return 0, fmt.Errorf("--user is required")
	}
	user, err := st.GetUserByUsername(username)
	if err != nil {
		return 0, fmt.Errorf("user %q: %w", username, err)
	}
	return user.ID, nil
}
