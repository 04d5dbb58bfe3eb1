package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vrsandeep/homebase/internal/api"
	"github.com/vrsandeep/homebase/internal/auth"
	"github.com/vrsandeep/homebase/internal/core"
	"github.com/vrsandeep/homebase/internal/inbox"
	"github.com/vrsandeep/homebase/internal/jobs"
	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/models"
	"github.com/vrsandeep/homebase/internal/store"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Initialize the core application components
	app, err := core.New(version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error during application setup: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()
	log := app.Logger()

	// --- First User Provisioning ---
	if err := ensureAdmin(store.New(app.DB()), log); err != nil {
		log.Fatal("Could not provision the admin account", logger.Error(err))
	}

	scheduler := jobs.StartJobs(app)
	defer scheduler.Stop()

	if app.Config().Inbox.Path != "" {
		watcher := inbox.NewWatcherService(app)
		if err := watcher.Start(); err != nil {
			log.Warn("Inbox watcher disabled", logger.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	// Setup the API server
	server := api.NewServer(app)
	defer server.Close()
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Config().Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Graceful Shutdown ---
	go func() {
		log.Info("Starting web server", logger.String("addr", httpServer.Addr), logger.String("version", version))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Could not start server", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give open requests a moment to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
	log.Info("Server exiting.")
}

// ensureAdmin creates an "admin" account on an empty database. The password
// comes from HOMEBASE_ADMIN_PASSWORD or is generated and logged once.
func ensureAdmin(st *store.Store, log logger.Logger) error {
	count, err := st.CountUsers()
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("HOMEBASE_ADMIN_PASSWORD")
	generated := password == ""
	if generated {
		if password, err = auth.GeneratePassword(16); err != nil {
			return err
		}
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := st.CreateUser("admin", hash, models.RoleAdmin); err != nil {
		return err
	}

	if generated {
		log.Warn("No users found; created the default admin account. Change this password after logging in.",
			logger.String("username", "admin"),
			logger.String("password", password))
	} else {
		log.Info("No users found; created the default admin account from HOMEBASE_ADMIN_PASSWORD.")
	}
	return nil
}
