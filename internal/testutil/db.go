package testutil

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3" // Blank import for sql driver
	"golang.org/x/crypto/bcrypt"

	"github.com/vrsandeep/homebase/internal/assets"
	"github.com/vrsandeep/homebase/internal/auth"
	"github.com/vrsandeep/homebase/internal/db"
)

// SetupTestDB creates an in-memory SQLite database and applies all migrations.
// It returns the database connection, ready for use in tests.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Password hashing dominates test time at the production cost.
	auth.Cost = bcrypt.MinCost

	database, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	// Every connection to :memory: is a separate database.
	database.SetMaxOpenConns(1)

	t.Cleanup(func() {
		database.Close()
	})

	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}
	return database
}
