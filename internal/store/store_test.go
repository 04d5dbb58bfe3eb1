package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vrsandeep/homebase/internal/models"
	"github.com/vrsandeep/homebase/internal/store"
	"github.com/vrsandeep/homebase/internal/testutil"
)

// newStoreWithUsers returns a store over a fresh database holding two users.
func newStoreWithUsers(t *testing.T) (*store.Store, *models.User, *models.User) {
	t.Helper()
	s := store.New(testutil.SetupTestDB(t))
	alice, err := s.CreateUser("alice", "hash", models.RoleUser)
	require.NoError(t, err)
	bob, err := s.CreateUser("bob", "hash", models.RoleUser)
	require.NoError(t, err)
	return s, alice, bob
}

func boolPtr(b bool) *bool { return &b }
