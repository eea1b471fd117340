package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urbanluxe/urbanluxe/internal/models"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := New("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *SQLStore, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed-password",
	}
	require.NoError(t, s.CreateUser(user))
	require.NotZero(t, user.ID)
	return user
}
