package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vrsandeep/homebase/internal/api"
	"github.com/vrsandeep/homebase/internal/auth"
)

// GetAuthCookie creates a user, logs them in, and returns a valid session cookie.
func GetAuthCookie(t *testing.T, s *api.Server, username, password, role string) *http.Cookie {
	t.Helper()

	// Hash first; the store keeps only the hash.
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password for test user: %v", err)
	}
	_, err = s.Store().CreateUser(username, passwordHash, role)
	if err != nil {
		t.Fatalf("Failed to create test user '%s': %v", username, err)
	}

	loginPayload := map[string]string{"username": username, "password": password}
	payloadBytes, _ := json.Marshal(loginPayload)
	req, _ := http.NewRequest("POST", "/api/users/login", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Fatalf("Login failed within test helper for user '%s': got status %d, want 200", username, status)
	}

	cookies := rr.Result().Cookies()
	for _, cookie := range cookies {
		if cookie.Name == "session_token" {
			return cookie
		}
	}

	t.Fatal("Failed to get session cookie after successful login for test user")
	return nil
}

// UserID looks up the id of a user created by GetAuthCookie.
func UserID(t *testing.T, s *api.Server, username string) int64 {
	t.Helper()
	user, err := s.Store().GetUserByUsername(username)
	if err != nil {
		t.Fatalf("Failed to look up test user '%s': %v", username, err)
	}
	return user.ID
}

// CookieForUser is GetAuthCookie that also deletes the user when the test ends.
func CookieForUser(t *testing.T, server *api.Server, username, password, role string) *http.Cookie {
	t.Helper()
	cookie := GetAuthCookie(t, server, username, password, role)
	if cookie == nil {
		t.Fatal("Failed to get session cookie after successful login for test user")
	}
	t.Cleanup(func() {
		if user, err := server.Store().GetUserByUsername(username); err == nil {
			server.Store().DeleteUser(user.ID)
		}
	})
	return cookie
}
