package store

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/vrsandeep/homebase/internal/models"
)

// SessionTTL is how long a login stays valid.
const SessionTTL = 7 * 24 * time.Hour

const userColumns = "id, username, password_hash, role, created_at"

// ListUsers retrieves all users from the database, ordered by username.
func (s *Store) ListUsers() ([]*models.User, error) {
	users := []*models.User{}
	err := s.db.Select(&users, "SELECT "+userColumns+" FROM users ORDER BY username ASC")
	return users, err
}

// CreateUser adds a new user to the database.
func (s *Store) CreateUser(username, passwordHash, role string) (*models.User, error) {
	now := time.Now().UTC()
	query := "INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)"
	res, err := s.db.Exec(query, username, passwordHash, role, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	id, _ := res.LastInsertId()
	return &models.User{
		ID:        id,
		Username:  username,
		Role:      role,
		CreatedAt: now,
	}, nil
}

// UpdateUser updates a user's username and role.
func (s *Store) UpdateUser(id int64, username, role string) error {
	query := "UPDATE users SET username = ?, role = ? WHERE id = ?"
	err := requireAffected(s.db.Exec(query, username, role, id))
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

// UpdateUserPassword updates only the user's password hash.
func (s *Store) UpdateUserPassword(id int64, passwordHash string) error {
	query := "UPDATE users SET password_hash = ? WHERE id = ?"
	return requireAffected(s.db.Exec(query, passwordHash, id))
}

// DeleteUser removes a user. Cascading deletes remove everything they own.
func (s *Store) DeleteUser(id int64) error {
	return requireAffected(s.db.Exec("DELETE FROM users WHERE id = ?", id))
}

// GetUserByUsername retrieves a user by their unique username.
func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Get(&user, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by their primary key.
func (s *Store) GetUserByID(id int64) (*models.User, error) {
	var user models.User
	err := s.db.Get(&user, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// ErrSessionExpired is returned for a token whose expiry has passed.
var ErrSessionExpired = errors.New("session expired")

// GetUserFromSession retrieves a user based on a session token.
func (s *Store) GetUserFromSession(token string) (*models.User, error) {
	var session struct {
		UserID int64     `db:"user_id"`
		Expiry time.Time `db:"expiry"`
	}
	err := s.db.Get(&session, "SELECT user_id, expiry FROM sessions WHERE token = ?", token)
	if err != nil {
		return nil, notFound(err)
	}

	if time.Now().After(session.Expiry) {
		s.DeleteSession(token) // Clean up expired session
		return nil, ErrSessionExpired
	}

	return s.GetUserByID(session.UserID)
}

// CountUsers returns the total number of users in the database.
func (s *Store) CountUsers() (int, error) {
	var count int
	err := s.db.Get(&count, "SELECT COUNT(*) FROM users")
	return count, err
}

// CreateSession creates a new session for a user and returns the session token.
func (s *Store) CreateSession(userID int64) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)
	expiry := time.Now().UTC().Add(SessionTTL)
	_, err := s.db.Exec("INSERT INTO sessions (token, user_id, expiry) VALUES (?, ?, ?)", token, userID, expiry)
	return token, err
}

// DeleteSession removes a session from the database (used for logout).
func (s *Store) DeleteSession(token string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE token = ?", token)
	return err
}

// PruneExpiredSessions deletes every session that expired before now and
// reports how many were removed.
func (s *Store) PruneExpiredSessions(now time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM sessions WHERE expiry < ?", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
