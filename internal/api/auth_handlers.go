package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vrsandeep/homebase/internal/auth"
	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/store"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := s.store.GetUserByUsername(payload.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.log.Error("Login lookup failed", logger.String("username", payload.Username), logger.Error(err))
	}
	if err != nil {
		RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if !auth.CheckPasswordHash(payload.Password, user.PasswordHash) {
		RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(payload.Password); err == nil {
			if err := s.store.UpdateUserPassword(user.ID, hash); err != nil {
				s.log.Warn("Failed to upgrade password hash", logger.Int64("user_id", user.ID), logger.Error(err))
			}
		}
	}

	token, err := s.store.CreateSession(user.ID)
	if err != nil {
		s.log.Error("Failed to create session", logger.Int64("user_id", user.ID), logger.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    token,
		Expires:  time.Now().Add(store.SessionTTL),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil, // Set secure flag if using HTTPS
		SameSite: http.SameSiteLaxMode,
	})

	s.log.Info("User logged in", logger.String("username", user.Username))
	RespondWithJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("session_token")
	if err == nil {
		s.store.DeleteSession(cookie.Value)
	}

	// Expire the cookie on the client side
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil, // Set secure flag if using HTTPS
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		RespondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	RespondWithJSON(w, http.StatusOK, user)
}
