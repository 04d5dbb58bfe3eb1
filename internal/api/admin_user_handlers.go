package api

import (
	"net/http"
	"strings"

	"github.com/vrsandeep/homebase/internal/auth"
	"github.com/vrsandeep/homebase/internal/logger"
	"github.com/vrsandeep/homebase/internal/models"
)

func validRole(role string) bool {
	return role == models.RoleAdmin || role == models.RoleUser
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers()
	if err != nil {
		s.respondStoreError(w, err, "Users")
		return
	}
	RespondWithJSON(w, http.StatusOK, users)
}

func (s *Server) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Username == "" || payload.Password == "" || !validRole(payload.Role) {
		RespondWithError(w, http.StatusBadRequest, "Username, password, and a valid role are required")
		return
	}

	passwordHash, err := auth.HashPassword(payload.Password)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user, err := s.store.CreateUser(payload.Username, passwordHash, payload.Role)
	if err != nil {
		s.respondStoreError(w, err, "User")
		return
	}
	s.log.Info("Created user", logger.String("username", user.Username), logger.String("role", user.Role))
	RespondWithJSON(w, http.StatusCreated, user)
}

func (s *Server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlParamID(r, "userID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	var payload struct {
		Username string `json:"username"`
		Role     string `json:"role"`
		Password string `json:"password,omitempty"` // Password is optional
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Username == "" || !validRole(payload.Role) {
		RespondWithError(w, http.StatusBadRequest, "Username and a valid role are required")
		return
	}

	// An admin cannot demote themselves and lock everyone out.
	if current := getUserFromContext(r); current.ID == userID && payload.Role != models.RoleAdmin {
		RespondWithError(w, http.StatusBadRequest, "Cannot remove your own admin role")
		return
	}

	if err := s.store.UpdateUser(userID, payload.Username, payload.Role); err != nil {
		s.respondStoreError(w, err, "User")
		return
	}

	if payload.Password != "" {
		passwordHash, err := auth.HashPassword(payload.Password)
		if err != nil {
			RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		if err := s.store.UpdateUserPassword(userID, passwordHash); err != nil {
			s.respondStoreError(w, err, "User")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlParamID(r, "userID")
	if !ok {
		RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	currentUser := getUserFromContext(r)
	if currentUser.ID == userID {
		RespondWithError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := s.store.DeleteUser(userID); err != nil {
		s.respondStoreError(w, err, "User")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
