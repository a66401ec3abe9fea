package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/openlearn/openlearn-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleRegister(t *testing.T) {
	t.Run("creates a student account", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"email":    "new@example.com",
			"password": "hunter2secret",
			"name":     "New User",
			"role":     "student",
		})

		require.Equal(t, http.StatusCreated, rec.Code)

		var user UserResponse
		decodeData(t, rec, &user)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, models.RoleStudent, user.Role)
		assert.NotContains(t, rec.Body.String(), "hunter2secret")
		assert.NotContains(t, rec.Body.String(), "password_hash")
	})

	t.Run("admin role cannot be chosen", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"email":    "boss@example.com",
			"password": "hunter2secret",
			"name":     "Boss",
			"role":     "admin",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		s := newTestServer(t)
		s.seedUser(t, "taken@example.com", models.RoleStudent)

		rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"email":    "taken@example.com",
			"password": "hunter2secret",
			"name":     "Other",
			"role":     "student",
		})

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("short password is rejected", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"email":    "new@example.com",
			"password": "short",
			"name":     "New User",
			"role":     "student",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleLogin(t *testing.T) {
	t.Run("returns token and sets cookie", func(t *testing.T) {
		s := newTestServer(t)
		s.seedUser(t, "user@example.com", models.RoleStudent)

		rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "user@example.com",
			"password": "hunter2secret",
		})

		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		decodeData(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "user@example.com", resp.User.Email)

		cookie := rec.Header().Get("Set-Cookie")
		assert.True(t, strings.HasPrefix(cookie, "auth_token="))
		assert.Contains(t, cookie, "HttpOnly")
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		s := newTestServer(t)
		s.seedUser(t, "user@example.com", models.RoleStudent)

		rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "user@example.com",
			"password": "wrong-password",
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email looks like wrong password", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "ghost@example.com",
			"password": "whatever123",
		})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleMe(t *testing.T) {
	t.Run("returns the authenticated account", func(t *testing.T) {
		s := newTestServer(t)
		user, token := s.seedUser(t, "me@example.com", models.RoleAuthor)

		rec := s.do(t, http.MethodGet, "/api/v1/me", token, nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp UserResponse
		decodeData(t, rec, &resp)
		assert.Equal(t, user.ID, resp.ID)
		assert.Equal(t, models.RoleAuthor, resp.Role)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		s := newTestServer(t)

		rec := s.do(t, http.MethodGet, "/api/v1/me", "", nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
