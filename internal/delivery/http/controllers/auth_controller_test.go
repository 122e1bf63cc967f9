package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examscheduler/internal/delivery/http/helpers"
	"examscheduler/internal/domain"
)

func TestLoginHandler(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		svc := &fakeAuthService{
			token: "signed-token",
			user:  &domain.User{ID: "usr-1", Email: "admin@example.edu", Name: "Admin", IsAdmin: true},
		}
		ctrl := NewAuthController(testLogger(), svc)
		body := `{"email": "admin@example.edu", "password": "correct-horse"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ctrl.Login(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp LoginResponse
		apiErr := decodeEnvelope(t, rr, &resp)
		require.Nil(t, apiErr)
		assert.Equal(t, "signed-token", resp.Token)
		assert.Equal(t, "Bearer", resp.TokenType)
		require.NotNil(t, resp.User)
		assert.Equal(t, "usr-1", resp.User.ID)
		assert.Equal(t, "admin@example.edu", svc.email)
		assert.Equal(t, "correct-horse", svc.password)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := &fakeAuthService{err: domain.ErrInvalidCredentials}
		ctrl := NewAuthController(testLogger(), svc)
		body := `{"email": "admin@example.edu", "password": "nope"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ctrl.Login(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		apiErr := decodeEnvelope(t, rr, nil)
		require.NotNil(t, apiErr)
		assert.Equal(t, helpers.ErrCodeUnauthorized, apiErr.Code)
		assert.Equal(t, "invalid credentials", apiErr.Message)
	})

	t.Run("missing fields", func(t *testing.T) {
		ctrl := NewAuthController(testLogger(), &fakeAuthService{})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email": "", "password": ""}`))
		rr := httptest.NewRecorder()

		ctrl.Login(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("signer failure is a 500 not a 401", func(t *testing.T) {
		svc := &fakeAuthService{err: errors.New("failed to sign token")}
		ctrl := NewAuthController(testLogger(), svc)
		body := `{"email": "admin@example.edu", "password": "correct-horse"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ctrl.Login(rr, req)

		require.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
