package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	s, app := newTestServer(t)
	registerUser(t, s, "chef")

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           map[string]string{"email": "chef@example.com", "password": "Password123"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "CaseInsensitiveEmail",
			body:           map[string]string{"email": "CHEF@example.com", "password": "Password123"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "WrongPassword",
			body:           map[string]string{"email": "chef@example.com", "password": "nope"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "UnknownEmail",
			body:           map[string]string{"email": "ghost@example.com", "password": "Password123"},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := testRequest(t, app, http.MethodPost, "/api/auth/token/login", "", tt.body)
			assert.Equal(t, tt.expectedStatus, status)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]string
				decodeJSON(t, payload, &body)
				assert.NotEmpty(t, body["auth_token"])
			}
		})
	}
}

func TestLoginTokenIsUsable(t *testing.T) {
	s, app := newTestServer(t)
	user, _ := registerUser(t, s, "chef")

	status, payload := testRequest(t, app, http.MethodPost, "/api/auth/token/login", "",
		map[string]string{"email": "chef@example.com", "password": "Password123"})
	require.Equal(t, http.StatusOK, status)

	var body map[string]string
	decodeJSON(t, payload, &body)

	status, payload = testRequest(t, app, http.MethodGet, "/api/users/me", body["auth_token"], nil)
	require.Equal(t, http.StatusOK, status)

	var me UserResponse
	decodeJSON(t, payload, &me)
	assert.Equal(t, user.ID, me.ID)
}

func TestLogout(t *testing.T) {
	s, app := newTestServer(t)
	_, token := registerUser(t, s, "chef")

	status, _ := testRequest(t, app, http.MethodPost, "/api/auth/token/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = testRequest(t, app, http.MethodPost, "/api/auth/token/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
