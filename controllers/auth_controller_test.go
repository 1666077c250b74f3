package controllers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.request(t, "POST", "/api/auth/register", "", map[string]interface{}{
		"username": "duo",
		"email":    "duo@example.com",
		"password": "hunter2",
	})
	require.Equal(t, 200, status)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "duo", user["username"])

	status, body = e.request(t, "POST", "/api/auth/login", "", map[string]interface{}{
		"username": "duo",
		"password": "hunter2",
	})
	assert.Equal(t, 200, status)
	assert.NotEmpty(t, body["token"])

	// The token works against a protected route.
	token := "Bearer " + body["token"].(string)
	status, _ = e.request(t, "GET", "/api/courses", token, nil)
	assert.Equal(t, 200, status)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	e := newTestEnv(t)

	status, _ := e.request(t, "POST", "/api/auth/register", "", map[string]interface{}{
		"username": "duo",
	})

	assert.Equal(t, 400, status)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	e := newTestEnv(t)

	payload := map[string]interface{}{
		"username": "duo",
		"email":    "duo@example.com",
		"password": "hunter2",
	}
	status, _ := e.request(t, "POST", "/api/auth/register", "", payload)
	require.Equal(t, 200, status)

	status, _ = e.request(t, "POST", "/api/auth/register", "", payload)
	assert.Equal(t, 409, status)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	e := newTestEnv(t)

	status, _ := e.request(t, "POST", "/api/auth/register", "", map[string]interface{}{
		"username": "duo",
		"email":    "duo@example.com",
		"password": "hunter2",
	})
	require.Equal(t, 200, status)

	status, _ = e.request(t, "POST", "/api/auth/login", "", map[string]interface{}{
		"username": "duo",
		"password": "wrong",
	})
	assert.Equal(t, 401, status)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	e := newTestEnv(t)

	status, _ := e.request(t, "GET", "/api/courses", "", nil)

	assert.Equal(t, 401, status)
}

func TestProtectedRoutesRejectGarbageToken(t *testing.T) {
	e := newTestEnv(t)

	status, _ := e.request(t, "GET", "/api/courses", "Bearer not-a-token", nil)

	assert.Equal(t, 401, status)
}
