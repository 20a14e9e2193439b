package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPasswordAndMatch(t *testing.T) {
	user := &User{}

	require.NoError(t, user.SetPassword("correct horse battery"))
	assert.NotEqual(t, []byte("correct horse battery"), user.Password)

	match, err := user.IsPasswordMatch("correct horse battery")
	require.NoError(t, err)
	assert.True(t, match)

	match, err = user.IsPasswordMatch("wrong password")
	require.NoError(t, err)
	assert.False(t, match)
}

func TestGenerateAndAuthenticateToken(t *testing.T) {
	user := &User{
		Username: "alice",
		Email:    "alice@example.com",
	}

	token, err := user.GenerateToken(time.Hour, "test-secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	a := New()
	claim, err := a.Authenticate(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", claim.Username)
	assert.Equal(t, "alice@example.com", claim.Email)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	user := &User{Username: "alice", Email: "alice@example.com"}

	token, err := user.GenerateToken(time.Hour, "test-secret")
	require.NoError(t, err)

	a := New()
	_, err = a.Authenticate(token, "another-secret")
	assert.Error(t, err)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	user := &User{Username: "alice", Email: "alice@example.com"}

	token, err := user.GenerateToken(-time.Minute, "test-secret")
	require.NoError(t, err)

	a := New()
	_, err = a.Authenticate(token, "test-secret")
	assert.Error(t, err)
}

func TestRequestUserRoundTrip(t *testing.T) {
	a := New()
	r := httptest.NewRequest("GET", "/", nil)

	_, err := a.GetAuthenticatedUser(r)
	assert.ErrorIs(t, err, NotAuthenticatedUser)
	assert.False(t, a.IsUserAuthenticated(r))

	user := &User{ID: 1, Username: "alice"}
	r = a.SetAuthenticatedUser(r, user)

	got, err := a.GetAuthenticatedUser(r)
	require.NoError(t, err)
	assert.Equal(t, user, got)
	assert.True(t, a.IsUserAuthenticated(r))
}
