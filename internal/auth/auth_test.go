package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/models"
)

func signToken(t *testing.T, sub, email string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func staticLoader(cred *models.Credential, err error) CredentialLoader {
	return func() (*models.Credential, error) { return cred, err }
}

func TestCurrentUser_NoCredential(t *testing.T) {
	p := NewStoreProvider(staticLoader(nil, nil))

	user, err := p.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCurrentUser_OpaqueToken(t *testing.T) {
	p := NewStoreProvider(staticLoader(&models.Credential{UserID: "u-7", Token: "opaque"}, nil))

	user, err := p.CurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u-7", user.ID)
	assert.Equal(t, "opaque", user.Token)
	assert.Nil(t, user.ExpiresAt)
}

func TestCurrentUser_ExpiredJWT(t *testing.T) {
	tok := signToken(t, "u-1", "a@example.com", time.Now().Add(-time.Minute))
	p := NewStoreProvider(staticLoader(&models.Credential{UserID: "u-1", Token: tok}, nil))

	user, err := p.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCurrentUser_ValidJWT(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signToken(t, "u-1", "a@example.com", exp)
	p := NewStoreProvider(staticLoader(&models.Credential{UserID: "u-1", Token: tok}, nil))

	user, err := p.CurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	require.NotNil(t, user.ExpiresAt)
	assert.True(t, exp.Equal(*user.ExpiresAt))
}

func TestCurrentUser_LoadError(t *testing.T) {
	p := NewStoreProvider(staticLoader(nil, errors.New("disk gone")))

	_, err := p.CurrentUser(context.Background())
	assert.ErrorContains(t, err, "disk gone")
}

func TestInspect_NotJWT(t *testing.T) {
	_, err := Inspect("plainly-not-a-jwt")
	assert.ErrorIs(t, err, ErrNotJWT)
}

func TestLoginLogout(t *testing.T) {
	require.NoError(t, db.Initialize(filepath.Join(t.TempDir(), "punch.db")))
	t.Cleanup(func() { _ = db.Close() })

	tok := signToken(t, "u-42", "dana@example.com", time.Now().Add(time.Hour))
	user, err := Login(tok, "", "")
	require.NoError(t, err)
	assert.Equal(t, "u-42", user.ID)
	assert.Equal(t, "dana@example.com", user.Email)

	current, err := NewStoreProvider(nil).CurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "u-42", current.ID)

	removed, err := Logout()
	require.NoError(t, err)
	assert.True(t, removed)

	current, err = NewStoreProvider(nil).CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestLogin_Rejects(t *testing.T) {
	_, err := Login("", "u-1", "")
	assert.Error(t, err)

	_, err = Login("opaque", "", "")
	assert.ErrorContains(t, err, "--user")

	_, err = Login(signToken(t, "u-1", "", time.Now().Add(-time.Hour)), "", "")
	assert.ErrorContains(t, err, "expired")
}
