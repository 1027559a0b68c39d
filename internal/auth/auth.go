// Package auth resolves the signed-in user from the local credential store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/models"
)

// User is the identity requests are made on behalf of
type User struct {
	ID        string
	Email     string
	Token     string
	ExpiresAt *time.Time
}

// Provider answers "who is signed in". A nil user means nobody.
type Provider interface {
	CurrentUser(ctx context.Context) (*User, error)
}

// CredentialLoader reads the stored credential; db.GetCredential satisfies it
type CredentialLoader func() (*models.Credential, error)

// StoreProvider is the Provider backed by the local credential store
type StoreProvider struct {
	load CredentialLoader
	now  func() time.Time
}

func NewStoreProvider(load CredentialLoader) *StoreProvider {
	if load == nil {
		load = db.GetCredential
	}
	return &StoreProvider{load: load, now: time.Now}
}

func (p *StoreProvider) CurrentUser(ctx context.Context) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cred, err := p.load()
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	if cred == nil {
		return nil, nil
	}

	user := &User{ID: cred.UserID, Email: cred.Email, Token: cred.Token}
	claims, err := Inspect(cred.Token)
	if err == nil && claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		user.ExpiresAt = &exp
		if !p.now().Before(exp) {
			// Expired sessions count as signed out
			return nil, nil
		}
	}
	return user, nil
}

// Claims is the subset of the API token we care about
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

var ErrNotJWT = errors.New("token is not a JWT")

// Inspect decodes a JWT without verifying its signature. The API verifies;
// the client only reads identity and expiry.
func Inspect(token string) (*Claims, error) {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}
	return &claims, nil
}

// Login stores a credential. userID and email fall back to the token's
// sub and email claims when empty.
func Login(token, userID, email string) (*User, error) {
	if token == "" {
		return nil, fmt.Errorf("token is required")
	}

	var expiresAt *time.Time
	if claims, err := Inspect(token); err == nil {
		if userID == "" {
			userID = claims.Subject
		}
		if email == "" {
			email = claims.Email
		}
		if claims.ExpiresAt != nil {
			exp := claims.ExpiresAt.Time
			if !time.Now().Before(exp) {
				return nil, fmt.Errorf("token expired at %s", exp.Format(time.RFC3339))
			}
			expiresAt = &exp
		}
	}
	if userID == "" {
		return nil, fmt.Errorf("user id is required for non-JWT tokens (use --user)")
	}

	cred, err := db.SaveCredential(userID, email, token)
	if err != nil {
		return nil, err
	}
	return &User{ID: cred.UserID, Email: cred.Email, Token: cred.Token, ExpiresAt: expiresAt}, nil
}

// Logout forgets the stored credential
func Logout() (bool, error) {
	return db.DeleteCredential()
}
