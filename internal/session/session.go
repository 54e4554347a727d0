// Package session carries the identity of the user shelf acts for. It is
// passed explicitly into loads instead of being read from ambient state.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/five82/shelf/internal/catalog"
)

// ErrNoToken is returned when no bearer token is configured.
var ErrNoToken = errors.New("no api token configured")

// Session identifies the current user.
type Session struct {
	UserID    int64
	Login     string
	Admin     bool
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the token expiry is known and in the past.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// UserFetcher looks up the token owner on the API.
type UserFetcher interface {
	FetchCurrentUser(ctx context.Context) (catalog.User, error)
}

// FromToken reads the user id from the token's `sub` claim. The signature is
// not verified: the API does that on every request.
func FromToken(token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrNoToken
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Session{}, fmt.Errorf("parse token: %w", err)
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return Session{}, fmt.Errorf("read subject: %w", err)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(sub), 10, 64)
	if err != nil || id <= 0 {
		return Session{}, fmt.Errorf("token subject %q is not a user id", sub)
	}
	sess := Session{UserID: id, Token: token}
	if admin, ok := claims["is_admin"].(bool); ok {
		sess.Admin = admin
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.ExpiresAt = exp.Time
	}
	return sess, nil
}

// Resolve builds a Session from the token, asking the API who the token
// belongs to when the token itself does not say.
func Resolve(ctx context.Context, token string, users UserFetcher) (Session, error) {
	sess, err := FromToken(token)
	if err == nil {
		return sess, nil
	}
	if errors.Is(err, ErrNoToken) || users == nil {
		return Session{}, err
	}
	user, fetchErr := users.FetchCurrentUser(ctx)
	if fetchErr != nil {
		return Session{}, fmt.Errorf("resolve current user: %w", errors.Join(err, fetchErr))
	}
	if user.UserID <= 0 {
		return Session{}, fmt.Errorf("resolve current user: api returned no user id")
	}
	return Session{
		UserID: user.UserID,
		Login:  user.Login,
		Admin:  user.IsAdmin,
		Token:  strings.TrimSpace(token),
	}, nil
}
