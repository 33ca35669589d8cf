// ============================================================================
// internal/auth/service.go
// Login, logout, token validation, and password changes
// ============================================================================

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"acadsys/internal/apperr"
	"acadsys/internal/model"
	"acadsys/internal/store"
)

// UserStore is the persistence contract the auth service operates through
type UserStore interface {
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

// Claims are the JWT token claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service authenticates users and manages their sessions
type Service struct {
	users      UserStore
	guard      *AttemptGuard
	sessions   *SessionStore
	jwtSecret  []byte
	jwtTTL     time.Duration
	bcryptCost int
}

// NewService creates an auth service. Guard and session store are injected
// so tests can instantiate isolated instances per case.
func NewService(users UserStore, guard *AttemptGuard, sessions *SessionStore, jwtSecret string, jwtTTL time.Duration, bcryptCost int) *Service {
	return &Service{
		users:      users,
		guard:      guard,
		sessions:   sessions,
		jwtSecret:  []byte(jwtSecret),
		jwtTTL:     jwtTTL,
		bcryptCost: bcryptCost,
	}
}

// Identity is the authenticated caller attached to a request
type Identity struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResult carries the issued token and the authenticated user
type LoginResult struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// Login checks credentials under the attempt guard and issues a session
// token. A locked account is refused before any credential work happens
// and without consuming an attempt.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "username and password are required")
	}

	if err := s.guard.Check(username); err != nil {
		return nil, err
	}

	user, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		if store.IsNotFound(err) {
			// Unknown accounts consume attempts too, keyed by the identity
			// presented, so probing behaves like a wrong password.
			s.guard.RecordFailure(username)
			return nil, apperr.New(apperr.CodeUnauthorized, "invalid username or password")
		}
		return nil, apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.guard.RecordFailure(username)
		return nil, apperr.New(apperr.CodeUnauthorized, "invalid username or password")
	}

	s.guard.RecordSuccess(username)

	token, err := s.issueToken(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.sessions.Put(Session{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: time.Now(),
	})

	return &LoginResult{
		Token: token,
		User:  Identity{UserID: user.ID, Username: user.Username, Role: user.Role},
	}, nil
}

// Logout revokes the session behind a token. Revoking an unknown token is
// a successful no-op.
func (s *Service) Logout(token string) {
	s.sessions.Delete(token)
}

// Validate resolves a bearer token to its identity. The token must both be
// a live session and carry an unexpired signature.
func (s *Service) Validate(token string) (*Identity, error) {
	session, ok := s.sessions.Get(token)
	if !ok {
		return nil, apperr.New(apperr.CodeUnauthorized, "invalid or expired session token")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		s.sessions.Delete(token)
		return nil, apperr.New(apperr.CodeUnauthorized, "invalid or expired session token")
	}

	return &Identity{UserID: session.UserID, Username: session.Username, Role: session.Role}, nil
}

// ChangePassword verifies the old password, stores the new hash, and
// revokes the user's existing sessions.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apperr.New(apperr.CodeInvalidArgument, "old and new passwords are required")
	}
	if oldPassword == newPassword {
		return apperr.New(apperr.CodeInvalidArgument, "new password must differ from the old password")
	}

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return apperr.New(apperr.CodeNotFound, "user not found")
		}
		return apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return apperr.New(apperr.CodeForbidden, "old password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return apperr.Internal(err)
	}

	s.sessions.DeleteByUser(userID)
	return nil
}

// issueToken signs a JWT for the user
func (s *Service) issueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
