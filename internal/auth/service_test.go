package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"acadsys/internal/apperr"
	"acadsys/internal/model"
)

type memUsers struct {
	byUsername map[string]*model.User
}

func (s *memUsers) UserByUsername(_ context.Context, username string) (*model.User, error) {
	user, ok := s.byUsername[username]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

func (s *memUsers) UserByID(_ context.Context, id string) (*model.User, error) {
	for _, user := range s.byUsername {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *memUsers) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	for _, user := range s.byUsername {
		if user.ID == userID {
			user.PasswordHash = hash
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &memUsers{byUsername: map[string]*model.User{
		"alice": {ID: "usr-1", Username: "alice", PasswordHash: string(hash), Role: model.RoleTeacher},
	}}
	return NewService(users, NewAttemptGuard(), NewSessionStore(), "test-secret", time.Hour, bcrypt.MinCost)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials issue a token", func(t *testing.T) {
		service := newTestService(t)

		result, err := service.Login(ctx, "alice", "secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "usr-1", result.User.UserID)
		assert.Equal(t, model.RoleTeacher, result.User.Role)

		identity, err := service.Validate(result.Token)
		require.NoError(t, err)
		assert.Equal(t, "usr-1", identity.UserID)
	})

	t.Run("wrong password and unknown user give the same error", func(t *testing.T) {
		service := newTestService(t)

		_, err := service.Login(ctx, "alice", "wrong")
		assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))
		wrongPass := apperr.MessageOf(err)

		_, err = service.Login(ctx, "mallory", "whatever")
		assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))
		assert.Equal(t, wrongPass, apperr.MessageOf(err))
	})

	t.Run("missing input", func(t *testing.T) {
		service := newTestService(t)

		_, err := service.Login(ctx, "", "secret123")
		assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
		_, err = service.Login(ctx, "alice", "")
		assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
	})
}

func TestLoginLockout(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	for i := 0; i < MaxFailedAttempts; i++ {
		_, err := service.Login(ctx, "alice", "wrong")
		assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))
	}

	// Locked now, even with the correct password
	_, err := service.Login(ctx, "alice", "secret123")
	assert.Equal(t, apperr.CodeAccountLocked, apperr.CodeOf(err))

	t.Run("unknown usernames lock out the same way", func(t *testing.T) {
		for i := 0; i < MaxFailedAttempts; i++ {
			_, err := service.Login(ctx, "mallory", "guess")
			assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))
		}
		_, err := service.Login(ctx, "mallory", "guess")
		assert.Equal(t, apperr.CodeAccountLocked, apperr.CodeOf(err))
	})
}

func TestLoginSuccessResetsFailures(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	for i := 0; i < MaxFailedAttempts-1; i++ {
		_, err := service.Login(ctx, "alice", "wrong")
		require.Error(t, err)
	}

	_, err := service.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	// The slate is clean: another run of failures is needed to lock
	for i := 0; i < MaxFailedAttempts-1; i++ {
		_, err := service.Login(ctx, "alice", "wrong")
		assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))
	}
	_, err = service.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
}

func TestLogoutAndValidate(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	result, err := service.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	service.Logout(result.Token)

	_, err = service.Validate(result.Token)
	assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))

	// Logging out twice is harmless
	service.Logout(result.Token)

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.Validate("not-a-token")
		assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	service := newTestService(t)

	result, err := service.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	t.Run("wrong old password", func(t *testing.T) {
		err := service.ChangePassword(ctx, "usr-1", "nope", "newpass456")
		assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))
	})

	t.Run("new password must differ", func(t *testing.T) {
		err := service.ChangePassword(ctx, "usr-1", "secret123", "secret123")
		assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
	})

	t.Run("success rotates the credential and revokes sessions", func(t *testing.T) {
		require.NoError(t, service.ChangePassword(ctx, "usr-1", "secret123", "newpass456"))

		// Old session is gone
		_, err := service.Validate(result.Token)
		assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))

		// Old password no longer works, new one does
		_, err = service.Login(ctx, "alice", "secret123")
		assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))
		_, err = service.Login(ctx, "alice", "newpass456")
		require.NoError(t, err)
	})
}
