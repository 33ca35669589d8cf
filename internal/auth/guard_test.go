package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acadsys/internal/apperr"
)

// fakeClock lets tests move time forward without sleeping
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time          { return c.current }
func (c *fakeClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestGuard() (*AttemptGuard, *fakeClock) {
	clock := &fakeClock{current: time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)}
	return newAttemptGuardAt(clock.now), clock
}

func TestGuardLocksAfterThreshold(t *testing.T) {
	guard, _ := newTestGuard()

	for i := 0; i < MaxFailedAttempts-1; i++ {
		guard.RecordFailure("alice")
		require.NoError(t, guard.Check("alice"), "attempt %d must not lock", i+1)
	}

	guard.RecordFailure("alice")
	err := guard.Check("alice")
	assert.Equal(t, apperr.CodeAccountLocked, apperr.CodeOf(err))
}

func TestGuardLockExpiresLazily(t *testing.T) {
	guard, clock := newTestGuard()

	for i := 0; i < MaxFailedAttempts; i++ {
		guard.RecordFailure("alice")
	}
	require.Error(t, guard.Check("alice"))

	// One second before expiry the lock still holds
	clock.advance(LockoutDuration - time.Second)
	assert.Equal(t, apperr.CodeAccountLocked, apperr.CodeOf(guard.Check("alice")))

	// At expiry the account is usable again with a clean slate
	clock.advance(time.Second)
	require.NoError(t, guard.Check("alice"))
	assert.Equal(t, 0, guard.Failures("alice"))
}

func TestGuardCheckDoesNotConsumeAttempts(t *testing.T) {
	guard, _ := newTestGuard()

	for i := 0; i < MaxFailedAttempts; i++ {
		guard.RecordFailure("alice")
	}

	// Hammering a locked account must not extend or deepen the lock
	for i := 0; i < 10; i++ {
		assert.Equal(t, apperr.CodeAccountLocked, apperr.CodeOf(guard.Check("alice")))
	}
	assert.Equal(t, MaxFailedAttempts, guard.Failures("alice"))
}

func TestGuardSuccessResetsCounter(t *testing.T) {
	guard, _ := newTestGuard()

	for i := 0; i < MaxFailedAttempts-1; i++ {
		guard.RecordFailure("alice")
	}
	guard.RecordSuccess("alice")
	assert.Equal(t, 0, guard.Failures("alice"))

	// A fresh run of failures is needed to lock again
	guard.RecordFailure("alice")
	require.NoError(t, guard.Check("alice"))
}

func TestGuardFailureAfterExpiredLockStartsFresh(t *testing.T) {
	guard, clock := newTestGuard()

	for i := 0; i < MaxFailedAttempts; i++ {
		guard.RecordFailure("alice")
	}
	clock.advance(LockoutDuration)

	guard.RecordFailure("alice")
	assert.Equal(t, 1, guard.Failures("alice"))
	require.NoError(t, guard.Check("alice"))
}

func TestGuardAccountsAreIndependent(t *testing.T) {
	guard, _ := newTestGuard()

	for i := 0; i < MaxFailedAttempts; i++ {
		guard.RecordFailure("alice")
	}
	require.Error(t, guard.Check("alice"))
	require.NoError(t, guard.Check("bob"))
}
