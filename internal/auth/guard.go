// ============================================================================
// internal/auth/guard.go
// Failed-login attempt limiting and time-boxed lockout
// ============================================================================

package auth

import (
	"sync"
	"time"

	"acadsys/internal/apperr"
)

const (
	// MaxFailedAttempts is the failure count that triggers a lockout
	MaxFailedAttempts = 5
	// LockoutDuration is how long a locked account refuses attempts
	LockoutDuration = 5 * time.Minute
)

// attemptState tracks one account's consecutive failures and lockout clock
type attemptState struct {
	failures    int
	lockedUntil time.Time
}

// AttemptGuard is a process-wide, mutex-guarded failed-login counter.
// It is constructed explicitly and injected, never a package singleton,
// and its state does not survive a restart: a restart is clemency.
type AttemptGuard struct {
	mu     sync.Mutex
	states map[string]*attemptState
	now    func() time.Time
}

// NewAttemptGuard creates an attempt guard using the wall clock
func NewAttemptGuard() *AttemptGuard {
	return &AttemptGuard{
		states: make(map[string]*attemptState),
		now:    time.Now,
	}
}

// newAttemptGuardAt creates a guard with an injectable clock for tests
func newAttemptGuardAt(now func() time.Time) *AttemptGuard {
	return &AttemptGuard{
		states: make(map[string]*attemptState),
		now:    now,
	}
}

// Check gates a credential check for the account. While a lockout is active
// the attempt is refused without touching the counter; an expired lockout is
// cleared lazily here, there is no background timer.
func (g *AttemptGuard) Check(account string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	state, ok := g.states[account]
	if !ok {
		return nil
	}

	if !state.lockedUntil.IsZero() {
		if g.now().Before(state.lockedUntil) {
			// The remaining lockout duration is deliberately not disclosed.
			return apperr.New(apperr.CodeAccountLocked, "account is temporarily locked due to repeated failed logins")
		}
		delete(g.states, account)
	}

	return nil
}

// RecordFailure counts one failed credential check. The increment and the
// threshold comparison happen under one lock so concurrent failures can
// neither under- nor over-count.
func (g *AttemptGuard) RecordFailure(account string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	state, ok := g.states[account]
	if !ok || (!state.lockedUntil.IsZero() && !g.now().Before(state.lockedUntil)) {
		state = &attemptState{}
		g.states[account] = state
	}

	state.failures++
	if state.failures >= MaxFailedAttempts {
		state.lockedUntil = g.now().Add(LockoutDuration)
	}
}

// RecordSuccess resets the account to the unlocked state
func (g *AttemptGuard) RecordSuccess(account string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.states, account)
}

// Failures reports the current consecutive failure count for an account
func (g *AttemptGuard) Failures(account string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if state, ok := g.states[account]; ok {
		return state.failures
	}
	return 0
}
