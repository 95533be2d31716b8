// Package lockout implements the brute-force lockout policy applied to the
// credential record: consecutive failed verifications accumulate until the
// account enters a timed lock.
package lockout

import "time"

// Defaults per the shipped policy: the 5th consecutive failure locks the
// account for 30 minutes.
const (
	DefaultMaxAttempts  = 5
	DefaultLockDuration = 30 * time.Minute
)

// State is the lockout portion of a credential record.
type State struct {
	Attempts    int
	LockedUntil *time.Time
}

// Policy holds the lockout tunables. The zero value is not usable; construct
// with New or fill both fields.
type Policy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

func New() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, LockDuration: DefaultLockDuration}
}

// IsLocked reports whether the state is locked at the given instant.
func (p Policy) IsLocked(s State, now time.Time) bool {
	return s.LockedUntil != nil && now.Before(*s.LockedUntil)
}

// Remaining returns how long the lock still holds at the given instant,
// zero when not locked.
func (p Policy) Remaining(s State, now time.Time) time.Duration {
	if !p.IsLocked(s, now) {
		return 0
	}
	return s.LockedUntil.Sub(now)
}

// RemainingMinutes returns the lock time left rounded up to whole minutes,
// for the user-facing message.
func (p Policy) RemainingMinutes(s State, now time.Time) int {
	r := p.Remaining(s, now)
	if r <= 0 {
		return 0
	}
	return int((r + time.Minute - 1) / time.Minute)
}

// Fail records a failed verification. An already-locked state is returned
// unchanged: locked accounts reject before verification, so a failure can
// neither extend the lock nor advance the counter. Reaching MaxAttempts
// sets the lock.
func (p Policy) Fail(s State, now time.Time) State {
	if p.IsLocked(s, now) {
		return s
	}
	s.Attempts++
	if s.Attempts >= p.MaxAttempts {
		until := now.Add(p.LockDuration)
		s.LockedUntil = &until
	}
	return s
}

// Reset returns the unlocked zero-attempt state. Applied on successful
// verification and on observed lock expiry; attempts are not preserved
// across an expired lock.
func (p Policy) Reset() State {
	return State{}
}

// Normalize clears an expired lock, resetting the attempt counter. States
// that are unlocked or still locked pass through unchanged.
func (p Policy) Normalize(s State, now time.Time) State {
	if s.LockedUntil != nil && !now.Before(*s.LockedUntil) {
		return p.Reset()
	}
	return s
}

// AttemptsLeft returns how many failures remain before the lock engages.
func (p Policy) AttemptsLeft(s State) int {
	left := p.MaxAttempts - s.Attempts
	if left < 0 {
		return 0
	}
	return left
}
