// Package auth wires the credential store, lockout policy and session
// manager into the top-level authentication flows. It is the public surface
// of the security core: every taxonomy error is folded into a structured
// Result at this boundary, and only storage-substrate failures escape as
// errors.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/FalconEthics/lotus-auth/internal/common"
	"github.com/FalconEthics/lotus-auth/internal/credentials"
	"github.com/FalconEthics/lotus-auth/internal/lockout"
	"github.com/FalconEthics/lotus-auth/internal/logging"
	"github.com/FalconEthics/lotus-auth/internal/session"
	"github.com/FalconEthics/lotus-auth/internal/strength"
)

// MinUsernameLength applies to username changes, after trimming whitespace.
const MinUsernameLength = 3

// Result is the structured outcome of an auth operation. Err carries the
// taxonomy sentinel (matchable with errors.Is) when Success is false;
// Message is ready for direct display.
type Result struct {
	Success      bool
	Message      string
	Username     string
	AttemptsLeft int
	Err          error
}

func failure(err error, message string) Result {
	return Result{Message: message, Err: err}
}

// Service is the injectable auth core. Construct with NewService; the
// zero value is not usable.
type Service struct {
	store    *credentials.Store
	sessions *session.Manager
	policy   lockout.Policy
	log      logging.Logger

	// Now is the clock used for lockout decisions and login timestamps;
	// overridable in tests.
	Now func() time.Time
}

func NewService(store *credentials.Store, sessions *session.Manager, policy lockout.Policy, log logging.Logger) *Service {
	return &Service{store: store, sessions: sessions, policy: policy, log: log, Now: time.Now}
}

// Bootstrap initializes the credential store on first run. Safe to call on
// every start.
func (s *Service) Bootstrap(ctx context.Context) error {
	return s.store.Bootstrap(ctx)
}

// Login verifies the supplied credentials against the stored record.
//
// The lock check runs before verification, so attempts against a locked
// account are rejected immediately and never advance the counter. On success
// the lockout state resets, the last-login timestamp updates, the encryption
// key cache is refreshed from the just-verified credentials, and a session
// is issued. On failure the attempt counter increments and persists; the
// fifth consecutive failure engages the timed lock.
//
// The returned error is non-nil only for storage-substrate failures.
func (s *Service) Login(ctx context.Context, username, password string) (Result, error) {
	rec, viaCache, res, err := s.loadForLogin(ctx, username, password)
	if err != nil || res != nil {
		return deref(res), err
	}

	now := s.Now()
	state := s.policy.Normalize(rec.Lockout(), now)

	if s.policy.IsLocked(state, now) {
		mins := s.policy.RemainingMinutes(state, now)
		s.log.Warn(ctx, "login rejected: account locked", "minutes_left", mins)
		return failure(common.ErrAccountLocked,
			fmt.Sprintf("account locked, try again in %d minutes", mins)), nil
	}

	match := rec.Username == username && rec.VerifyPassword(password, s.store.Iterations())
	if match {
		rec.ApplyLockout(s.policy.Reset())
		rec.LastLogin = now
		if err := s.store.Write(ctx, rec, username, password); err != nil {
			return Result{}, err
		}
		if _, err := s.sessions.Issue(ctx, username); err != nil {
			return Result{}, err
		}
		s.log.Info(ctx, "login succeeded", "username", username)
		return Result{Success: true, Username: username, Message: "login successful"}, nil
	}

	state = s.policy.Fail(state, now)
	rec.ApplyLockout(state)

	if viaCache {
		if err := s.store.WriteCached(ctx, rec); err != nil {
			return Result{}, err
		}
	} else {
		// Without cached key material the counter update cannot be
		// persisted; the attempt is still rejected.
		s.log.Warn(ctx, "failed attempt not persisted: no cached key material")
	}

	if s.policy.IsLocked(state, now) {
		mins := s.policy.RemainingMinutes(state, now)
		s.log.Warn(ctx, "account locked after repeated failures", "minutes", mins)
		return failure(common.ErrAccountLocked,
			fmt.Sprintf("account locked, try again in %d minutes", mins)), nil
	}

	s.log.Info(ctx, "login failed", "attempts", state.Attempts)
	r := failure(common.ErrInvalidCredentials, "invalid username or password")
	r.AttemptsLeft = s.policy.AttemptsLeft(state)
	return r, nil
}

// loadForLogin obtains the credential record for a login attempt. It prefers
// the cached key material (which also covers lock checks against wrong
// passwords); when nothing is cached, e.g. after logout, it falls back to a
// key derived from the supplied credentials, never from the bootstrap
// defaults.
func (s *Service) loadForLogin(ctx context.Context, username, password string) (*credentials.Record, bool, *Result, error) {
	rec, err := s.store.ReadCached(ctx)
	switch {
	case err == nil:
		return rec, true, nil, nil

	case errors.Is(err, credentials.ErrNoCachedKey):
		rec, err := s.store.Read(ctx, username, password)
		switch {
		case err == nil:
			return rec, false, nil, nil
		case errors.Is(err, common.ErrNotInitialized):
			res := failure(common.ErrNotInitialized, "authentication system not initialized")
			return nil, false, &res, nil
		case errors.Is(err, common.ErrDecryptionFailure):
			// Wrong credentials and a corrupted blob are
			// indistinguishable here; report generically.
			res := failure(common.ErrInvalidCredentials, "invalid username or password")
			return nil, false, &res, nil
		default:
			return nil, false, nil, err
		}

	case errors.Is(err, common.ErrNotInitialized):
		res := failure(common.ErrNotInitialized, "authentication system not initialized")
		return nil, false, &res, nil

	case errors.Is(err, common.ErrDecryptionFailure):
		// The cached key should always open the blob; failure means the
		// stored ciphertext is corrupted or foreign.
		s.log.Error(ctx, "credential record unreadable with cached key", "error", err)
		res := failure(common.ErrDecryptionFailure, "credential record cannot be decrypted")
		return nil, false, &res, nil

	default:
		return nil, false, nil, err
	}
}

// ChangePassword rotates the administrator password. Requires an active
// session; the current password is re-verified, the new one must score at
// least strength.MinScore and differ from the current one. On success the
// record is re-salted, re-hashed and re-encrypted under the new credentials.
func (s *Service) ChangePassword(ctx context.Context, current, newPassword string) (Result, error) {
	rec, res, err := s.requireSession(ctx)
	if err != nil || res != nil {
		return deref(res), err
	}

	if !rec.VerifyPassword(current, s.store.Iterations()) {
		return failure(common.ErrInvalidCredentials, "current password is incorrect"), nil
	}

	if a := strength.Evaluate(newPassword); !a.Valid {
		return failure(common.ErrWeakPassword,
			"password too weak: "+strings.Join(a.Feedback, ", ")), nil
	}

	if newPassword == current {
		return failure(common.ErrDuplicateValue, "new password must differ from the current one"), nil
	}

	rec.SetPassword(newPassword, s.store.Iterations())
	if err := s.store.Write(ctx, rec, rec.Username, newPassword); err != nil {
		return Result{}, err
	}

	s.log.Info(ctx, "password changed", "username", rec.Username)
	return Result{Success: true, Username: rec.Username, Message: "password changed"}, nil
}

// ChangeUsername renames the administrator identity. Requires an active
// session and the current password. The live session keeps working under
// the new name; it is not invalidated.
func (s *Service) ChangeUsername(ctx context.Context, password, newUsername string) (Result, error) {
	rec, res, err := s.requireSession(ctx)
	if err != nil || res != nil {
		return deref(res), err
	}

	if !rec.VerifyPassword(password, s.store.Iterations()) {
		return failure(common.ErrInvalidCredentials, "password is incorrect"), nil
	}

	newUsername = strings.TrimSpace(newUsername)
	if utf8.RuneCountInString(newUsername) < MinUsernameLength {
		return failure(common.ErrInvalidUsername,
			fmt.Sprintf("username must be at least %d characters", MinUsernameLength)), nil
	}

	if newUsername == rec.Username {
		return failure(common.ErrDuplicateValue, "new username must differ from the current one"), nil
	}

	oldName := rec.Username
	rec.Username = newUsername
	if err := s.store.Write(ctx, rec, newUsername, password); err != nil {
		return Result{}, err
	}
	if err := s.sessions.Rename(ctx, newUsername); err != nil {
		return Result{}, err
	}

	s.log.Info(ctx, "username changed", "from", oldName, "to", newUsername)
	return Result{Success: true, Username: newUsername, Message: "username changed"}, nil
}

// Logout destroys the session, the legacy logged-in flag and the cached key
// material, regardless of current state.
func (s *Service) Logout(ctx context.Context) (Result, error) {
	if err := s.sessions.Destroy(ctx); err != nil {
		return Result{}, err
	}
	s.log.Info(ctx, "logged out")
	return Result{Success: true, Message: "logged out"}, nil
}

// IsAuthenticated is one of the two capabilities external pages consume on
// every navigation. Storage failures are logged and reported as "not
// authenticated" rather than breaking the caller's route guard.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	ok, err := s.sessions.IsAuthenticated(ctx)
	if err != nil {
		s.log.Error(ctx, "authentication check failed", "error", err)
		return false
	}
	return ok
}

// CurrentUsername returns the authenticated identity, or "" when there is
// no valid session.
func (s *Service) CurrentUsername(ctx context.Context) string {
	rec, err := s.sessions.Current(ctx)
	if err != nil {
		s.log.Error(ctx, "session read failed", "error", err)
		return ""
	}
	if rec == nil {
		return ""
	}
	return rec.Username
}

// requireSession loads the credential record for a change operation. The
// caller must be authenticated; the record is read via the cached key, which
// is always present while a session is live.
func (s *Service) requireSession(ctx context.Context) (*credentials.Record, *Result, error) {
	sess, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, nil, err
	}
	if sess == nil {
		res := failure(common.ErrNotAuthenticated, "not authenticated")
		return nil, &res, nil
	}

	rec, err := s.store.ReadCached(ctx)
	switch {
	case err == nil:
		return rec, nil, nil
	case errors.Is(err, credentials.ErrNoCachedKey):
		res := failure(common.ErrNotAuthenticated, "not authenticated")
		return nil, &res, nil
	case errors.Is(err, common.ErrNotInitialized):
		res := failure(common.ErrNotInitialized, "authentication system not initialized")
		return nil, &res, nil
	case errors.Is(err, common.ErrDecryptionFailure):
		res := failure(common.ErrDecryptionFailure, "credential record cannot be decrypted")
		return nil, &res, nil
	default:
		return nil, nil, err
	}
}

func deref(r *Result) Result {
	if r == nil {
		return Result{}
	}
	return *r
}
