// Package session issues, validates and expires the single administrator
// session. The session record lives in volatile (tab-scoped) storage and
// holds no secret, so plaintext JSON is acceptable; the durable store only
// carries the legacy logged-in flag and the cached key material this package
// is responsible for erasing on logout.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FalconEthics/lotus-auth/internal/logging"
	"github.com/FalconEthics/lotus-auth/internal/storage"
)

// DefaultDuration is the fixed session lifetime.
const DefaultDuration = 8 * time.Hour

// flagValue is what the legacy page guards expect under storage.KeyLoggedIn.
var flagValue = []byte("true")

// Record is the volatile session record.
type Record struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	LoginTime time.Time `json:"login_time"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager owns the session lifecycle over the two storage backends.
type Manager struct {
	volatile storage.KV
	durable  storage.KV
	duration time.Duration
	log      logging.Logger

	// Now is the clock used for issuance and expiry checks; overridable in
	// tests.
	Now func() time.Time
}

func NewManager(volatile, durable storage.KV, duration time.Duration, log logging.Logger) *Manager {
	return &Manager{volatile: volatile, durable: durable, duration: duration, log: log, Now: time.Now}
}

// Issue writes a fresh session record for username and sets the legacy
// logged-in flag. Any previous session is replaced.
func (m *Manager) Issue(ctx context.Context, username string) (*Record, error) {
	now := m.Now()
	rec := &Record{
		ID:        uuid.NewString(),
		Username:  username,
		LoginTime: now,
		ExpiresAt: now.Add(m.duration),
	}

	if err := m.write(ctx, rec); err != nil {
		return nil, err
	}
	if err := m.durable.Set(ctx, storage.KeyLoggedIn, flagValue); err != nil {
		return nil, err
	}

	m.log.Debug(ctx, "session issued", "username", username, "expires_at", rec.ExpiresAt)
	return rec, nil
}

// Current returns the active session record, or nil when there is none. An
// expired record is deleted on detection, so no stale session survives a
// read.
func (m *Manager) Current(ctx context.Context) (*Record, error) {
	raw, err := m.volatile.Get(ctx, storage.KeySession)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		// An unparseable session record is treated like an expired one.
		m.log.Warn(ctx, "removing malformed session record")
		return nil, m.volatile.Delete(ctx, storage.KeySession)
	}

	if !m.Now().Before(rec.ExpiresAt) {
		m.log.Debug(ctx, "session expired", "username", rec.Username)
		if err := m.volatile.Delete(ctx, storage.KeySession); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &rec, nil
}

// IsAuthenticated reports whether a valid session exists AND the legacy
// logged-in flag is set. Requiring both guards against partial state left by
// an interrupted transition.
func (m *Manager) IsAuthenticated(ctx context.Context) (bool, error) {
	rec, err := m.Current(ctx)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}

	flag, err := m.durable.Get(ctx, storage.KeyLoggedIn)
	if err != nil {
		return false, err
	}
	return flag != nil, nil
}

// Rename updates the username on the live session without reissuing it: a
// username change keeps the caller working under the renamed identity.
func (m *Manager) Rename(ctx context.Context, username string) error {
	rec, err := m.Current(ctx)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no active session to rename")
	}

	rec.Username = username
	return m.write(ctx, rec)
}

// Destroy removes the session record, the legacy logged-in flag, and the
// cached key material. Erasing the key cache matters: after logout the
// credential record must not be readable without re-entering credentials.
func (m *Manager) Destroy(ctx context.Context) error {
	if err := m.volatile.Delete(ctx, storage.KeySession); err != nil {
		return err
	}
	if err := m.durable.Delete(ctx, storage.KeyLoggedIn); err != nil {
		return err
	}
	return m.durable.Delete(ctx, storage.KeyKeyCache)
}

func (m *Manager) write(ctx context.Context, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to serialize session record: %w", err)
	}
	return m.volatile.Set(ctx, storage.KeySession, raw)
}
