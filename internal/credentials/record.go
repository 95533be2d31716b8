// Package credentials owns the single administrator credential record and
// the encrypted store it lives in. The record is always persisted as
// ciphertext; the encryption key is never stored, only its derivation input
// (see storage.KeyKeyCache).
package credentials

import (
	"time"

	"github.com/FalconEthics/lotus-auth/internal/common"
	"github.com/FalconEthics/lotus-auth/internal/cryptox"
	"github.com/FalconEthics/lotus-auth/internal/lockout"
)

// Default bootstrap identity, created at first run.
const (
	DefaultUsername = "admin"
	DefaultPassword = "lotus2024"
)

// Record is the durable credential record. At most one exists.
type Record struct {
	Username      string     `json:"username"`
	PasswordHash  []byte     `json:"password_hash"`
	Salt          []byte     `json:"salt"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLogin     time.Time  `json:"last_login"`
	LoginAttempts int        `json:"login_attempts"`
	LockedUntil   *time.Time `json:"locked_until,omitempty"`
}

// New creates a record for username with a freshly salted password hash.
func New(username, password string, iterations int, now time.Time) *Record {
	r := &Record{Username: username, CreatedAt: now}
	r.SetPassword(password, iterations)
	return r
}

// SetPassword regenerates the salt and rehashes password. The salt is unique
// per record and rotated on every password change.
func (r *Record) SetPassword(password string, iterations int) {
	r.Salt = common.GenerateRandByteArray(cryptox.SaltSize)
	r.PasswordHash = cryptox.DeriveKey([]byte(password), r.Salt, iterations)
}

// VerifyPassword derives a hash from password and the stored salt and
// compares it to the stored hash in constant time.
func (r *Record) VerifyPassword(password string, iterations int) bool {
	candidate := cryptox.DeriveKey([]byte(password), r.Salt, iterations)
	defer common.WipeByteArray(candidate)
	return cryptox.VerifyHash(r.PasswordHash, candidate)
}

// Lockout returns the lockout portion of the record.
func (r *Record) Lockout() lockout.State {
	return lockout.State{Attempts: r.LoginAttempts, LockedUntil: r.LockedUntil}
}

// ApplyLockout writes a lockout state back into the record.
func (r *Record) ApplyLockout(s lockout.State) {
	r.LoginAttempts = s.Attempts
	r.LockedUntil = s.LockedUntil
}
