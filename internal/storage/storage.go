// Package storage provides the two key-value backends the auth core writes
// to: a durable one (SQLite file, standing in for the browser profile's
// persistent storage) and a volatile one (in-memory, standing in for
// tab-scoped session storage). Both singletons have no optimistic-concurrency
// guard: two concurrent writers race and the last one wins, which is an
// accepted property of single-tenant local storage.
package storage

import "context"

// Persisted-state layout. These keys must keep their meaning across versions
// so an existing profile stays readable after an upgrade.
const (
	// KeyCredentials holds the encrypted credential record envelope (durable).
	KeyCredentials = "credentials"

	// KeyLoggedIn is a compatibility flag consumed by legacy page guards
	// outside the core; kept in sync with session validity (durable).
	KeyLoggedIn = "logged_in"

	// KeyKeyCache holds the cached key-derivation input used to re-decrypt
	// the credential envelope without prompting again; written on every
	// successful login or credential change, erased on logout (durable).
	KeyKeyCache = "key_cache"

	// KeySession holds the session record JSON (volatile).
	KeySession = "session"
)

// KV is the minimal key-value contract both backends implement.
// Get returns (nil, nil) when the key is absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error

	// SetMany writes several keys as one atomic unit where the backend
	// supports it.
	SetMany(ctx context.Context, values map[string][]byte) error

	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
