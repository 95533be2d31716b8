package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FalconEthics/lotus-auth/internal/common"
	"github.com/FalconEthics/lotus-auth/internal/cryptox"
	"github.com/FalconEthics/lotus-auth/internal/logging"
	"github.com/FalconEthics/lotus-auth/internal/storage"
)

// ErrNoCachedKey is returned by ReadCached and WriteCached when no key
// material is cached (after logout, or before bootstrap). Callers fall back
// to user-supplied credentials.
var ErrNoCachedKey = errors.New("no cached key material")

// Store persists the encrypted credential record in the durable backend.
//
// The record is sealed inside an envelope whose key derives from the
// username+password concatenation and a key salt carried in clear by the
// envelope itself. The concatenation is cached under storage.KeyKeyCache on
// every successful login or credential change so the blob stays readable
// without re-prompting; the hardcoded bootstrap defaults are used exactly
// once, at bootstrap time, never as a decryption fallback.
type Store struct {
	durable    storage.KV
	iterations int
	log        logging.Logger

	// Now is the clock used for CreatedAt; overridable in tests.
	Now func() time.Time
}

func NewStore(durable storage.KV, iterations int, log logging.Logger) *Store {
	return &Store{durable: durable, iterations: iterations, log: log, Now: time.Now}
}

// Iterations exposes the configured key-stretching cost for callers that
// derive verification hashes themselves.
func (s *Store) Iterations() int {
	return s.iterations
}

// Exists reports whether an encrypted record is present, without attempting
// to decrypt it.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	blob, err := s.durable.Get(ctx, storage.KeyCredentials)
	if err != nil {
		return false, err
	}
	return blob != nil, nil
}

// Bootstrap creates the default credential record iff none exists.
// Idempotent: any existing blob, including one that no longer decrypts, is
// left untouched so a corrupted store is never silently re-initialized over
// the real owner's data.
func (s *Store) Bootstrap(ctx context.Context) error {
	exists, err := s.Exists(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap check failed: %w", err)
	}
	if exists {
		return nil
	}

	rec := New(DefaultUsername, DefaultPassword, s.iterations, s.Now())
	if err := s.Write(ctx, rec, DefaultUsername, DefaultPassword); err != nil {
		return fmt.Errorf("bootstrap write failed: %w", err)
	}

	s.log.Info(ctx, "credential store bootstrapped", "username", DefaultUsername)
	return nil
}

// Read decrypts the stored record using a key derived from the supplied
// credentials. Absent blob yields common.ErrNotInitialized; wrong
// credentials or a corrupted blob yield common.ErrDecryptionFailure.
func (s *Store) Read(ctx context.Context, username, password string) (*Record, error) {
	secret := cryptox.KeyInput(username, password)
	defer common.WipeByteArray(secret)
	return s.read(ctx, secret)
}

// ReadCached decrypts the stored record using the cached key material.
// Returns ErrNoCachedKey when nothing is cached.
func (s *Store) ReadCached(ctx context.Context) (*Record, error) {
	secret, err := s.durable.Get(ctx, storage.KeyKeyCache)
	if err != nil {
		return nil, err
	}
	if secret == nil {
		return nil, ErrNoCachedKey
	}
	defer common.WipeByteArray(secret)
	return s.read(ctx, secret)
}

func (s *Store) read(ctx context.Context, secret []byte) (*Record, error) {
	blob, err := s.durable.Get(ctx, storage.KeyCredentials)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, common.ErrNotInitialized
	}

	var rec Record
	if err := cryptox.Open(string(blob), secret, s.iterations, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Write re-encrypts rec under a key derived from the given credentials and
// replaces the stored blob and the cached key material in one atomic
// overwrite. The envelope's key salt is freshly generated on every write.
func (s *Store) Write(ctx context.Context, rec *Record, username, password string) error {
	secret := cryptox.KeyInput(username, password)
	defer common.WipeByteArray(secret)

	blob, err := cryptox.Seal(rec, secret, s.iterations)
	if err != nil {
		return fmt.Errorf("failed to seal credential record: %w", err)
	}

	return s.durable.SetMany(ctx, map[string][]byte{
		storage.KeyCredentials: []byte(blob),
		storage.KeyKeyCache:    secret,
	})
}

// WriteCached re-encrypts rec under the currently cached key material,
// leaving the cache itself unchanged. Used to persist lockout counter
// updates when the caller does not hold valid credentials.
func (s *Store) WriteCached(ctx context.Context, rec *Record) error {
	secret, err := s.durable.Get(ctx, storage.KeyKeyCache)
	if err != nil {
		return err
	}
	if secret == nil {
		return ErrNoCachedKey
	}
	defer common.WipeByteArray(secret)

	blob, err := cryptox.Seal(rec, secret, s.iterations)
	if err != nil {
		return fmt.Errorf("failed to seal credential record: %w", err)
	}

	return s.durable.Set(ctx, storage.KeyCredentials, []byte(blob))
}
