package credentials

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FalconEthics/lotus-auth/internal/common"
	"github.com/FalconEthics/lotus-auth/internal/cryptox"
	"github.com/FalconEthics/lotus-auth/internal/logging"
	"github.com/FalconEthics/lotus-auth/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	durable := storage.NewMemory()
	s := NewStore(durable, cryptox.MinIterations, logging.NewNop())
	s.Now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s, durable
}

func TestBootstrap_CreatesDefaultRecord(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Bootstrap(ctx))

	rec, err := s.Read(ctx, DefaultUsername, DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, DefaultUsername, rec.Username)
	assert.True(t, rec.VerifyPassword(DefaultPassword, s.Iterations()))
	assert.False(t, rec.VerifyPassword("wrong", s.Iterations()))
	assert.Equal(t, 0, rec.LoginAttempts)
	assert.Nil(t, rec.LockedUntil)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestBootstrap_Idempotent(t *testing.T) {
	s, durable := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Bootstrap(ctx))
	first, err := durable.Get(ctx, storage.KeyCredentials)
	require.NoError(t, err)
	require.NotNil(t, first)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Bootstrap(ctx))
	}

	again, err := durable.Get(ctx, storage.KeyCredentials)
	require.NoError(t, err)
	assert.Equal(t, first, again, "repeated bootstrap must not rewrite the stored ciphertext")
}

func TestBootstrap_NeverOverwritesCorruptBlob(t *testing.T) {
	s, durable := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, durable.Set(ctx, storage.KeyCredentials, []byte("arbitrary bytes")))
	require.NoError(t, s.Bootstrap(ctx))

	blob, err := durable.Get(ctx, storage.KeyCredentials)
	require.NoError(t, err)
	assert.Equal(t, []byte("arbitrary bytes"), blob)
}

func TestRead_NotInitialized(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Read(context.Background(), DefaultUsername, DefaultPassword)
	assert.ErrorIs(t, err, common.ErrNotInitialized)
}

func TestRead_WrongCredentials(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Bootstrap(ctx))

	_, err := s.Read(ctx, DefaultUsername, "wrong")
	assert.ErrorIs(t, err, common.ErrDecryptionFailure)

	_, err = s.Read(ctx, "nobody", DefaultPassword)
	assert.ErrorIs(t, err, common.ErrDecryptionFailure)
}

func TestRead_CorruptedBlobIsDecryptionFailureNotFirstRun(t *testing.T) {
	s, durable := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Bootstrap(ctx))

	require.NoError(t, durable.Set(ctx, storage.KeyCredentials, []byte("corrupted")))

	_, err := s.Read(ctx, DefaultUsername, DefaultPassword)
	assert.ErrorIs(t, err, common.ErrDecryptionFailure)
	assert.NotErrorIs(t, err, common.ErrNotInitialized)
}

func TestReadCached_AfterBootstrap(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Bootstrap(ctx))

	rec, err := s.ReadCached(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultUsername, rec.Username)
}

func TestReadCached_NoCache(t *testing.T) {
	s, durable := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Bootstrap(ctx))
	require.NoError(t, durable.Delete(ctx, storage.KeyKeyCache))

	_, err := s.ReadCached(ctx)
	assert.ErrorIs(t, err, ErrNoCachedKey)
}

func TestWrite_RotatesCiphertextAndCache(t *testing.T) {
	s, durable := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Bootstrap(ctx))

	before, err := durable.Get(ctx, storage.KeyCredentials)
	require.NoError(t, err)

	rec, err := s.ReadCached(ctx)
	require.NoError(t, err)
	rec.SetPassword("NewPass123!", s.Iterations())
	require.NoError(t, s.Write(ctx, rec, rec.Username, "NewPass123!"))

	after, err := durable.Get(ctx, storage.KeyCredentials)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)

	cache, err := durable.Get(ctx, storage.KeyKeyCache)
	require.NoError(t, err)
	assert.Equal(t, []byte(DefaultUsername+"NewPass123!"), cache)

	// Old credentials can no longer open the blob; new ones can.
	_, err = s.Read(ctx, DefaultUsername, DefaultPassword)
	assert.ErrorIs(t, err, common.ErrDecryptionFailure)

	got, err := s.Read(ctx, DefaultUsername, "NewPass123!")
	require.NoError(t, err)
	assert.True(t, got.VerifyPassword("NewPass123!", s.Iterations()))
}

func TestWriteCached_PersistsWithoutChangingCache(t *testing.T) {
	s, durable := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Bootstrap(ctx))

	cacheBefore, err := durable.Get(ctx, storage.KeyKeyCache)
	require.NoError(t, err)

	rec, err := s.ReadCached(ctx)
	require.NoError(t, err)
	rec.LoginAttempts = 3
	require.NoError(t, s.WriteCached(ctx, rec))

	cacheAfter, err := durable.Get(ctx, storage.KeyKeyCache)
	require.NoError(t, err)
	assert.Equal(t, cacheBefore, cacheAfter)

	got, err := s.ReadCached(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got.LoginAttempts)
}

func TestWriteCached_NoCache(t *testing.T) {
	s, durable := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Bootstrap(ctx))
	require.NoError(t, durable.Delete(ctx, storage.KeyKeyCache))

	rec := New(DefaultUsername, DefaultPassword, s.Iterations(), s.Now())
	assert.ErrorIs(t, s.WriteCached(ctx, rec), ErrNoCachedKey)
}
