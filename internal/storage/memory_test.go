package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemory_BasicOperations(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	v, err := m.Get(ctx, KeySession)
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, m.Set(ctx, KeySession, []byte("payload")))

	v, err = m.Get(ctx, KeySession)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), v)

	require.NoError(t, m.Delete(ctx, KeySession))

	v, err = m.Get(ctx, KeySession)
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("abc")))

	v, err := m.Get(ctx, "k")
	require.NoError(t, err)
	v[0] = 'z'

	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again)
}

func TestMemory_SetManyAndClear(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SetMany(ctx, map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}))

	v, err := m.Get(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, []byte("2"), v)

	require.NoError(t, m.Clear(ctx))

	v, err = m.Get(ctx, "a")
	require.NoError(t, err)
	require.Nil(t, v)
}
