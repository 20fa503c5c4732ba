package prefs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return map[string]Store{
		"file":  NewFileStore(filepath.Join(t.TempDir(), "prefs", "asfaltofashion_prefs.env")),
		"redis": NewRedisStore(rdb, "asfaltofashion_prefs"),
	}
}

func TestStores(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			p, err := s.Load(ctx)
			require.NoError(t, err)
			assert.False(t, p.LoggedIn)
			assert.Nil(t, p.LastEmail)
			assert.Equal(t, DefaultTheme, p.Theme)

			require.NoError(t, s.SaveLogin(ctx, "a@x.com"))
			require.NoError(t, s.SaveTheme(ctx, "dark"))
			p, err = s.Load(ctx)
			require.NoError(t, err)
			assert.True(t, p.LoggedIn)
			require.NotNil(t, p.LastEmail)
			assert.Equal(t, "a@x.com", *p.LastEmail)
			assert.Equal(t, "dark", p.Theme)

			require.NoError(t, s.ClearLogin(ctx))
			p, err = s.Load(ctx)
			require.NoError(t, err)
			assert.False(t, p.LoggedIn)
			assert.Nil(t, p.LastEmail)
			assert.Equal(t, "dark", p.Theme)
		})
	}
}

func TestOpenRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := OpenRedisStore(ctx, "redis://"+mr.Addr()+"/0", "prefs")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.SaveTheme(ctx, "light"))
	assert.Equal(t, "light", mr.HGet("prefs", "theme"))

	_, err = OpenRedisStore(ctx, "not a url", "prefs")
	assert.Error(t, err)
}
