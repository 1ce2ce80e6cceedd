package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })

	return mr
}

func TestAside_CachesLoaderResult(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"breakfast", "dinner"}, nil
	}

	got, err := Aside(ctx, TagListKey, TagListTTL, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"breakfast", "dinner"}, got)
	assert.Equal(t, 1, calls)

	// Second read is served from Redis
	got, err = Aside(ctx, TagListKey, TagListTTL, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"breakfast", "dinner"}, got)
	assert.Equal(t, 1, calls)

	assert.True(t, mr.Exists(TagListKey))
}

func TestAside_LoaderErrorNotCached(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	load := func() (string, error) {
		return "", errors.New("db down")
	}

	_, err := Aside(ctx, "user:1", time.Minute, load)
	assert.Error(t, err)
}

func TestAside_WithoutClient(t *testing.T) {
	SetClient(nil)

	got, err := Aside(context.Background(), "recipe:7", RecipeTTL, func() (int, error) {
		return 42, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestInvalidate(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(UserKey(3), "cached"))
	InvalidateUser(ctx, 3)
	assert.False(t, mr.Exists(UserKey(3)))

	require.NoError(t, mr.Set(RecipeKey(9), "cached"))
	InvalidateRecipe(ctx, 9)
	assert.False(t, mr.Exists(RecipeKey(9)))
}
