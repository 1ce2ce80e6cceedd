package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"foodgram/internal/observability"
)

const (
	UserKeyPrefix      = "user:%d"
	RecipeKeyPrefix    = "recipe:%d"
	ShortLinkKeyPrefix = "shortlink:%s"
	TagListKey         = "tags:all"
	IngredientListKey  = "ingredients:all"
)

const (
	UserTTL           = 5 * time.Minute
	RecipeTTL         = 10 * time.Minute
	TagListTTL        = 30 * time.Minute
	IngredientListTTL = 30 * time.Minute
	ShortLinkTTL      = 24 * time.Hour
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func RecipeKey(recipeID uint) string {
	return fmt.Sprintf(RecipeKeyPrefix, recipeID)
}

func ShortLinkKey(code string) string {
	return fmt.Sprintf(ShortLinkKeyPrefix, code)
}

// Aside implements the cache-aside pattern: return the cached JSON value for
// key if present, otherwise load it, store it with the given TTL and return it.
// Cache failures are silent; the loader result always wins.
func Aside[T any](ctx context.Context, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if client != nil {
		getCtx, span := observability.TraceRedisOperation(ctx, "get")
		raw, err := client.Get(getCtx, key).Bytes()
		span.End()
		if err == nil {
			var cached T
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			// Corrupt entry, drop it and fall through to the loader
			client.Del(ctx, key)
		}
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if client != nil {
		if raw, err := json.Marshal(value); err == nil {
			setCtx, span := observability.TraceRedisOperation(ctx, "set")
			client.Set(setCtx, key, raw, ttl)
			span.End()
		}
	}

	return value, nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateRecipe(ctx context.Context, recipeID uint) {
	Invalidate(ctx, RecipeKey(recipeID))
}

func InvalidateTags(ctx context.Context) {
	Invalidate(ctx, TagListKey)
}

func InvalidateIngredients(ctx context.Context) {
	Invalidate(ctx, IngredientListKey)
}

func InvalidateShortLink(ctx context.Context, code string) {
	Invalidate(ctx, ShortLinkKey(code))
}
