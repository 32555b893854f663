package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"qrate/internal/database"
	logger "github.com/Bparsons0904/goLogger"
)

// Fallback-store key scheme: <entity>:<eventCode>:<guestOrId>. The mirror is
// best effort only; it is written alongside every successful primary write and
// becomes the source of record when the primary store is unavailable. The two
// stores can diverge and no read ever merges them.
const (
	fallbackEntityEvent      = "event"
	fallbackEntityPreference = "preferences"
	fallbackEntityRequest    = "request"
	fallbackEntitySettings   = "settings"
	fallbackEntityVote       = "vote"
)

func fallbackKey(entity string, parts ...string) string {
	key := entity
	for _, part := range parts {
		key += ":" + part
	}
	return key
}

// putFallback writes one logical entity into the fallback store. Used both for
// mirroring after a primary write and as the write path of last resort.
func putFallback(ctx context.Context, cache database.CacheClient, key string, value any) error {
	return database.NewCacheBuilder(cache, key).
		WithContext(ctx).
		WithStruct(value).
		Set()
}

// mirrorFallback is putFallback with swallowed errors: a failed mirror never
// rolls back or fails a successful primary write.
func mirrorFallback(
	ctx context.Context,
	cache database.CacheClient,
	log logger.Logger,
	key string,
	value any,
) {
	if err := putFallback(ctx, cache, key, value); err != nil {
		log.Er("failed to mirror entity to fallback store", err, "key", key)
	}
}

// getFallback reads one entity from the fallback store into result, reporting
// whether the key existed.
func getFallback(ctx context.Context, cache database.CacheClient, key string, result any) (bool, error) {
	return database.NewCacheBuilder(cache, key).
		WithContext(ctx).
		Get(result)
}

// scanFallback prefix-scans the fallback store and decodes every entity found
// under the prefix.
func scanFallback[T any](ctx context.Context, cache database.CacheClient, prefix string) ([]T, error) {
	raw, err := database.NewCacheBuilder(cache, prefix).
		WithContext(ctx).
		ScanPrefix()
	if err != nil {
		return nil, err
	}

	results := make([]T, 0, len(raw))
	for _, item := range raw {
		var entity T
		if err := json.Unmarshal([]byte(item), &entity); err != nil {
			return nil, fmt.Errorf("failed to decode fallback entity under %q: %w", prefix, err)
		}
		results = append(results, entity)
	}

	return results, nil
}
