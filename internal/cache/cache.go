package cache

import "context"

// Store is the cache contract used by the services. Values are stored as
// JSON so the same payload round-trips through Redis and the in-process
// fallback alike.
type Store interface {
	// Get reads key into dest, reporting whether the key was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value under key with a TTL in seconds.
	Set(ctx context.Context, key string, value any, ttlSeconds int) error
	// Del removes a single key.
	Del(ctx context.Context, key string) error
	// DelPrefix removes every key sharing the given prefix.
	DelPrefix(ctx context.Context, prefix string) error
}
