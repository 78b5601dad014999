package cache

import (
	"context"

	"github.com/rs/zerolog/log"
)

// layered prefers Redis and falls back to the in-process store when Redis
// is unconfigured or a call fails. The fallback decision is made per call,
// so a transient Redis error on one request does not stop later requests
// from reaching Redis again.
type layered struct {
	primary  Store // nil when Redis is not configured
	fallback Store
}

// New builds the cache used by the application. An empty addr means no
// Redis; everything then lives in the in-process store.
func New(addr, password string) Store {
	l := &layered{fallback: newMemoryStore()}
	if addr == "" {
		log.Info().Msg("[cache] redis not configured, using memory cache")
		return l
	}

	r := newRedisStore(addr, password)
	if err := r.ping(context.Background()); err != nil {
		// keep the client: per-call fallback retries Redis later
		log.Warn().Err(err).Msg("[cache] redis unreachable at startup")
	} else {
		log.Info().Str("addr", addr).Msg("[cache] redis connected")
	}
	l.primary = r
	return l
}

func (l *layered) Get(ctx context.Context, key string, dest any) (bool, error) {
	if l.primary != nil {
		ok, err := l.primary.Get(ctx, key, dest)
		if err == nil {
			return ok, nil
		}
		log.Warn().Err(err).Str("key", key).Msg("[cache] redis get failed, trying memory")
	}
	return l.fallback.Get(ctx, key, dest)
}

func (l *layered) Set(ctx context.Context, key string, value any, ttlSeconds int) error {
	if l.primary != nil {
		err := l.primary.Set(ctx, key, value, ttlSeconds)
		if err == nil {
			return nil
		}
		log.Warn().Err(err).Str("key", key).Msg("[cache] redis set failed, using memory")
	}
	return l.fallback.Set(ctx, key, value, ttlSeconds)
}

func (l *layered) Del(ctx context.Context, key string) error {
	if l.primary != nil {
		if err := l.primary.Del(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("[cache] redis del failed")
		}
	}
	return l.fallback.Del(ctx, key)
}

func (l *layered) DelPrefix(ctx context.Context, prefix string) error {
	if l.primary != nil {
		if err := l.primary.DelPrefix(ctx, prefix); err != nil {
			log.Warn().Err(err).Str("prefix", prefix).Msg("[cache] redis del-prefix failed")
		}
	}
	return l.fallback.DelPrefix(ctx, prefix)
}
