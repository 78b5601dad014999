package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryTTL bounds every in-process entry regardless of the TTL the
// caller asked for; the fallback is a stopgap, not a durable cache.
const memoryTTL = 5 * time.Minute

type memoryStore struct {
	c *gocache.Cache
}

func newMemoryStore() *memoryStore {
	return &memoryStore{c: gocache.New(memoryTTL, 10*time.Minute)}
}

func (m *memoryStore) Get(_ context.Context, key string, dest any) (bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ int) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.c.Set(key, b, memoryTTL)
	return nil
}

func (m *memoryStore) Del(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

func (m *memoryStore) DelPrefix(_ context.Context, prefix string) error {
	for k := range m.c.Items() {
		if strings.HasPrefix(k, prefix) {
			m.c.Delete(k)
		}
	}
	return nil
}
