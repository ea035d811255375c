// Package cache garde des copies JSON à durée de vie limitée : Redis quand il
// est configuré, sinon une table en mémoire propre au processus.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const (
	ProductListKey  = "catalog:products"
	ProductCacheTTL = 2 * time.Minute
)

type Store interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type entry struct {
	data    []byte
	expires time.Time
}

// Memory est le repli local quand Redis n'est pas configuré.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry), now: time.Now}
}

func (m *Memory) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.data, v); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *Memory) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e := entry{data: data}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}
