// Package persist is the storefront's durable key-value storage. Every
// operation is best effort: failures are logged and reported as false,
// never returned as errors, so callers can treat storage as optional.
package persist

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Keys used by the storefront.
const (
	KeyTheme     = "legado_theme"
	KeyFavorites = "legado_favorites"
	KeyRecent    = "legado_recent"
	KeyForm      = "legado_form"
)

// Limits that apply to the stored lists.
const (
	MaxRecentViews = 10
	MaxFavorites   = 50
)

// Storage is a string-keyed store of JSON values.
type Storage interface {
	// Get decodes the value stored under key into dst. It reports false when
	// the key is missing or the value cannot be decoded.
	Get(key string, dst any) bool
	// Set stores v under key.
	Set(key string, v any) bool
	// Remove deletes key. Removing a missing key succeeds.
	Remove(key string) bool
	// Clear deletes every key.
	Clear() bool
}

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
	logger *slog.Logger
}

// NewMemory creates an empty [MemoryStorage].
func NewMemory(logger *slog.Logger) *MemoryStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStorage{values: make(map[string]json.RawMessage), logger: logger}
}

func (m *MemoryStorage) Get(key string, dst any) bool {
	m.mu.RLock()
	raw, ok := m.values[key]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return decode(m.logger, key, raw, dst)
}

func (m *MemoryStorage) Set(key string, v any) bool {
	raw, ok := encode(m.logger, key, v)
	if !ok {
		return false
	}
	m.mu.Lock()
	m.values[key] = raw
	m.mu.Unlock()
	return true
}

func (m *MemoryStorage) Remove(key string) bool {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return true
}

func (m *MemoryStorage) Clear() bool {
	m.mu.Lock()
	m.values = make(map[string]json.RawMessage)
	m.mu.Unlock()
	return true
}

func encode(logger *slog.Logger, key string, v any) (json.RawMessage, bool) {
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Warn("storage encode failed", "key", key, "error", err)
		return nil, false
	}
	return raw, true
}

func decode(logger *slog.Logger, key string, raw json.RawMessage, dst any) bool {
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.Warn("storage decode failed", "key", key, "error", err)
		return false
	}
	return true
}
