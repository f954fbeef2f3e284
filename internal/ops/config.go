// Package ops holds the runtime configuration store: a string-keyed
// KV with typed readers, synchronous per-key change listeners and a
// properties-file loader.
package ops

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"main/internal/errors"
)

// Listener observes changes to one key. It runs synchronously on the
// goroutine that called Set.
type Listener func(key, value string)

// Store is a process-scoped configuration service. Keys are
// case-insensitive and canonicalized to lower case. Values are
// strings; the typed getters parse on read and fall back to zero
// values when parsing fails.
type Store struct {
	mu        sync.RWMutex
	values    map[string]string
	listeners map[string][]Listener
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		values:    make(map[string]string),
		listeners: make(map[string][]Listener),
	}
}

// Set stores a value and notifies the key's listeners on the calling
// goroutine.
func (s *Store) Set(key, value string) {
	key = canonical(key)
	s.mu.Lock()
	s.values[key] = value
	notify := make([]Listener, len(s.listeners[key]))
	copy(notify, s.listeners[key])
	s.mu.Unlock()

	for _, fn := range notify {
		fn(key, value)
	}
}

// Get returns the raw value and whether the key exists.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[canonical(key)]
	return v, ok
}

// Has reports whether the key exists.
func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Subscribe registers a listener for one key.
func (s *Store) Subscribe(key string, fn Listener) {
	if fn == nil {
		return
	}
	key = canonical(key)
	s.mu.Lock()
	s.listeners[key] = append(s.listeners[key], fn)
	s.mu.Unlock()
}

// UnsubscribeAll drops every listener registered for a key.
func (s *Store) UnsubscribeAll(key string) {
	s.mu.Lock()
	delete(s.listeners, canonical(key))
	s.mu.Unlock()
}

// GetString returns the value, or def when the key is absent.
func (s *Store) GetString(key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// GetInt parses the value as an int; absent or unparseable reads 0.
func (s *Store) GetInt(key string) int {
	v, _ := s.Get(key)
	n, _ := strconv.Atoi(strings.TrimSpace(v))
	return n
}

// GetInt64 parses the value as an int64; absent or unparseable reads 0.
func (s *Store) GetInt64(key string) int64 {
	v, _ := s.Get(key)
	n, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	return n
}

// GetUint parses the value as a uint64; absent or unparseable reads 0.
func (s *Store) GetUint(key string) uint64 {
	v, _ := s.Get(key)
	n, _ := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	return n
}

// GetFloat parses the value as a float64; absent or unparseable
// reads 0.
func (s *Store) GetFloat(key string) float64 {
	v, _ := s.Get(key)
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f
}

// GetBool reads true for "true", "yes" and "1" (case-insensitive),
// false for everything else.
func (s *Store) GetBool(key string) bool {
	v, _ := s.Get(key)
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}

// GetStringList splits a comma-separated value, trimming whitespace
// and dropping empty items.
func (s *Store) GetStringList(key string) []string {
	v, ok := s.Get(key)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// GetIntList parses a comma-separated value as ints, skipping items
// that do not parse.
func (s *Store) GetIntList(key string) []int {
	var out []int
	for _, item := range s.GetStringList(key) {
		if n, err := strconv.Atoi(item); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// GetFloatList parses a comma-separated value as float64s, skipping
// items that do not parse.
func (s *Store) GetFloatList(key string) []float64 {
	var out []float64
	for _, item := range s.GetStringList(key) {
		if f, err := strconv.ParseFloat(item, 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// LoadFile reads a properties file of #-commented "key = value" lines
// and applies every entry through Set, so listeners fire per key.
func (s *Store) LoadFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("properties")
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, "load config file")
	}

	keys := v.AllKeys()
	sort.Strings(keys)
	for _, key := range keys {
		s.Set(key, v.GetString(key))
	}
	return nil
}

func canonical(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
