// internal/config/properties.go
//
// Ordered, string-typed property store.
//
// Context
// -------
// The store is filled once during Load (defaults first, then the main file
// on top) and afterwards only touched by SetString.  Readers never lock:
// they load the current *snapshot through an atomic.Pointer.  Writers clone
// the snapshot under a mutex and swap the pointer, so a reader always sees
// either the old or the new map, never a torn one.
//
// Notes
// -----
//   - Key order is first-insertion order; overwriting a key keeps its slot.
//   - Values stay text.  Typed parsing happens in the accessors.

package config

import (
	"sync"
	"sync/atomic"
)

type snapshot struct {
	keys   []string
	values map[string]string
}

// Properties is safe for concurrent readers and occasional writers.  The
// zero value is an empty store ready for use.
type Properties struct {
	mu  sync.Mutex // serialises writers only
	cur atomic.Pointer[snapshot]
}

// NewProperties returns an empty store.
func NewProperties() *Properties {
	return &Properties{}
}

func (p *Properties) load() *snapshot {
	if s := p.cur.Load(); s != nil {
		return s
	}
	return &snapshot{values: map[string]string{}}
}

// Get returns the value for key and whether it was present.
func (p *Properties) Get(key string) (string, bool) {
	v, ok := p.load().values[key]
	return v, ok
}

// Has reports whether key is present, even with an empty value.
func (p *Properties) Has(key string) bool {
	_, ok := p.load().values[key]
	return ok
}

// Len reports the number of keys.
func (p *Properties) Len() int { return len(p.load().keys) }

// Keys returns a copy of the keys in insertion order.
func (p *Properties) Keys() []string {
	s := p.load()
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Set stores value under key, overwriting any previous value.
func (p *Properties) Set(key, value string) {
	p.update(func(keys []string, values map[string]string) []string {
		if _, ok := values[key]; !ok {
			keys = append(keys, key)
		}
		values[key] = value
		return keys
	})
}

// merge copies every entry of src over p.  Entries in src win.
func (p *Properties) merge(src *Properties) {
	in := src.load()
	p.update(func(keys []string, values map[string]string) []string {
		for _, k := range in.keys {
			if _, ok := values[k]; !ok {
				keys = append(keys, k)
			}
			values[k] = in.values[k]
		}
		return keys
	})
}

// update runs fn on a private copy of the current snapshot and publishes
// the result.
func (p *Properties) update(fn func([]string, map[string]string) []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	old := p.load()
	keys := make([]string, len(old.keys), len(old.keys)+1)
	copy(keys, old.keys)
	values := make(map[string]string, len(old.values)+1)
	for k, v := range old.values {
		values[k] = v
	}

	keys = fn(keys, values)
	p.cur.Store(&snapshot{keys: keys, values: values})
}
