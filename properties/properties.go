// Package properties provides an ordered key/value store and loaders that
// fill it from .properties, YAML and TOML sources.
//
// Keys are unique and iterate in lexicographic order, so all keys sharing a
// prefix such as "appender.A" are contiguous.
package properties

import (
	"sort"
	"strconv"
	"strings"
)

// Properties is an ordered string to string map. The zero value is empty
// and ready to use. Properties is not safe for concurrent mutation.
type Properties struct {
	keys   []string
	values map[string]string
}

// New returns an empty store.
func New() *Properties {
	return &Properties{values: make(map[string]string)}
}

// Len returns the number of keys.
func (p *Properties) Len() int {
	return len(p.keys)
}

// Set stores value under key, replacing any previous value.
func (p *Properties) Set(key, value string) {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[key]; !ok {
		i := sort.SearchStrings(p.keys, key)
		p.keys = append(p.keys, "")
		copy(p.keys[i+1:], p.keys[i:])
		p.keys[i] = key
	}
	p.values[key] = value
}

// Add stores value under key unless the key is already present. It reports
// whether the value was stored.
func (p *Properties) Add(key, value string) bool {
	if _, ok := p.values[key]; ok {
		return false
	}
	p.Set(key, value)
	return true
}

// Delete removes key.
func (p *Properties) Delete(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	i := sort.SearchStrings(p.keys, key)
	p.keys = append(p.keys[:i], p.keys[i+1:]...)
}

// Get returns the value stored under key.
func (p *Properties) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// GetString returns the value stored under key, or def if absent.
func (p *Properties) GetString(key, def string) string {
	if v, ok := p.values[key]; ok {
		return v
	}
	return def
}

// GetInt returns the decimal integer stored under key. def is returned if
// the key is absent or its value is not an integer.
func (p *Properties) GetInt(key string, def int) int {
	v, ok := p.values[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// GetBool returns the boolean stored under key. Accepted values are those of
// strconv.ParseBool plus "yes", "no", "on" and "off", in any case. def is
// returned if the key is absent or the value is not recognised.
func (p *Properties) GetBool(key string, def bool) bool {
	v, ok := p.values[key]
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// Keys returns every key in lexicographic order.
func (p *Properties) Keys() []string {
	keys := make([]string, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// LowerBound returns the index of the first key at or after key.
func (p *Properties) LowerBound(key string) int {
	return sort.SearchStrings(p.keys, key)
}

// Range calls fn for each key beginning with prefix, in order, stopping
// early if fn returns false.
func (p *Properties) Range(prefix string, fn func(key, value string) bool) {
	for i := p.LowerBound(prefix); i < len(p.keys); i++ {
		k := p.keys[i]
		if !strings.HasPrefix(k, prefix) {
			return
		}
		if !fn(k, p.values[k]) {
			return
		}
	}
}

// Clone returns an independent copy of p.
func (p *Properties) Clone() *Properties {
	c := New()
	c.keys = p.Keys()
	for k, v := range p.values {
		c.values[k] = v
	}
	return c
}
